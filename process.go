// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// derivedOutput returns the output path used when the user did not give
// one: the input name with a "_filtered" suffix before the extension.
func derivedOutput(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_filtered" + ext
}

// remuxArgs builds the mkvmerge argument list for one file. Video tracks
// are always kept. Audio and subtitle track arguments are only emitted
// when the respective kind was actually filtered; dropping every subtitle
// track turns into --no-subtitles. Default-track flags are set on the
// chosen defaults and cleared on the other kept tracks of the same kind,
// so a stale flag from the source file cannot survive.
func remuxArgs(input, output string, audioSel, subsSel selection, allAudio, allSubs []track) []string {
	args := []string{"-o", output}

	if len(audioSel.kept) < len(allAudio) {
		args = append(args, "--audio-tracks", joinIDs(trackIDs(audioSel.kept)))
	}
	switch {
	case len(allSubs) != 0 && len(subsSel.kept) == 0:
		args = append(args, "--no-subtitles")
	case len(subsSel.kept) < len(allSubs):
		args = append(args, "--subtitle-tracks", joinIDs(trackIDs(subsSel.kept)))
	}

	args = append(args, defaultFlagArgs(audioSel)...)
	args = append(args, defaultFlagArgs(subsSel)...)

	return append(args, input)
}

// defaultFlagArgs emits the --default-track-flag arguments for one kind.
// Nothing is emitted when no default was chosen.
func defaultFlagArgs(sel selection) []string {
	if !sel.hasDefault {
		return nil
	}
	var args []string
	for _, t := range sel.kept {
		flag := "0"
		if t.id == sel.defaultID {
			flag = "1"
		}
		args = append(args, "--default-track-flag", fmt.Sprintf("%d:%s", t.id, flag))
	}
	return args
}

func joinIDs(ids []int) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.Itoa(id)
	}
	return strings.Join(strs, ",")
}

// removeUnwantedTracks remuxes input into output keeping only the
// selected tracks. A failed run leaves no partial output behind.
func removeUnwantedTracks(input, output string, audioSel, subsSel selection, allAudio, allSubs []track, run runner) error {
	args := remuxArgs(input, output, audioSel, subsSel, allAudio, allSubs)
	if err := run.run("mkvmerge", args...); err != nil {
		os.Remove(output)
		return fmt.Errorf("mkvmerge failed: %w", err)
	}
	return nil
}

// setDefaultFlags rewrites the default-track flags in place with
// mkvpropedit, clearing the flag on every track of the kind and setting
// it on the chosen one. Used when a selection changes defaults without
// removing any track, which does not warrant a full remux.
// mkvpropedit numbers tracks starting at one, hence the id+1.
func setDefaultFlags(fname string, sel selection, all []track, run runner) error {
	if !sel.hasDefault {
		return nil
	}
	args := []string{fname}
	for _, t := range all {
		flag := "0"
		if t.id == sel.defaultID {
			flag = "1"
		}
		args = append(args, "--edit", fmt.Sprintf("track:%d", t.id+1), "--set", "flag-default="+flag)
	}
	return run.run("mkvpropedit", args...)
}

// createBackup links (or, failing that, copies) the original file to a
// _original_ prefixed name next to it, never clobbering an existing
// backup.
func createBackup(input string) (string, error) {
	dir, name := filepath.Split(input)

	backup := filepath.Join(dir, "_original_"+name)
	for counter := 1; ; counter++ {
		if _, err := os.Lstat(backup); os.IsNotExist(err) {
			break
		}
		backup = filepath.Join(dir, fmt.Sprintf("_original_%d_%s", counter, name))
	}

	if err := os.Link(input, backup); err != nil {
		// Hardlinks fail across filesystems; fall back to a copy.
		if err := copyFile(input, backup); err != nil {
			return "", err
		}
	}
	return backup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// replaceOriginal moves the filtered file over the original, optionally
// leaving a backup of the untouched file behind.
func replaceOriginal(input, filtered string, backup bool, u *ui) error {
	if backup {
		bak, err := createBackup(input)
		if err != nil {
			return fmt.Errorf("unable to create backup: %w", err)
		}
		u.successf("Created backup: %s", bak)
	}
	if err := os.Rename(filtered, input); err != nil {
		return fmt.Errorf("unable to replace original: %w", err)
	}
	u.successf("Replaced original file: %s", input)
	return nil
}
