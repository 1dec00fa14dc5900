// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// matroska mirrors the parts of the mkvmerge identification JSON that
// langfilter cares about.
// Schema: https://mkvtoolnix.download/doc/mkvmerge-identification-output-schema-v14.json
type matroska struct {
	FileName string `json:"file_name"`
	Tracks   []struct {
		Codec      string `json:"codec"`
		ID         int    `json:"id"`
		Type       string `json:"type"`
		Properties struct {
			Number        int    `json:"number"`
			UID           uint64 `json:"uid"`
			CodecID       string `json:"codec_id"`
			Language      string `json:"language"`
			LanguageIetf  string `json:"language_ietf"`
			TrackName     string `json:"track_name"`
			DefaultTrack  bool   `json:"default_track"`
			ForcedTrack   bool   `json:"forced_track"`
			AudioChannels int    `json:"audio_channels"`
		} `json:"properties"`
	} `json:"tracks"`
	Container struct {
		Recognized bool   `json:"recognized"`
		Supported  bool   `json:"supported"`
		Type       string `json:"type"`
	} `json:"container"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// errToolNotFound marks a missing external tool, as opposed to a tool
// that ran and reported a problem.
var errToolNotFound = errors.New("external tool not found")

// identifyFile runs mkvmerge identification on fname and returns the
// audio and subtitle track lists, in file order, with dense 1-based
// ordinals per kind.
func identifyFile(fname string) (audio, subs []track, err error) {
	cmd := exec.Command("mkvmerge", "--identify", "-F", "json", fname)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: mkvmerge (please install mkvtoolnix)", errToolNotFound)
		}
		// mkvmerge writes identification problems to stdout as JSON, but
		// hard failures land on stderr.
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, nil, fmt.Errorf("mkvmerge identification failed: %s", msg)
	}

	var mkv matroska
	if err := json.Unmarshal(output, &mkv); err != nil {
		return nil, nil, fmt.Errorf("unable to parse mkvmerge output: %w", err)
	}
	if len(mkv.Errors) != 0 {
		return nil, nil, fmt.Errorf("mkvmerge reported: %s", strings.Join(mkv.Errors, "; "))
	}

	audio, subs = splitTracks(mkv)
	return audio, subs, nil
}

// splitTracks converts the identification output into per-kind track
// lists. Ordinals restart at 1 for each kind, matching what the user sees
// and types during interactive selection.
func splitTracks(mkv matroska) (audio, subs []track) {
	for _, mt := range mkv.Tracks {
		// Prefer the classic ISO 639-2 tag (what users configure as
		// "eng", "ger", ...) and fall back to the IETF tag. mkvmerge
		// spells missing languages as "und".
		lang := mt.Properties.Language
		if lang == "" || lang == "und" {
			lang = mt.Properties.LanguageIetf
		}
		if lang == "und" {
			lang = ""
		}
		t := track{
			id:           mt.ID,
			language:     strings.ToLower(lang),
			name:         mt.Properties.TrackName,
			codec:        mt.Codec,
			channels:     mt.Properties.AudioChannels,
			defaultTrack: mt.Properties.DefaultTrack,
		}
		switch mt.Type {
		case typeAudio:
			t.ordinal = len(audio) + 1
			audio = append(audio, t)
		case typeSubtitles:
			t.ordinal = len(subs) + 1
			subs = append(subs, t)
		}
	}
	return audio, subs
}

// requirements returns nil if all required external tools are installed
// and an error naming the missing ones otherwise.
func requirements() error {
	var missing []string
	for _, tool := range []string{"mkvmerge", "mkvpropedit"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) != 0 {
		return fmt.Errorf("required 3rd party tool(s) missing: %s", strings.Join(missing, ","))
	}
	return nil
}
