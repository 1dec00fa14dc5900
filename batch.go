// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
)

// analysisStatus is the outcome of Phase 1 for one file.
type analysisStatus int

const (
	statusSelected    analysisStatus = iota // tracks selected, file needs work
	statusNoTracks                          // file has no audio tracks
	statusNoSelection                       // user/config selected no tracks
	statusAllKept                           // nothing to remove or change
	statusFailed                            // error during analysis
)

func (s analysisStatus) String() string {
	switch s {
	case statusSelected:
		return "selected"
	case statusNoTracks:
		return "no audio tracks"
	case statusNoSelection:
		return "no selection"
	case statusAllKept:
		return "all tracks kept"
	case statusFailed:
		return "failed"
	}
	return "unknown"
}

// fileAnalysis carries everything Phase 2 needs to process one file.
type fileAnalysis struct {
	fname  string
	status analysisStatus
	err    error

	audio, subs       []track
	audioSel, subsSel selection

	// needsRemux distinguishes track removal (mkvmerge) from a pure
	// default-flag change (mkvpropedit in place).
	needsRemux bool
}

// batchOptions bundles the run-wide settings shared by both phases. The
// rule set inside is read-only and safely shared across all files.
type batchOptions struct {
	rules          *ruleSet
	nonInteractive bool
	output         string
	backup         bool
	dryrun         bool
	rename         bool
	renameMask     string
	run            runner
	in             io.Reader
	ui             *ui

	// identify and interrupt have working defaults and exist so tests can
	// drive the batch without mkvmerge or a real SIGINT.
	identify  func(string) ([]track, []track, error)
	interrupt chan os.Signal

	input *lineReader
}

// runBatch drives the two-phase batch: Phase 1 collects a selection for
// every file up front, so an interactive prompt for file N+1 is never
// stuck behind a long remux of file N; Phase 2 then processes all
// recorded selections sequentially. The returned value is the process
// exit code: 0 only on full success.
func runBatch(files []string, opt batchOptions) int {
	u := opt.ui

	// A quit command, end of input or an interrupt during Phase 1 aborts
	// the whole batch: no files are processed. The sessions share the
	// interrupt channel, so a SIGINT at a prompt aborts immediately
	// instead of waiting for the next file boundary.
	interrupt := opt.interrupt
	if interrupt == nil {
		interrupt = make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
	}
	interrupted := func() bool {
		select {
		case <-interrupt:
			return true
		default:
			return false
		}
	}

	if opt.identify == nil {
		opt.identify = identifyFile
	}
	if !opt.nonInteractive {
		opt.input = newLineReader(opt.in, interrupt)
	}

	u.headerf("Phase 1: analyzing %d file(s) and collecting track selections", len(files))

	var selections []fileAnalysis
	var analysisFailed []string
	var skipped int

	for i, fname := range files {
		if interrupted() {
			u.warnf("Operation cancelled.")
			return 1
		}
		u.printf("\n--- File %d/%d: %s ---\n", i+1, len(files), fname)

		a, err := analyzeFile(fname, &opt)
		if err != nil {
			// Only cancellation propagates as an error; it kills the batch.
			u.warnf("Batch cancelled, no files were processed.")
			return 1
		}
		switch a.status {
		case statusSelected:
			selections = append(selections, a)
			u.successf("Selection recorded for %s", fname)
		case statusFailed:
			analysisFailed = append(analysisFailed, fname)
			u.errorf("Failed to analyze %s: %v", fname, a.err)
		default:
			skipped++
			u.warnf("Skipping %s (%s)", fname, a.status)
		}
	}

	if len(selections) == 0 {
		u.printf("\nNo files to process (no valid selections made).\n")
		if len(analysisFailed) != 0 {
			return 1
		}
		return 0
	}

	u.println()
	u.headerf("Phase 2: processing %d file(s) with selected tracks", len(selections))

	var processed int
	var processingFailed []string

	for i, a := range selections {
		if interrupted() {
			u.warnf("Operation cancelled.")
			return 1
		}
		u.printf("\n--- Processing %d/%d: %s ---\n", i+1, len(selections), a.fname)
		if err := processFile(a, &opt); err != nil {
			if interrupted() {
				// The interrupt also hit the child process; this is a
				// cancellation, not a processing failure.
				u.warnf("Operation cancelled.")
				return 1
			}
			processingFailed = append(processingFailed, a.fname)
			u.errorf("Error processing %s: %v", a.fname, err)
			continue
		}
		processed++
		u.successf("File processed successfully!")
	}

	printSummary(u, len(files), skipped, processed, analysisFailed, processingFailed)

	if len(analysisFailed) == 0 && len(processingFailed) == 0 {
		return 0
	}
	return 1
}

// analyzeFile combines track discovery with track selection for one
// file. It only returns a non-nil error for user cancellation; all other
// failures are recorded in the analysis status.
func analyzeFile(fname string, opt *batchOptions) (fileAnalysis, error) {
	u := opt.ui
	a := fileAnalysis{fname: fname}

	u.printf("Analyzing Matroska file: %s\n", fname)
	audio, subs, err := opt.identify(fname)
	if err != nil {
		a.status = statusFailed
		a.err = err
		return a, nil
	}
	a.audio, a.subs = audio, subs

	if len(audio) == 0 {
		u.println("No audio tracks found in the file.")
		a.status = statusNoTracks
		return a, nil
	}

	if opt.nonInteractive {
		if opt.rules == nil || !opt.rules.hasRules() {
			// Guarded again in main; audio selection without rules is a
			// skip, never a silent keep-everything.
			u.warnf("Non-interactive mode requires configuration rules.")
			a.status = statusNoSelection
			return a, nil
		}
		a.audioSel = selectNonInteractive(kindAudio, audio, opt.rules)
		a.subsSel = selectNonInteractive(kindSubtitles, subs, opt.rules)
		u.headerf("Applied configuration rules: %s", opt.rules)
		u.printf("  Audio: keeping %d of %d track(s)\n", len(a.audioSel.kept), len(audio))
		if len(subs) != 0 {
			u.printf("  Subtitles: keeping %d of %d track(s)\n", len(a.subsSel.kept), len(subs))
		}
	} else {
		if a.audioSel, err = newSession(kindAudio, audio, opt.rules, opt.input, u).run(); err != nil {
			return a, err
		}
		if len(subs) != 0 {
			if a.subsSel, err = newSession(kindSubtitles, subs, opt.rules, opt.input, u).run(); err != nil {
				return a, err
			}
		}
	}

	if len(a.audioSel.kept) == 0 {
		u.println("No audio tracks selected. File will be skipped.")
		a.status = statusNoSelection
		return a, nil
	}

	a.needsRemux = len(a.audioSel.kept) < len(audio) || len(a.subsSel.kept) < len(subs)
	needsFlags := defaultChanged(audio, a.audioSel) || defaultChanged(subs, a.subsSel)
	if !a.needsRemux && !needsFlags {
		u.println("All tracks selected. No filtering needed for this file.")
		a.status = statusAllKept
		return a, nil
	}

	a.status = statusSelected
	return a, nil
}

// defaultChanged reports whether applying the selection's default would
// alter the default flags currently stored in the file.
func defaultChanged(all []track, sel selection) bool {
	if !sel.hasDefault {
		return false
	}
	for _, t := range all {
		if t.id == sel.defaultID && !t.defaultTrack {
			return true
		}
	}
	for _, t := range sel.kept {
		if t.defaultTrack && t.id != sel.defaultID {
			return true
		}
	}
	return false
}

// processFile executes the recorded selection: a remux with replacement
// when tracks are removed, or an in-place mkvpropedit when only default
// flags change.
func processFile(a fileAnalysis, opt *batchOptions) error {
	u := opt.ui
	final := a.fname

	if a.needsRemux {
		output := opt.output
		if output == "" {
			output = derivedOutput(a.fname)
		}
		u.printf("Keeping %d audio and %d subtitle track(s)...\n", len(a.audioSel.kept), len(a.subsSel.kept))
		if err := removeUnwantedTracks(a.fname, output, a.audioSel, a.subsSel, a.audio, a.subs, opt.run); err != nil {
			return err
		}
		if !opt.dryrun {
			verifyRemux(output, len(a.audioSel.kept), len(a.subsSel.kept), u)
		}

		if opt.output == "" {
			if opt.dryrun {
				u.printf("Dry-run: would replace %s with %s\n", a.fname, output)
			} else if err := replaceOriginal(a.fname, output, opt.backup, u); err != nil {
				return err
			}
		} else {
			final = output
		}
	} else {
		u.println("No tracks to remove, updating default flags in place...")
		if err := setDefaultFlags(a.fname, a.audioSel, a.audio, opt.run); err != nil {
			return fmt.Errorf("mkvpropedit failed: %w", err)
		}
		if err := setDefaultFlags(a.fname, a.subsSel, a.subs, opt.run); err != nil {
			return fmt.Errorf("mkvpropedit failed: %w", err)
		}
	}

	if opt.rename {
		// A filename the parser cannot make sense of should not fail a
		// file that was otherwise processed fine.
		if err := renameFile(final, opt.renameMask, opt.dryrun, u); err != nil {
			u.warnf("Rename skipped: %v", err)
		}
	}
	return nil
}

// printSummary prints the aggregated end-of-run report.
func printSummary(u *ui, analyzed, skipped, processed int, analysisFailed, processingFailed []string) {
	u.println()
	u.headerf("Processing complete")
	u.printf("Files analyzed: %d\n", analyzed)
	u.printf("Files skipped: %d\n", skipped)
	u.printf("Files processed: %d/%d\n", processed, processed+len(processingFailed))

	if len(analysisFailed) != 0 {
		u.errorf("Analysis failed: %d file(s)", len(analysisFailed))
		for _, fname := range analysisFailed {
			u.printf("  x %s\n", fname)
		}
	}
	if len(processingFailed) != 0 {
		u.errorf("Processing failed: %d file(s)", len(processingFailed))
		for _, fname := range processingFailed {
			u.printf("  x %s\n", fname)
		}
	}

	switch {
	case len(analysisFailed) == 0 && len(processingFailed) == 0:
		u.successf("All files processed successfully!")
	case processed > 0:
		u.warnf("Some files failed to process")
	default:
		u.errorf("No files were processed successfully")
	}
}
