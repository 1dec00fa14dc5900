// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

// batchEvents records the order of discovery and external commands for
// a batch run, so the tests can assert phase sequencing.
type batchEvents struct {
	log []string
	err error
}

func (e *batchEvents) run(name string, args ...string) error {
	e.log = append(e.log, name)
	return e.err
}

// identify serves canned audio track lists keyed by filename; files not
// in the map fail discovery.
func (e *batchEvents) identify(files map[string][]track) func(string) ([]track, []track, error) {
	return func(fname string) ([]track, []track, error) {
		e.log = append(e.log, "identify "+fname)
		tracks, ok := files[fname]
		if !ok {
			return nil, nil, errors.New("unsupported container")
		}
		return tracks, nil, nil
	}
}

// englishOnly returns a rule set that keeps only English audio.
func englishOnly() *ruleSet {
	rules := newRuleSet()
	rules.keepAudio = set("eng")
	return rules
}

func TestDefaultChanged(t *testing.T) {
	tracks := []track{
		{ordinal: 1, id: 1, language: "eng", defaultTrack: true},
		{ordinal: 2, id: 2, language: "jpn"},
	}

	// Both tracks flagged default, as some muxers leave them.
	doubleFlagged := []track{
		{ordinal: 1, id: 1, language: "eng", defaultTrack: true},
		{ordinal: 2, id: 2, language: "jpn", defaultTrack: true},
	}

	casetests := []struct {
		name string
		all  []track
		sel  selection
		want bool
	}{
		{
			name: "no default chosen",
			all:  tracks,
			sel:  selection{kept: tracks},
			want: false,
		},
		{
			name: "chosen default already flagged",
			all:  tracks,
			sel:  selection{kept: tracks, defaultID: 1, hasDefault: true},
			want: false,
		},
		{
			name: "chosen default not currently flagged",
			all:  tracks,
			sel:  selection{kept: tracks, defaultID: 2, hasDefault: true},
			want: true,
		},
		{
			name: "stale flag on another kept track",
			all:  doubleFlagged,
			sel:  selection{kept: doubleFlagged, defaultID: 2, hasDefault: true},
			want: true,
		},
	}

	for _, tt := range casetests {
		if got := defaultChanged(tt.all, tt.sel); got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Default-flag-only selections go through mkvpropedit and leave the
// original file in place.
func TestProcessFileFlagsOnly(t *testing.T) {
	audio := []track{
		{ordinal: 1, id: 1, language: "eng"},
		{ordinal: 2, id: 2, language: "jpn", defaultTrack: true},
	}
	a := fileAnalysis{
		fname:      "movie.mkv",
		status:     statusSelected,
		audio:      audio,
		audioSel:   selection{kept: audio, defaultID: 1, hasDefault: true},
		needsRemux: false,
	}

	var rec recordingRunner
	opt := batchOptions{run: &rec, ui: newUI(io.Discard)}
	if err := processFile(a, &opt); err != nil {
		t.Fatalf("Got error %q want no error", err)
	}
	if rec.name != "mkvpropedit" {
		t.Fatalf("got command %q, want mkvpropedit", rec.name)
	}
}

// All files are analyzed before any file is remuxed, and files with
// nothing to change are skipped without touching the runner.
func TestRunBatchTwoPhase(t *testing.T) {
	ev := &batchEvents{}
	opt := batchOptions{
		rules:          englishOnly(),
		nonInteractive: true,
		dryrun:         true,
		run:            ev,
		ui:             newUI(io.Discard),
		identify: ev.identify(map[string][]track{
			"a.mkv": audioList("eng", "jpn"),
			"b.mkv": audioList("eng"),
			"c.mkv": audioList("eng", "ger"),
		}),
	}

	code := runBatch([]string{"a.mkv", "b.mkv", "c.mkv"}, opt)
	if code != 0 {
		t.Fatalf("got exit code %d, want 0", code)
	}
	want := []string{"identify a.mkv", "identify b.mkv", "identify c.mkv", "mkvmerge", "mkvmerge"}
	if strings.Join(ev.log, ",") != strings.Join(want, ",") {
		t.Fatalf("event order: got %v, want %v", ev.log, want)
	}
}

// A discovery failure marks the file and the run as failed but does not
// stop the remaining files from being processed.
func TestRunBatchAnalysisFailure(t *testing.T) {
	ev := &batchEvents{}
	opt := batchOptions{
		rules:          englishOnly(),
		nonInteractive: true,
		dryrun:         true,
		run:            ev,
		ui:             newUI(io.Discard),
		identify: ev.identify(map[string][]track{
			"good.mkv": audioList("eng", "jpn"),
		}),
	}

	code := runBatch([]string{"bad.mkv", "good.mkv"}, opt)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
	want := []string{"identify bad.mkv", "identify good.mkv", "mkvmerge"}
	if strings.Join(ev.log, ",") != strings.Join(want, ",") {
		t.Fatalf("event order: got %v, want %v", ev.log, want)
	}
}

// A quit during an interactive session aborts the whole batch: later
// files are never analyzed and nothing is processed.
func TestRunBatchQuitAbortsBatch(t *testing.T) {
	ev := &batchEvents{}
	opt := batchOptions{
		in:     strings.NewReader("q\n"),
		dryrun: true,
		run:    ev,
		ui:     newUI(io.Discard),
		identify: ev.identify(map[string][]track{
			"a.mkv": audioList("eng", "jpn"),
			"b.mkv": audioList("eng", "jpn"),
		}),
	}

	code := runBatch([]string{"a.mkv", "b.mkv"}, opt)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
	if strings.Join(ev.log, ",") != "identify a.mkv" {
		t.Fatalf("event order: got %v, want analysis of a.mkv only", ev.log)
	}
}

// A pending interrupt aborts the batch before any work happens.
func TestRunBatchInterruptAborts(t *testing.T) {
	interrupt := make(chan os.Signal, 1)
	interrupt <- os.Interrupt

	ev := &batchEvents{}
	opt := batchOptions{
		rules:          englishOnly(),
		nonInteractive: true,
		dryrun:         true,
		run:            ev,
		ui:             newUI(io.Discard),
		interrupt:      interrupt,
		identify: ev.identify(map[string][]track{
			"a.mkv": audioList("eng", "jpn"),
		}),
	}

	code := runBatch([]string{"a.mkv"}, opt)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
	if len(ev.log) != 0 {
		t.Fatalf("got events %v, want none", ev.log)
	}
}

// A failing remux yields a non-zero exit code but later files are still
// attempted.
func TestRunBatchProcessingFailure(t *testing.T) {
	ev := &batchEvents{err: errors.New("remux blew up")}
	opt := batchOptions{
		rules:          englishOnly(),
		nonInteractive: true,
		dryrun:         true,
		run:            ev,
		ui:             newUI(io.Discard),
		identify: ev.identify(map[string][]track{
			"a.mkv": audioList("eng", "jpn"),
			"b.mkv": audioList("eng", "ger"),
		}),
	}

	code := runBatch([]string{"a.mkv", "b.mkv"}, opt)
	if code != 1 {
		t.Fatalf("got exit code %d, want 1", code)
	}
	want := []string{"identify a.mkv", "identify b.mkv", "mkvmerge", "mkvmerge"}
	if strings.Join(ev.log, ",") != strings.Join(want, ",") {
		t.Fatalf("event order: got %v, want %v", ev.log, want)
	}
}

func TestAnalysisStatusString(t *testing.T) {
	casetests := []struct {
		status analysisStatus
		want   string
	}{
		{statusSelected, "selected"},
		{statusNoTracks, "no audio tracks"},
		{statusNoSelection, "no selection"},
		{statusAllKept, "all tracks kept"},
		{statusFailed, "failed"},
	}
	for _, tt := range casetests {
		if got := tt.status.String(); got != tt.want {
			t.Fatalf("got %q, want %q", got, tt.want)
		}
	}
}
