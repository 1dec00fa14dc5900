// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// errCancelled is returned when the user quits a session or interrupts
// the run. A cancellation aborts the whole batch, not just one file.
var errCancelled = errors.New("operation cancelled")

// lineReader delivers input lines over a channel so that a blocked
// prompt can still react to an interrupt. One lineReader is shared by
// every session of a batch: a plain per-session bufio reader could read
// ahead and swallow lines meant for the next session.
type lineReader struct {
	lines     chan string
	interrupt <-chan os.Signal
}

func newLineReader(r io.Reader, interrupt <-chan os.Signal) *lineReader {
	l := &lineReader{
		lines:     make(chan string),
		interrupt: interrupt,
	}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			l.lines <- scanner.Text()
		}
		close(l.lines)
	}()
	return l
}

// readLine returns the next line of user input. An interrupt or the end
// of input counts as a cancellation.
func (l *lineReader) readLine() (string, error) {
	select {
	case line, ok := <-l.lines:
		if !ok {
			return "", errCancelled
		}
		return line, nil
	case <-l.interrupt:
		return "", errCancelled
	}
}

// session drives the interactive selection loop for one track kind of
// one file. Its working state is a 0-based removal set plus a tentative
// default index (-1 when none); both are discarded when the session ends.
//
// The session never sets the tentative default to a removed index, and
// toggling the default index into the removal set clears the default.
type session struct {
	kind     trackKind
	tracks   []track
	toRemove map[int]bool
	def      int

	in *lineReader
	ui *ui
}

// newSession creates a session seeded from the configured rules: the
// removal set comes from applyRules and the tentative default from
// findDefaultTrack, skipped when the matched track is already marked.
func newSession(kind trackKind, tracks []track, rules *ruleSet, in *lineReader, u *ui) *session {
	s := &session{
		kind:     kind,
		tracks:   tracks,
		toRemove: map[int]bool{},
		def:      -1,
		in:       in,
		ui:       u,
	}
	if rules == nil {
		return s
	}
	if rules.hasRules() {
		s.toRemove = applyRules(tracks, rules.keep(kind), rules.remove(kind))
		u.warnf("Applied default configuration: %s", rules)
	}
	if i, ok := findDefaultTrack(tracks, rules.defaultLang(kind)); ok && !s.toRemove[i] {
		s.def = i
	}
	return s
}

// run executes the selection loop until the user confirms or cancels.
// It returns errCancelled on quit, interrupt or end of input.
func (s *session) run() (selection, error) {
	s.ui.headerf("Found %d %s track(s):", len(s.tracks), s.kind)

	for {
		s.ui.println()
		s.ui.trackTable(s.tracks, s.toRemove, s.def)
		s.ui.println()
		s.ui.commandHelp(s.kind)
		s.ui.println()
		s.ui.printf("Selection: ")

		line, err := s.readLine()
		if err != nil {
			return selection{}, err
		}
		input := strings.ToLower(strings.TrimSpace(line))

		switch {
		case input == "q" || input == "quit":
			return selection{}, errCancelled

		// Bare "d" and "done" remain accepted for muscle memory from the
		// audio-only versions; "dN" is the default-track command.
		case input == "n" || input == "next" || input == "d" || input == "done":
			if done := s.confirmSelection(); done {
				return s.finalize(), nil
			}

		case input == "c" || input == "clear":
			s.toRemove = map[int]bool{}
			s.def = -1

		case input == "":
			s.ui.warnf("Please enter a command or track number(s).")

		case strings.HasPrefix(input, "d") && isDigits(input[1:]):
			s.setDefault(input[1:])

		default:
			s.toggle(strings.Fields(input))
		}
	}
}

// readLine reads one line of user input. An interrupt or end of input
// counts as a cancellation, exactly like an explicit quit.
func (s *session) readLine() (string, error) {
	line, err := s.in.readLine()
	if err != nil {
		s.ui.warnf("Operation cancelled.")
		return "", err
	}
	return line, nil
}

// confirmSelection applies the empty-keep guard: when every track is
// marked for removal the user must confirm explicitly, and declining
// returns to browsing with the state untouched.
func (s *session) confirmSelection() bool {
	if len(s.toRemove) < len(s.tracks) {
		return true
	}
	s.ui.errorf("All tracks selected for removal. This would leave no %s tracks.", s.kind)
	s.ui.printf("Are you sure you want to continue? (y/N): ")

	line, err := s.readLine()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// setDefault handles the dN command. The referenced track must exist and
// must not be marked for removal; otherwise the state stays unchanged.
func (s *session) setDefault(num string) {
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > len(s.tracks) {
		s.ui.errorf("Invalid track number: %s. Must be between 1 and %d.", num, len(s.tracks))
		return
	}
	if s.toRemove[n-1] {
		s.ui.errorf("Track %d is marked for removal and cannot be the default.", n)
		return
	}
	s.def = n - 1
	s.ui.successf("Track %d will be the default %s track.", n, s.kind)
}

// toggle flips the removal state of every referenced index. Validation is
// all-or-nothing: a single bad token leaves the whole state unchanged.
func (s *session) toggle(parts []string) {
	indices, err := parseTrackSelection(parts, len(s.tracks))
	if err != nil {
		s.ui.errorf("%v", err)
		return
	}
	for _, i := range indices {
		if s.toRemove[i] {
			delete(s.toRemove, i)
		} else {
			s.toRemove[i] = true
			if i == s.def {
				s.def = -1
			}
		}
	}
	s.ui.successf("Selection updated.")
}

// finalize freezes the session into a selection. The tentative default
// index resolves against the pre-filter list and is dropped unless its
// id is still present in the kept list.
func (s *session) finalize() selection {
	sel := selection{kept: keepTracks(s.tracks, s.toRemove)}
	if s.def >= 0 {
		id := s.tracks[s.def].id
		if hasTrackID(sel.kept, id) {
			sel.defaultID = id
			sel.hasDefault = true
		}
	}
	s.ui.println()
	s.ui.selectionSummary(s.kind, s.tracks, s.toRemove)
	return sel
}

// parseTrackSelection parses space separated selection tokens, each a
// 1-based track number or an inclusive A-B range, into 0-based indices.
// Any invalid token fails the entire command.
func parseTrackSelection(parts []string, maxTracks int) ([]int, error) {
	var indices []int

	for _, part := range parts {
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
			end, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("invalid range format: %q, use format like '1-5'", part)
			}
			if start < 1 || end < 1 || start > maxTracks || end > maxTracks {
				return nil, fmt.Errorf("invalid range: %s, numbers must be between 1 and %d", part, maxTracks)
			}
			if start > end {
				return nil, fmt.Errorf("invalid range: %s, start must be <= end", part)
			}
			for n := start; n <= end; n++ {
				indices = append(indices, n-1)
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid input: %q, please enter numbers or ranges", part)
		}
		if n < 1 || n > maxTracks {
			return nil, fmt.Errorf("invalid track number: %d, must be between 1 and %d", n, maxTracks)
		}
		indices = append(indices, n-1)
	}
	return indices, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
