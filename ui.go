// ui.go holds the presentation layer. The selection engine and the
// session state machine never print directly; they call through this
// type, which keeps them testable without a terminal.

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	colRed    = color.New(color.FgRed)
	colGreen  = color.New(color.FgGreen)
	colYellow = color.New(color.FgYellow)
	colBold   = color.New(color.Bold)
)

type ui struct {
	w io.Writer
}

func newUI(w io.Writer) *ui {
	return &ui{w: w}
}

func (u *ui) printf(format string, args ...interface{}) {
	fmt.Fprintf(u.w, format, args...)
}

func (u *ui) println(args ...interface{}) {
	fmt.Fprintln(u.w, args...)
}

func (u *ui) warnf(format string, args ...interface{}) {
	fmt.Fprintln(u.w, colYellow.Sprintf(format, args...))
}

func (u *ui) errorf(format string, args ...interface{}) {
	fmt.Fprintln(u.w, colRed.Sprintf(format, args...))
}

func (u *ui) successf(format string, args ...interface{}) {
	fmt.Fprintln(u.w, colGreen.Sprintf(format, args...))
}

func (u *ui) headerf(format string, args ...interface{}) {
	fmt.Fprintln(u.w, colBold.Sprintf(format, args...))
}

// trackTable renders the tracks of one kind with their current selection
// status and the tentative default marker. def is a 0-based index, -1 for
// none.
func (u *ui) trackTable(tracks []track, toRemove map[int]bool, def int) {
	tab := table.NewWriter()
	tab.SetOutputMirror(u.w)
	tab.AppendHeader(table.Row{"#", "Language", "Name", "Codec", "Channels", "Status", "Default"})

	for i, t := range tracks {
		status := colGreen.Sprint("keep")
		if toRemove[i] {
			status = colRed.Sprint("remove")
		}
		channels := ""
		if t.channels > 0 {
			channels = fmt.Sprintf("%d", t.channels)
		}
		// Make the default flag easier to see.
		mark := ""
		if i == def {
			mark = "<====="
		}
		tab.AppendRow(table.Row{t.ordinal, t.normalLang(), t.name, t.codec, channels, status, mark})
	}
	tab.Render()

	removed := len(toRemove)
	u.printf("%s | %s\n",
		colGreen.Sprintf("Tracks to keep: %d", len(tracks)-removed),
		colRed.Sprintf("Tracks to remove: %d", removed))
	if removed == len(tracks) && removed > 0 {
		u.errorf("All tracks selected for removal!")
	}
}

// commandHelp prints the interactive command reference for a session.
func (u *ui) commandHelp(kind trackKind) {
	u.headerf("Commands:")
	u.println("  - Enter track number(s) to toggle selection for removal")
	u.println("  - Use ranges: 1-5 toggles tracks 1, 2, 3, 4, 5")
	u.println("  - Mix numbers and ranges: 1 3-5 8")
	u.printf("  - 'dN' to make track N the default %s track\n", kind)
	u.println("  - 'n' or 'next' to proceed with current selection")
	u.println("  - 'c' or 'clear' to clear all selections")
	u.println("  - 'q' or 'quit' to cancel")
}

// selectionSummary prints the final keep/remove lists for one kind.
func (u *ui) selectionSummary(kind trackKind, tracks []track, toRemove map[int]bool) {
	kept := keepTracks(tracks, toRemove)
	u.headerf("Final %s selection:", kind)
	u.printf("  Tracks to keep: %s\n", colGreen.Sprintf("%d", len(kept)))
	u.printf("  Tracks to remove: %s\n", colRed.Sprintf("%d", len(toRemove)))

	if len(kept) != 0 {
		u.successf("Keeping:")
		for _, t := range kept {
			u.printf("  + %s\n", t)
		}
	}
	if len(toRemove) != 0 {
		u.errorf("Removing:")
		for i, t := range tracks {
			if toRemove[i] {
				u.printf("  - %s\n", t)
			}
		}
	}
}
