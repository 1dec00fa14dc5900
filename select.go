// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

// selection is the final outcome for one track kind of one file: the
// tracks that survive (in original order) plus an optional default track.
// Invariant: when hasDefault is true, defaultID references a kept track.
type selection struct {
	kept       []track
	defaultID  int
	hasDefault bool
}

// applyRules computes the set of 0-based track indices to remove under
// the given keep/remove language sets. A non-empty keep set removes every
// track whose language is not in it; a non-empty remove set removes every
// track whose language is in it. Both conditions apply independently, so
// a track can be excluded by either rule. Empty sets remove nothing.
func applyRules(tracks []track, keep, remove map[string]bool) map[int]bool {
	toRemove := map[int]bool{}

	for i, t := range tracks {
		lang := t.normalLang()
		if len(keep) != 0 && !keep[lang] {
			toRemove[i] = true
		}
		if len(remove) != 0 && remove[lang] {
			toRemove[i] = true
		}
	}
	return toRemove
}

// findDefaultTrack returns the index of the first track (in original
// order) whose normalized language matches lang. Ties always resolve to
// the earliest track. Returns ok=false when lang is empty or no track
// matches.
func findDefaultTrack(tracks []track, lang string) (int, bool) {
	if lang == "" {
		return 0, false
	}
	for i, t := range tracks {
		if t.normalLang() == lang {
			return i, true
		}
	}
	return 0, false
}

// keepTracks returns the tracks not marked in the removal set, preserving
// original order.
func keepTracks(tracks []track, toRemove map[int]bool) []track {
	kept := make([]track, 0, len(tracks))
	for i, t := range tracks {
		if !toRemove[i] {
			kept = append(kept, t)
		}
	}
	return kept
}

// selectNonInteractive applies the configured rules mechanically to one
// track kind. The default track is looked up against the original list
// and only reported when the matched track survived filtering.
func selectNonInteractive(kind trackKind, tracks []track, rules *ruleSet) selection {
	toRemove := applyRules(tracks, rules.keep(kind), rules.remove(kind))
	sel := selection{kept: keepTracks(tracks, toRemove)}

	if i, ok := findDefaultTrack(tracks, rules.defaultLang(kind)); ok {
		id := tracks[i].id
		if hasTrackID(sel.kept, id) {
			sel.defaultID = id
			sel.hasDefault = true
		}
	}
	return sel
}
