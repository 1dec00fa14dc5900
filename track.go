// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"fmt"
	"strings"
)

// trackKind identifies one of the two track classes langfilter operates on.
// Video tracks are never touched and have no kind here.
type trackKind int

const (
	kindAudio trackKind = iota
	kindSubtitles
)

// Track type names as reported by mkvmerge --identify.
const (
	typeAudio     = "audio"
	typeSubtitles = "subtitles"
	typeVideo     = "video"
)

func (k trackKind) String() string {
	if k == kindSubtitles {
		return "subtitle"
	}
	return "audio"
}

// mkvmergeType returns the type string mkvmerge uses for this kind.
func (k trackKind) mkvmergeType() string {
	if k == kindSubtitles {
		return typeSubtitles
	}
	return typeAudio
}

// track holds the properties of a single audio or subtitle track.
//
// A short chat about track numbering: mkvmerge and mkvextract identify
// tracks with ids starting at zero, while the track numbers stored in the
// file (and used by mkvpropedit) start at one. The id is the only stable
// reference: once tracks are filtered out, list positions shift but ids
// don't. Selections and defaults are therefore always matched by id, and
// the 1-based ordinal is used for display and user input only.
type track struct {
	ordinal      int
	id           int
	language     string
	name         string
	codec        string
	channels     int
	defaultTrack bool
}

// normalLang returns the lowercased language of the track, with missing
// languages mapped to the literal "unknown" so that rule matching treats
// untagged tracks uniformly.
func (t track) normalLang() string {
	lang := strings.TrimSpace(strings.ToLower(t.language))
	if lang == "" {
		return "unknown"
	}
	return lang
}

func (t track) String() string {
	lang := t.language
	if lang == "" {
		lang = "unknown"
	}
	s := fmt.Sprintf("Track %d [%s]", t.ordinal, lang)
	if t.name != "" {
		s += " - " + t.name
	}
	if t.channels > 0 {
		s += fmt.Sprintf(" (%dch)", t.channels)
	}
	return s
}

// trackIDs returns the ids of the given tracks, preserving order.
func trackIDs(tracks []track) []int {
	ids := make([]int, len(tracks))
	for i, t := range tracks {
		ids[i] = t.id
	}
	return ids
}

// hasTrackID returns true if one of the tracks carries the given id.
func hasTrackID(tracks []track, id int) bool {
	for _, t := range tracks {
		if t.id == id {
			return true
		}
	}
	return false
}
