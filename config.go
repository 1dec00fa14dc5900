// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// ruleSet holds the configured language policy. It is built once at
// startup and read-only afterwards, so it can be shared freely across the
// whole batch.
type ruleSet struct {
	keepAudio   map[string]bool
	removeAudio map[string]bool
	keepSubs    map[string]bool
	removeSubs  map[string]bool

	defaultAudio string
	defaultSubs  string
}

func newRuleSet() *ruleSet {
	return &ruleSet{
		keepAudio:   map[string]bool{},
		removeAudio: map[string]bool{},
		keepSubs:    map[string]bool{},
		removeSubs:  map[string]bool{},
	}
}

// hasRules returns true if any keep/remove language set is configured.
// A default language alone does not count: it influences which track is
// flagged, never which tracks survive.
func (r *ruleSet) hasRules() bool {
	return len(r.keepAudio) != 0 || len(r.removeAudio) != 0 ||
		len(r.keepSubs) != 0 || len(r.removeSubs) != 0
}

// keep returns the configured keep-set for a track kind.
func (r *ruleSet) keep(kind trackKind) map[string]bool {
	if kind == kindSubtitles {
		return r.keepSubs
	}
	return r.keepAudio
}

// remove returns the configured remove-set for a track kind.
func (r *ruleSet) remove(kind trackKind) map[string]bool {
	if kind == kindSubtitles {
		return r.removeSubs
	}
	return r.removeAudio
}

// defaultLang returns the configured default language for a track kind,
// or the empty string when none is set.
func (r *ruleSet) defaultLang(kind trackKind) string {
	if kind == kindSubtitles {
		return r.defaultSubs
	}
	return r.defaultAudio
}

func (r *ruleSet) String() string {
	var parts []string
	add := func(label string, set map[string]bool) {
		if len(set) == 0 {
			return
		}
		langs := make([]string, 0, len(set))
		for lang := range set {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		parts = append(parts, label+": "+strings.Join(langs, ","))
	}
	add("audio keep", r.keepAudio)
	add("audio remove", r.removeAudio)
	add("subtitle keep", r.keepSubs)
	add("subtitle remove", r.removeSubs)
	if r.defaultAudio != "" {
		parts = append(parts, "default audio: "+r.defaultAudio)
	}
	if r.defaultSubs != "" {
		parts = append(parts, "default subtitle: "+r.defaultSubs)
	}
	if len(parts) == 0 {
		return "no rules"
	}
	return strings.Join(parts, "; ")
}

// splitLangs converts a comma separated list of languages into a set.
// Entries are trimmed and lowercased; empty entries are dropped.
func splitLangs(s string) map[string]bool {
	set := map[string]bool{}
	for _, lang := range strings.Split(s, ",") {
		lang = strings.TrimSpace(strings.ToLower(lang))
		if lang != "" {
			set[lang] = true
		}
	}
	return set
}

// loadRules reads the INI configuration file at path.
//
// The expected layout is an [audio] section with "keep", "remove",
// "default_audio" and "default_subtitle" keys, plus an optional
// [subtitles] section with "keep" and "remove". Older configs with a
// single unnamed section holding "keep"/"remove" still work and apply to
// audio tracks. Missing keys simply yield empty rules.
func loadRules(path string) (*ruleSet, error) {
	rules := newRuleSet()

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", path, err)
	}

	audio := f.Section("audio")
	if len(audio.Keys()) == 0 {
		// Legacy single-section format: keep/remove at the top or in the
		// first named section apply to audio.
		audio = f.Section(ini.DefaultSection)
		if len(audio.Keys()) == 0 {
			for _, sec := range f.Sections() {
				if sec.Name() == ini.DefaultSection || sec.Name() == "audio" || sec.Name() == "subtitles" {
					continue
				}
				audio = sec
				break
			}
		}
	}

	rules.keepAudio = splitLangs(audio.Key("keep").String())
	rules.removeAudio = splitLangs(audio.Key("remove").String())
	rules.defaultAudio = strings.TrimSpace(strings.ToLower(audio.Key("default_audio").String()))
	rules.defaultSubs = strings.TrimSpace(strings.ToLower(audio.Key("default_subtitle").String()))

	subs := f.Section("subtitles")
	rules.keepSubs = splitLangs(subs.Key("keep").String())
	rules.removeSubs = splitLangs(subs.Key("remove").String())

	return rules, nil
}

// findRulesFile probes the standard config locations and returns the
// first one that exists, or the empty string when none do.
func findRulesFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "langfilter", "config.ini"))
	}
	candidates = append(candidates, "langfilter.ini", ".langfilter.ini")
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".langfilter.ini"))
	}
	for _, path := range candidates {
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path
		}
	}
	return ""
}
