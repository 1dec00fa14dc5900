// This file is part of langfilter (https://github.com/paranoidi/langfilter)
// See instructions in the README.md file that accompanies this program.

package main

import (
	"testing"
)

func TestFormat(t *testing.T) {
	casetests := []struct {
		fname     string
		mask      string
		want      string
		wantError bool
	}{
		// Movie with year, resolution and codec.
		{
			fname: "The Long Goodbye 1973 1080p BluRay x264.mkv",
			mask:  "%{title} (%{year}) [%{resolution} %{codec}]",
			want:  "The Long Goodbye (1973) [1080p x264]",
		},
		// Width modifiers on integer tags, all-lowercase input.
		{
			fname: "night watch s03e07 720p HDTV.mkv",
			mask:  "%{title} - S%02.2{season}E%02.2{episode} %{quality}",
			want:  "Night Watch - S03E07 HDTV",
		},
		// Plain integer tags without modifiers.
		{
			fname: "Night Watch S03E07 720p.mkv",
			mask:  "%{title} %{season}x%{episode}",
			want:  "Night Watch 3x7",
		},
		// Unknown tag in the mask.
		{
			fname:     "Night Watch S03E07 720p.mkv",
			mask:      "%{show} S%02.2{season}",
			wantError: true,
		},
		// Mask asks for information the filename lacks.
		{
			fname:     "Moonrise 2012 720p.mkv",
			mask:      "%{title} S%02.2{season}E%02.2{episode}",
			wantError: true,
		},
	}

	for _, tt := range casetests {
		got, err := format(tt.mask, tt.fname)
		if !tt.wantError {
			if err != nil {
				t.Fatalf("Got error %q want no error", err)
			}
			if got != tt.want {
				t.Fatalf("format diff: Got %v, want %v", got, tt.want)
			}
			continue
		}
		// Here, we want to see an error.
		if err == nil {
			t.Errorf("Got no error, want error")
		}
	}
}

func TestSceneName(t *testing.T) {
	casetests := []struct {
		fname     string
		want      string
		wantError bool
	}{
		{
			fname: "Series Title S01E02 HDTV x264 (2022) [1080p] FOOBAR.mkv",
			want:  "Series Title (2022) - S01E02 [1080p]",
		},
		// Movie without season/episode information.
		{
			fname: "some movie 2019 720p.mkv",
			want:  "Some Movie (2019) [720p]",
		},
	}

	for _, tt := range casetests {
		got, err := sceneName(tt.fname)
		if !tt.wantError {
			if err != nil {
				t.Fatalf("Got error %q want no error", err)
			}
			if got != tt.want {
				t.Fatalf("sceneName diff: Got %v, want %v", got, tt.want)
			}
			continue
		}
		if err == nil {
			t.Errorf("Got no error, want error")
		}
	}
}

func TestTitleCase(t *testing.T) {
	casetests := []struct {
		in   string
		want string
	}{
		{"a bad title", "A Bad Title"},
		// Words starting with a multi-byte rune.
		{"érase una vez", "Érase Una Vez"},
		{"über den dächern", "Über Den Dächern"},
	}

	for _, tt := range casetests {
		if got := titleCase(tt.in); got != tt.want {
			t.Fatalf("titleCase(%q): Got %q, want %q", tt.in, got, tt.want)
		}
	}
}
