// rename.go implements the optional scene-name cleanup applied after a
// file has been processed. The new name is built from the metadata parsed
// out of the original filename.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	ParseTorrentName "github.com/middelink/go-parse-torrent-name"
)

// maskRE matches one %-specifier in a rename mask: an optional printf
// style width/precision modifier followed by a tag in braces, e.g.
// "%{title}" or "%02.2{season}".
var maskRE = regexp.MustCompile(`%([0-9.]*)\{([a-z]+)\}`)

// format expands a rename mask using the scene information parsed from
// fname. Integer tags accept printf width/precision modifiers. Unknown
// tags and tags with no value in the filename are errors, so a mask that
// asks for information the filename lacks fails instead of producing a
// half-named file.
func format(mask, fname string) (string, error) {
	parsed, err := ParseTorrentName.Parse(filepath.Base(fname))
	if err != nil {
		return "", err
	}

	strTags := map[string]string{
		"title":      titleCase(parsed.Title),
		"resolution": parsed.Resolution,
		"quality":    parsed.Quality,
		"codec":      parsed.Codec,
		"audio":      parsed.Audio,
		"group":      parsed.Group,
	}
	intTags := map[string]int{
		"year":    parsed.Year,
		"season":  parsed.Season,
		"episode": parsed.Episode,
	}

	var badtag error
	out := maskRE.ReplaceAllStringFunc(mask, func(m string) string {
		groups := maskRE.FindStringSubmatch(m)
		mod, tag := groups[1], groups[2]

		if v, ok := strTags[tag]; ok {
			if v == "" {
				badtag = fmt.Errorf("no %s found in filename %s", tag, fname)
				return ""
			}
			return fmt.Sprintf("%"+mod+"s", v)
		}
		if v, ok := intTags[tag]; ok {
			if v == 0 {
				badtag = fmt.Errorf("no %s found in filename %s", tag, fname)
				return ""
			}
			return fmt.Sprintf("%"+mod+"d", v)
		}
		badtag = fmt.Errorf("unknown tag %q in format %q", tag, mask)
		return ""
	})
	if badtag != nil {
		return "", badtag
	}
	return out, nil
}

// sceneName builds the default clean name from whatever information the
// filename carries: "Title (year) - SnnEnn [resolution]", with every
// element but the title optional.
func sceneName(fname string) (string, error) {
	parsed, err := ParseTorrentName.Parse(filepath.Base(fname))
	if err != nil {
		return "", err
	}
	if parsed.Title == "" {
		return "", fmt.Errorf("unable to parse title from file %s", fname)
	}

	parts := []string{titleCase(parsed.Title)}
	if parsed.Year != 0 {
		parts = append(parts, fmt.Sprintf("(%d)", parsed.Year))
	}
	if parsed.Season != 0 || parsed.Episode != 0 {
		parts = append(parts, fmt.Sprintf("- S%02.2dE%02.2d", parsed.Season, parsed.Episode))
	}
	if parsed.Resolution != "" {
		parts = append(parts, fmt.Sprintf("[%s]", parsed.Resolution))
	}
	return strings.Join(parts, " "), nil
}

// renameFile renames a processed file to its cleaned-up form. An empty
// mask selects the default scene format. The extension of the original
// file is always preserved.
func renameFile(fname, mask string, dryrun bool, u *ui) error {
	var newname string
	var err error

	if mask == "" {
		newname, err = sceneName(fname)
	} else {
		newname, err = format(mask, fname)
	}
	if err != nil {
		return err
	}

	dir := filepath.Dir(fname)
	newpath := filepath.Join(dir, newname+filepath.Ext(fname))
	if newpath == fname {
		return nil
	}

	u.printf("%s => %s\n", fname, newpath)
	if dryrun {
		return nil
	}
	return os.Rename(fname, newpath)
}

// titleCase capitalizes the first letter of every word. The first letter
// may be a multi-byte rune, so this works rune-wise, not on bytes.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
