// verify.go reads track information straight out of the Matroska EBML
// structure, without shelling out to mkvtoolnix. This backs the --show
// listing and the sanity check run against freshly remuxed files.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/remko/go-mkvparse"
)

// Matroska track types. See https://www.matroska.org/technical/specs/index.html
const (
	ebmlTypeVideo    = 1
	ebmlTypeAudio    = 2
	ebmlTypeSubtitle = 17
)

// ebmlTrack holds the raw per-track fields collected from the file.
type ebmlTrack struct {
	number      int64
	uid         int64
	name        string
	tracktype   int64
	language    string
	flagDefault bool
	codecID     string
}

func (t ebmlTrack) typeName() string {
	switch t.tracktype {
	case ebmlTypeVideo:
		return typeVideo
	case ebmlTypeAudio:
		return typeAudio
	case ebmlTypeSubtitle:
		return typeSubtitles
	}
	return fmt.Sprintf("type %d", t.tracktype)
}

// trackHandler accumulates track entries while go-mkvparse walks the
// Tracks element.
type trackHandler struct {
	track   ebmlTrack
	tracks  []ebmlTrack
	inTrack bool
}

func (p *trackHandler) HandleMasterBegin(id mkvparse.ElementID, info mkvparse.ElementInfo) (bool, error) {
	// Skip large elements.
	if id == mkvparse.CuesElement || id == mkvparse.ClusterElement {
		return false, nil
	}
	if id == mkvparse.TrackEntryElement {
		p.inTrack = true
	}
	return true, nil
}

func (p *trackHandler) HandleMasterEnd(id mkvparse.ElementID, info mkvparse.ElementInfo) error {
	if id == mkvparse.TrackEntryElement {
		p.tracks = append(p.tracks, p.track)
		p.track = ebmlTrack{}
		p.inTrack = false
	}
	return nil
}

func (p *trackHandler) HandleString(id mkvparse.ElementID, value string, info mkvparse.ElementInfo) error {
	if !p.inTrack {
		return nil
	}
	switch id {
	case mkvparse.NameElement:
		p.track.name = value
	case mkvparse.LanguageElement:
		p.track.language = value
	case mkvparse.CodecIDElement:
		p.track.codecID = value
	}
	return nil
}

func (p *trackHandler) HandleInteger(id mkvparse.ElementID, value int64, info mkvparse.ElementInfo) error {
	if !p.inTrack {
		return nil
	}
	switch id {
	case mkvparse.TrackNumberElement:
		p.track.number = value
	case mkvparse.TrackUIDElement:
		p.track.uid = value
	case mkvparse.TrackTypeElement:
		p.track.tracktype = value
	case mkvparse.FlagDefaultElement:
		if value != 0 {
			p.track.flagDefault = true
		}
	}
	return nil
}

func (p *trackHandler) HandleFloat(id mkvparse.ElementID, value float64, info mkvparse.ElementInfo) error {
	return nil
}

func (p *trackHandler) HandleDate(id mkvparse.ElementID, value time.Time, info mkvparse.ElementInfo) error {
	return nil
}

func (p *trackHandler) HandleBinary(id mkvparse.ElementID, value []byte, info mkvparse.ElementInfo) error {
	return nil
}

// parseTracks reads the track entries of a Matroska file.
func parseTracks(fname string) ([]ebmlTrack, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	handler := trackHandler{}
	if err := mkvparse.ParseSections(f, &handler, mkvparse.TracksElement); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", fname, err)
	}
	return handler.tracks, nil
}

// showFile lists all tracks in a file, straight from the container.
func showFile(fname string, u *ui) error {
	tracks, err := parseTracks(fname)
	if err != nil {
		return err
	}

	tab := table.NewWriter()
	tab.SetOutputMirror(u.w)
	tab.AppendHeader(table.Row{"Number", "UID", "Type", "Name", "Language", "Codec", "Default"})
	for _, t := range tracks {
		mark := ""
		if t.flagDefault {
			mark = "<====="
		}
		tab.AppendRow(table.Row{t.number, uint64(t.uid), t.typeName(), t.name, t.language, t.codecID, mark})
	}
	u.println(fname)
	tab.Render()
	return nil
}

// verifyRemux compares the track counts of the produced file against the
// recorded selection. A mismatch only warns: the remux already succeeded
// and the output is usable, but something about the selection plumbing
// deserves a look.
func verifyRemux(fname string, wantAudio, wantSubs int, u *ui) {
	tracks, err := parseTracks(fname)
	if err != nil {
		u.warnf("Unable to verify %s: %v", fname, err)
		return
	}
	var audio, subs int
	for _, t := range tracks {
		switch t.tracktype {
		case ebmlTypeAudio:
			audio++
		case ebmlTypeSubtitle:
			subs++
		}
	}
	if audio != wantAudio {
		u.warnf("Verification: %s has %d audio track(s), expected %d", fname, audio, wantAudio)
	}
	if subs != wantSubs {
		u.warnf("Verification: %s has %d subtitle track(s), expected %d", fname, subs, wantSubs)
	}
}
