package id3

import (
	"errors"
	"fmt"
)

var ErrUnsupportedOption = errors.New("unsupported tag option")

// Target is a frame that can be modified from the command line.
type Target struct {
	Code  byte
	ID    FrameID
	Label string
}

// Option returns the command line form of the target, e.g. "-t".
func (t Target) Option() string {
	return "-" + string(t.Code)
}

func mustID(s string) FrameID {
	id, ok := ParseFrameID(s)
	if !ok {
		panic("id3: bad frame id " + s)
	}
	return id
}

var (
	IDTitle    = mustID("TIT2")
	IDArtist   = mustID("TPE1")
	IDAlbum    = mustID("TALB")
	IDYear     = mustID("TYER")
	IDGenre    = mustID("TCON")
	IDComment  = mustID("COMM")
	IDLyricist = mustID("TEXT")
	IDComposer = mustID("TCOM")
	IDDate     = mustID("TDRC")
)

// targets is ordered as shown in the help text.
var targets = []Target{
	{Code: 't', ID: IDTitle, Label: "Title"},
	{Code: 'a', ID: IDArtist, Label: "Artist"},
	{Code: 'A', ID: IDAlbum, Label: "Album"},
	{Code: 'y', ID: IDYear, Label: "Year"},
	{Code: 'm', ID: IDGenre, Label: "Genre"},
	{Code: 'c', ID: IDComment, Label: "Comment"},
}

var labels = map[FrameID]string{
	IDTitle:    "Title",
	IDArtist:   "Artist",
	IDAlbum:    "Album",
	IDYear:     "Year",
	IDDate:     "Year",
	IDGenre:    "Genre",
	IDLyricist: "Lyricist",
	IDComposer: "Composer",
	IDComment:  "Comment",
}

// Targets returns the editable frames in help order.
func Targets() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// ResolveOption maps an option such as "-t" to its target frame.
func ResolveOption(opt string) (Target, error) {
	if len(opt) != 2 || opt[0] != '-' {
		return Target{}, fmt.Errorf("%w %q", ErrUnsupportedOption, opt)
	}
	for _, t := range targets {
		if t.Code == opt[1] {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("%w %q", ErrUnsupportedOption, opt)
}

// LabelOf returns the display label for id, or "" for frames that are not listed.
func LabelOf(id FrameID) string {
	return labels[id]
}
