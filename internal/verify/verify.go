// Package verify re-reads a rewritten file with an independent tag reader.
package verify

import (
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// Result summarises what the independent reader found.
type Result struct {
	Format   tag.Format
	FileType tag.FileType
	Title    string
	Artist   string
	Album    string
	Genre    string
	Comment  string
	Year     int
}

func (r Result) String() string {
	return fmt.Sprintf("format=%s type=%s title=%q artist=%q album=%q", r.Format, r.FileType, r.Title, r.Artist, r.Album)
}

// File reads the metadata of the file at path.
func File(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil {
		return Result{}, fmt.Errorf("read tag: %w", err)
	}
	return Result{
		Format:   m.Format(),
		FileType: m.FileType(),
		Title:    clean(m.Title()),
		Artist:   clean(m.Artist()),
		Album:    clean(m.Album()),
		Genre:    clean(m.Genre()),
		Comment:  clean(m.Comment()),
		Year:     m.Year(),
	}, nil
}

func clean(s string) string {
	return strings.TrimRight(s, "\x00")
}
