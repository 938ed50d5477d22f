package report

import (
	"encoding/json"
	"os"
	"time"

	"example.com/mp3tag/internal/id3"
)

// FrameRow is one scanned frame as it appears in a tag sheet.
type FrameRow struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Value    string `json:"value"`
	Size     int32  `json:"size"`
	Encoding byte   `json:"encoding"`
	Offset   int64  `json:"offset"`
}

// TagSheet is the exported listing of one file's tag.
type TagSheet struct {
	Path        string     `json:"path"`
	Sha256      string     `json:"sha256"`
	FileSize    int64      `json:"fileSize"`
	Version     uint8      `json:"version"`
	Stop        string     `json:"stop"`
	Frames      []FrameRow `json:"frames"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

// NewTagSheet builds a sheet from a scanned tag. Every scanned frame is
// included, listed or not.
func NewTagSheet(info *id3.TagInfo, sha string, size int64) TagSheet {
	sheet := TagSheet{
		Path:        info.Path,
		Sha256:      sha,
		FileSize:    size,
		Version:     info.Header.Version(),
		Stop:        string(info.Stop),
		GeneratedAt: time.Now().UTC(),
	}
	for _, f := range info.Frames {
		sheet.Frames = append(sheet.Frames, FrameRow{
			ID:       f.ID.String(),
			Label:    f.Label(),
			Value:    f.Text(),
			Size:     f.Size,
			Encoding: f.Encoding(),
			Offset:   f.Offset,
		})
	}
	return sheet
}

func SaveJSON(sheet TagSheet, out string) error {
	b, err := json.MarshalIndent(sheet, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadJSON(path string) (TagSheet, error) {
	var sheet TagSheet
	b, err := os.ReadFile(path)
	if err != nil {
		return sheet, err
	}
	err = json.Unmarshal(b, &sheet)
	return sheet, err
}
