package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/mp3tag/internal/id3"
)

func sampleInfo(t *testing.T) *id3.TagInfo {
	t.Helper()
	data := []byte("ID3\x03\x00\x00\x00\x00\x00\x00" +
		"TIT2\x00\x00\x00\x06\x00\x00\x00Title" +
		"TXXX\x00\x00\x00\x02\x00\x00\x00x" +
		"COMM\x00\x00\x00\x05\x00\x00\x00Caf\xe9" +
		"\x00\x00\x00\x00")
	info, err := id3.Scan(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	info.Path = "/music/track.mp3"
	return info
}

const sampleHash = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestNewTagSheet(t *testing.T) {
	sheet := NewTagSheet(sampleInfo(t), sampleHash, 1234)
	if len(sheet.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(sheet.Frames))
	}
	if sheet.Version != 3 || sheet.Stop != string(id3.StopPadding) {
		t.Fatalf("sheet = %+v", sheet)
	}
	if row := sheet.Frames[0]; row.ID != "TIT2" || row.Label != "Title" || row.Value != "Title" || row.Size != 6 {
		t.Fatalf("row 0 = %+v", row)
	}
	if row := sheet.Frames[1]; row.Label != "" {
		t.Fatalf("TXXX label = %q, want empty", row.Label)
	}
	if row := sheet.Frames[2]; row.Value != "Café" {
		t.Fatalf("COMM value = %q", row.Value)
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sheet.json")
	sheet := NewTagSheet(sampleInfo(t), sampleHash, 1234)
	if err := SaveJSON(sheet, out); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	loaded, err := LoadJSON(out)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.Sha256 != sampleHash || len(loaded.Frames) != 3 || loaded.Frames[2].Value != "Café" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestSavePDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sheet.pdf")
	if err := SavePDF(NewTagSheet(sampleInfo(t), sampleHash, 1234), out); err != nil {
		t.Fatalf("SavePDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:8])
	}
}

func TestQRPayload(t *testing.T) {
	sheet := NewTagSheet(sampleInfo(t), strings.ToUpper(sampleHash), 1234)
	got, err := QRPayload(sheet)
	if err != nil {
		t.Fatalf("QRPayload: %v", err)
	}
	want := "mp3tag\nfile=track.mp3\nsize=1234\nsha256=" + sampleHash
	if got != want {
		t.Fatalf("QRPayload = %q, want %q", got, want)
	}
}

func TestSheetQR(t *testing.T) {
	sheet := NewTagSheet(sampleInfo(t), sampleHash, 1234)
	png, err := SheetQR(sheet, 0)
	if err != nil {
		t.Fatalf("SheetQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
	for _, bad := range []string{"", "zz", sampleHash[:40]} {
		sheet.Sha256 = bad
		if _, err := SheetQR(sheet, 64); !errors.Is(err, ErrBadHash) {
			t.Fatalf("SheetQR(%q) error = %v, want ErrBadHash", bad, err)
		}
	}
}
