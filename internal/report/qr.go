package report

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrBadHash = errors.New("sheet has no valid SHA-256")

// QRPayload is the text a tag sheet's QR code carries: the file name, its
// size and its SHA-256, one "key=value" per line.
func QRPayload(sheet TagSheet) (string, error) {
	sum := strings.ToLower(strings.TrimSpace(sheet.Sha256))
	if b, err := hex.DecodeString(sum); err != nil || len(b) != 32 {
		return "", fmt.Errorf("%w: %q", ErrBadHash, sheet.Sha256)
	}
	return fmt.Sprintf("mp3tag\nfile=%s\nsize=%d\nsha256=%s", filepath.Base(sheet.Path), sheet.FileSize, sum), nil
}

// SheetQR renders the sheet's QR payload as a PNG of size pixels.
func SheetQR(sheet TagSheet, size int) ([]byte, error) {
	payload, err := QRPayload(sheet)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
