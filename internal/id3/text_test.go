package id3

import "testing"

func TestFrameText(t *testing.T) {
	tests := []struct {
		name    string
		enc     byte
		payload []byte
		want    string
	}{
		{name: "latin1", enc: encISO88591, payload: []byte("Caf\xe9"), want: "Café"},
		{name: "latin1 stops at nul", enc: encISO88591, payload: []byte("Old\x00\x00"), want: "Old"},
		{name: "utf16 bom le", enc: encUTF16BOM, payload: []byte{0xFF, 0xFE, 'H', 0, 'i', 0, 0, 0}, want: "Hi"},
		{name: "utf16 bom be", enc: encUTF16BOM, payload: []byte{0xFE, 0xFF, 0, 'H', 0, 'i'}, want: "Hi"},
		{name: "utf16be", enc: encUTF16BE, payload: []byte{0, 'O', 0, 'K'}, want: "OK"},
		{name: "utf8", enc: encUTF8, payload: []byte("日本\x00junk"), want: "日本"},
		{name: "unknown encoding is raw", enc: 0x7F, payload: []byte("raw"), want: "raw"},
		{name: "empty", enc: encISO88591, payload: nil, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Frame{Flags: [3]byte{0, 0, tc.enc}, Payload: tc.payload}
			if got := f.Text(); got != tc.want {
				t.Fatalf("Text() = %q, want %q", got, tc.want)
			}
		})
	}
}
