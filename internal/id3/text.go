package id3

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	encISO88591 = 0
	encUTF16BOM = 1
	encUTF16BE  = 2
	encUTF8     = 3
)

func decoderFor(enc byte) *encoding.Decoder {
	switch enc {
	case encISO88591:
		return charmap.ISO8859_1.NewDecoder()
	case encUTF16BOM:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case encUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	}
	return nil
}

var ErrUnencodable = errors.New("value cannot be stored in the frame's text encoding")

func encoderFor(enc byte) *encoding.Encoder {
	switch enc {
	case encISO88591:
		return charmap.ISO8859_1.NewEncoder()
	case encUTF16BOM:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	case encUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	}
	return nil
}

func encodingName(enc byte) string {
	switch enc {
	case encISO88591:
		return "ISO-8859-1"
	case encUTF16BOM:
		return "UTF-16"
	case encUTF16BE:
		return "UTF-16BE"
	case encUTF8:
		return "UTF-8"
	}
	return fmt.Sprintf("encoding %d", enc)
}

// Value is the replacement stored in a matched frame. Encode receives the
// frame's encoding byte and returns the payload bytes to write.
type Value interface {
	Encode(enc byte) ([]byte, error)
}

// Text is a value given as a UTF-8 string. It is converted to the text
// encoding of the frame it replaces, so viewing the frame yields the string.
type Text string

func (t Text) Encode(enc byte) ([]byte, error) {
	e := encoderFor(enc)
	if e == nil {
		return []byte(t), nil
	}
	out, err := e.Bytes([]byte(t))
	if err != nil {
		return nil, fmt.Errorf("%w: %q as %s", ErrUnencodable, string(t), encodingName(enc))
	}
	return out, nil
}

// Raw is a payload written byte for byte, whatever the frame's encoding.
type Raw []byte

func (r Raw) Encode(byte) ([]byte, error) {
	return []byte(r), nil
}

// Text returns the payload decoded for display according to the frame's
// encoding byte. The value ends at the first NUL terminator. Payloads that
// do not decode are returned as raw bytes.
func (f Frame) Text() string {
	raw := f.Payload
	dec := decoderFor(f.Encoding())
	if f.Encoding() == encUTF16BOM || f.Encoding() == encUTF16BE {
		raw = trimUTF16(raw)
	} else if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if dec == nil {
		return string(raw)
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// trimUTF16 cuts a UTF-16 payload at its first 16-bit NUL.
func trimUTF16(b []byte) []byte {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i]
		}
	}
	return b
}
