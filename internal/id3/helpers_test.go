package id3

import (
	"bytes"
	"encoding/binary"
)

var textFlags = [3]byte{0x00, 0x00, 0x00}

func tagHeader() []byte {
	return []byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, 0}
}

func rawFrame(id string, size int32, flags [3]byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	binary.Write(&buf, binary.BigEndian, size)
	buf.Write(flags[:])
	buf.Write(payload)
	return buf.Bytes()
}

// textFrame follows the on-disk convention: size counts the payload plus
// the encoding byte.
func textFrame(id, text string) []byte {
	return rawFrame(id, int32(len(text)+1), textFlags, []byte(text))
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// audio is trailing data that starts with padding, so scans stop before it.
var audio = []byte{0, 0, 0, 0, 0, 0, 0xFF, 0xFB, 0x90, 0x64, 0x00, 0x0F, 0xF0}
