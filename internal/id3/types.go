package id3

import "bytes"

// TagHeader is the raw 10-byte prefix of an ID3v2 tag.
type TagHeader struct {
	Raw [headerSize]byte
}

// HasSignature reports whether the header starts with "ID3".
func (h TagHeader) HasSignature() bool {
	return bytes.Equal(h.Raw[:3], magic[:])
}

// Version returns the major version byte (3 for ID3v2.3).
func (h TagHeader) Version() uint8 {
	return h.Raw[3]
}

// FrameID is the raw four byte frame identifier.
type FrameID [4]byte

// ParseFrameID converts a four character identifier such as "TIT2".
func ParseFrameID(s string) (FrameID, bool) {
	var id FrameID
	if len(s) != len(id) {
		return id, false
	}
	copy(id[:], s)
	return id, true
}

// String returns the identifier up to the first NUL byte.
func (id FrameID) String() string {
	if i := bytes.IndexByte(id[:], 0); i >= 0 {
		return string(id[:i])
	}
	return string(id[:])
}

// Frame is one record of the tag as read from disk.
type Frame struct {
	ID FrameID
	// Size is the declared size as stored on disk. The payload that follows
	// the flags holds Size-1 bytes; the missing byte is the encoding byte
	// carried in Flags[2].
	Size    int32
	Flags   [3]byte
	Payload []byte
	Offset  int64
}

// Encoding returns the text encoding byte of the frame.
func (f Frame) Encoding() byte {
	return f.Flags[2]
}

// Label returns the display name of the frame, or "" if it is not known.
func (f Frame) Label() string {
	return labels[f.ID]
}

// Len returns the number of bytes the frame occupies on disk.
func (f Frame) Len() int64 {
	return frameHeaderSize + int64(len(f.Payload))
}

// AppendTo appends the on-disk form of the frame to buf.
func (f Frame) AppendTo(buf []byte) []byte {
	buf = append(buf, f.ID[:]...)
	buf = append(buf, EncodeSize(f.Size)...)
	buf = append(buf, f.Flags[:]...)
	return append(buf, f.Payload...)
}

// TagInfo is the view-side result of scanning one file.
type TagInfo struct {
	Path   string
	Header TagHeader
	Frames []Frame
	Stop   StopReason
}

// Lookup returns the first frame with the given identifier.
func (t *TagInfo) Lookup(id FrameID) (Frame, bool) {
	if t == nil {
		return Frame{}, false
	}
	for _, f := range t.Frames {
		if f.ID == id {
			return f, true
		}
	}
	return Frame{}, false
}

// StopReason records why a scan ended.
type StopReason string

const (
	StopNone       StopReason = ""
	StopEndOfData  StopReason = "end-of-data"
	StopPadding    StopReason = "padding"
	StopBadSize    StopReason = "invalid-size"
	StopSizeCap    StopReason = "size-cap"
	StopFrameLimit StopReason = "frame-limit"
	StopShortRead  StopReason = "short-read"
)
