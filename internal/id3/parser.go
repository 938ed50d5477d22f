package id3

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"example.com/mp3tag/internal/common"
)

const (
	headerSize      = 10
	frameHeaderSize = 11

	// MaxViewFrameSize is the largest declared size the view path accepts.
	MaxViewFrameSize = 1000
	// MaxViewFrames bounds the number of frames collected for display.
	MaxViewFrames = 10
)

var magic = [3]byte{'I', 'D', '3'}

var (
	ErrMissingSignature = errors.New("ID3 signature not found")
	ErrValueTooLong     = errors.New("replacement value too long for a frame")
)

// ScanOptions bounds a scan. Zero values disable the corresponding check.
type ScanOptions struct {
	MaxFrameSize int32
	MaxFrames    int
}

// ViewOptions are the bounds used when listing frames.
var ViewOptions = ScanOptions{MaxFrameSize: MaxViewFrameSize, MaxFrames: MaxViewFrames}

// DecodeSize interprets four bytes as a big-endian signed 32-bit integer.
func DecodeSize(b [4]byte) int32 {
	return int32(binary.BigEndian.Uint32(b[:]))
}

// EncodeSize is the inverse of DecodeSize.
func EncodeSize(size int32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(size))
	return out
}

// Scanner reads a tag header and then frame records one at a time.
type Scanner struct {
	r      *bufio.Reader
	opts   ScanOptions
	offset int64
	count  int
	stop   StopReason

	// bytes consumed by the record that ended the scan
	pending []byte
}

// NewScanner wraps r in a buffered reader. Call ReadHeader before Next.
func NewScanner(r io.Reader, opts ScanOptions) *Scanner {
	return &Scanner{r: bufio.NewReader(r), opts: opts}
}

// ReadHeader consumes the 10-byte tag header. A file shorter than the header
// yields io.ErrUnexpectedEOF and ends the scan; the partial bytes remain
// available through Remainder.
func (s *Scanner) ReadHeader() (TagHeader, error) {
	var h TagHeader
	n, err := io.ReadFull(s.r, h.Raw[:])
	s.offset += int64(n)
	if err != nil {
		s.pending = append(s.pending[:0], h.Raw[:n]...)
		s.stop = StopShortRead
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, io.ErrUnexpectedEOF
		}
		return h, fmt.Errorf("read tag header: %w", err)
	}
	return h, nil
}

// Next returns the next frame. It returns io.EOF once the scan has ended;
// Stop reports why. Any other error is an I/O failure of the source.
func (s *Scanner) Next() (Frame, error) {
	if s.stop != StopNone {
		return Frame{}, io.EOF
	}
	if s.opts.MaxFrames > 0 && s.count >= s.opts.MaxFrames {
		return s.halt(StopFrameLimit, nil)
	}
	start := s.offset
	s.pending = s.pending[:0]

	var hdr [frameHeaderSize]byte
	n, err := io.ReadFull(s.r, hdr[:4])
	s.consume(hdr[:n])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return s.halt(StopEndOfData, nil)
		}
		return s.halt(StopShortRead, err)
	}
	if hdr[0] == 0 {
		return s.halt(StopPadding, nil)
	}
	n, err = io.ReadFull(s.r, hdr[4:])
	s.consume(hdr[4 : 4+n])
	if err != nil {
		return s.halt(StopShortRead, err)
	}

	var f Frame
	copy(f.ID[:], hdr[0:4])
	f.Size = DecodeSize([4]byte(hdr[4:8]))
	copy(f.Flags[:], hdr[8:11])
	f.Offset = start
	if f.Size <= 0 {
		return s.halt(StopBadSize, nil)
	}
	if s.opts.MaxFrameSize > 0 && f.Size > s.opts.MaxFrameSize {
		return s.halt(StopSizeCap, nil)
	}

	// The buffer grows with the bytes actually present, so a bogus size on
	// a short file never turns into one huge allocation.
	var body bytes.Buffer
	got, err := io.CopyN(&body, s.r, int64(f.Size)-1)
	s.offset += got
	if err != nil {
		s.pending = append(s.pending, body.Bytes()...)
		return s.halt(StopShortRead, err)
	}
	f.Payload = body.Bytes()
	s.pending = s.pending[:0]
	s.count++
	return f, nil
}

func (s *Scanner) consume(b []byte) {
	s.offset += int64(len(b))
	s.pending = append(s.pending, b...)
}

func (s *Scanner) halt(reason StopReason, err error) (Frame, error) {
	s.stop = reason
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Frame{}, fmt.Errorf("read frame at offset %d: %w", s.offset, err)
	}
	return Frame{}, io.EOF
}

// Stop returns the reason the scan ended, or StopNone while it is running.
func (s *Scanner) Stop() StopReason {
	return s.stop
}

// Offset returns the number of bytes consumed from the source.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Remainder returns everything from the first byte of the record that ended
// the scan through the end of the source.
func (s *Scanner) Remainder() io.Reader {
	return io.MultiReader(bytes.NewReader(s.pending), s.r)
}

// Scan reads the tag header and up to MaxViewFrames frames from r.
func Scan(r io.Reader) (*TagInfo, error) {
	sc := NewScanner(r, ViewOptions)
	hdr, err := sc.ReadHeader()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	if !hdr.HasSignature() {
		return nil, ErrMissingSignature
	}
	info := &TagInfo{Header: hdr}
	for {
		f, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		info.Frames = append(info.Frames, f)
	}
	info.Stop = sc.Stop()
	return info, nil
}

// ReadFile scans the tag of the file at path.
func ReadFile(path string) (*TagInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := Scan(f)
	if err != nil {
		return nil, err
	}
	info.Path = path
	common.Logf("%s: %d frame(s), scan stopped: %s", path, len(info.Frames), info.Stop)
	return info, nil
}

// FindFrame returns the first frame with the given identifier in the file
// at path. The whole tag is scanned with no size or count bounds, as an
// edit would scan it.
func FindFrame(path string, id FrameID) (Frame, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Frame{}, false, err
	}
	defer f.Close()
	sc := NewScanner(f, ScanOptions{})
	if _, err := sc.ReadHeader(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Frame{}, false, err
	}
	for {
		fr, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Frame{}, false, err
		}
		if fr.ID == id {
			return fr, true, nil
		}
	}
	common.Logf("%s: no %s frame in the first %d byte(s), stop: %s", path, id, sc.Offset(), sc.Stop())
	return Frame{}, false, nil
}
