package id3

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"example.com/mp3tag/internal/common"
)

// EditRequest selects one frame of a file and the value that replaces it.
type EditRequest struct {
	Path   string
	Target Target
	Value  Value
}

// NewEditRequest builds a request that stores text in the frame's encoding.
func NewEditRequest(path string, target Target, text string) EditRequest {
	return EditRequest{Path: path, Target: target, Value: Text(text)}
}

// EditResult describes the outcome of a rewrite. Found is false when no
// frame carried the requested identifier; the file is then left untouched.
type EditResult struct {
	Path   string
	Target Target
	Header TagHeader
	Found  bool
	Before Frame
	After  Frame
	Frames int
	Bytes  int64
	Stop   StopReason
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func checkPayload(payload []byte) error {
	if int64(len(payload)) > math.MaxInt32-1 {
		return ErrValueTooLong
	}
	return nil
}

// Rewrite copies src to dst, replacing the payload of the first frame whose
// identifier equals id with value encoded for that frame. The new declared
// size is the encoded length plus one and the matched frame keeps its flag
// and encoding bytes. Everything from the record that ends the scan onwards
// is copied verbatim. The tag signature is not checked.
func Rewrite(dst io.Writer, src io.Reader, id FrameID, value Value, m *common.Metrics) (EditResult, error) {
	var res EditResult
	if value == nil {
		value = Raw(nil)
	}
	bw := bufio.NewWriter(dst)
	cw := &countingWriter{w: bw}
	sc := NewScanner(src, ScanOptions{})

	hdr, err := sc.ReadHeader()
	switch {
	case err == nil:
		res.Header = hdr
		if !hdr.HasSignature() {
			common.Logf("warning: tag header has no ID3 signature, rewriting anyway")
		}
		if _, err := cw.Write(hdr.Raw[:]); err != nil {
			return res, err
		}
		if m != nil {
			m.AddHeader(headerSize)
		}
	case errors.Is(err, io.ErrUnexpectedEOF):
		// shorter than a header; the remainder copy below writes it back
	default:
		return res, err
	}

	buf := make([]byte, 0, 256)
	for {
		f, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		res.Frames++
		out := f
		replaced := false
		if !res.Found && f.ID == id {
			payload, err := value.Encode(f.Encoding())
			if err != nil {
				return res, fmt.Errorf("frame %s: %w", f.ID, err)
			}
			if err := checkPayload(payload); err != nil {
				return res, err
			}
			replaced = true
			out.Size = int32(len(payload) + 1)
			out.Payload = payload
			res.Found = true
			res.Before = f
			res.After = out
		}
		buf = out.AppendTo(buf[:0])
		if _, err := cw.Write(buf); err != nil {
			return res, err
		}
		if m != nil {
			m.AddFrame(out.Len(), replaced)
		}
	}
	res.Stop = sc.Stop()

	tail, err := io.Copy(cw, sc.Remainder())
	if err != nil {
		return res, fmt.Errorf("copy trailing data: %w", err)
	}
	if m != nil {
		m.AddTail(tail)
	}
	if err := bw.Flush(); err != nil {
		return res, err
	}
	res.Bytes = cw.n
	return res, nil
}

// EditFile applies req to the file in place. The rewritten stream is built
// in a temporary file next to the original and renamed over it only after
// the whole pass succeeded and a frame matched; otherwise the temporary file
// is removed and the original is not modified.
func EditFile(req EditRequest, m *common.Metrics) (EditResult, error) {
	res := EditResult{Path: req.Path, Target: req.Target}
	in, err := os.Open(req.Path)
	if err != nil {
		return res, err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return res, err
	}
	if m != nil {
		m.SetTotalBytes(info.Size())
		m.Start()
		defer m.Stop()
	}

	tmp, err := os.CreateTemp(filepath.Dir(req.Path), "."+filepath.Base(req.Path)+".*.tmp")
	if err != nil {
		return res, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	swapped := false
	defer func() {
		if !swapped {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	out, err := Rewrite(tmp, in, req.Target.ID, req.Value, m)
	out.Path, out.Target = req.Path, req.Target
	if err != nil {
		return out, err
	}
	if !out.Found {
		common.Logf("%s: frame %s not found after %d frame(s), stop: %s", req.Path, req.Target.ID, out.Frames, out.Stop)
		return out, nil
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return out, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return out, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return out, fmt.Errorf("close temp file: %w", err)
	}
	in.Close()
	if err := os.Rename(tmpPath, req.Path); err != nil {
		return out, fmt.Errorf("replace %s: %w", req.Path, err)
	}
	swapped = true
	common.Logf("%s: frame %s at offset %d rewritten (%d -> %d bytes)", req.Path, req.Target.ID, out.Before.Offset, out.Before.Size, out.After.Size)
	return out, nil
}
