package common

import (
	"fmt"
	"time"
)

// Metrics accounts for one rewrite pass: the tag header, the frames copied
// or replaced, and the trailing bytes taken over unchanged.
type Metrics struct {
	start, end time.Time

	header   int64
	frames   int64
	copied   int64
	replaced int64
	tail     int64
	total    int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Start marks the beginning of the pass. Later calls keep the first time.
func (m *Metrics) Start() {
	if m.start.IsZero() {
		m.start = time.Now()
	}
}

func (m *Metrics) Stop() {
	if !m.start.IsZero() && m.end.IsZero() {
		m.end = time.Now()
	}
}

func (m *Metrics) AddHeader(n int64) { m.header += n }

// AddFrame records one written frame of n bytes.
func (m *Metrics) AddFrame(n int64, replaced bool) {
	m.frames += n
	if replaced {
		m.replaced++
	} else {
		m.copied++
	}
}

func (m *Metrics) AddTail(n int64) { m.tail += n }

// SetTotalBytes records the size of the source file.
func (m *Metrics) SetTotalBytes(n int64) { m.total = n }

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		HeaderBytes: m.header,
		FrameBytes:  m.frames,
		TailBytes:   m.tail,
		SourceBytes: m.total,
		Copied:      m.copied,
		Replaced:    m.replaced,
	}
	switch {
	case m.start.IsZero():
	case m.end.IsZero():
		s.Duration = time.Since(m.start)
	default:
		s.Duration = m.end.Sub(m.start)
	}
	return s
}

type MetricsSnapshot struct {
	Duration    time.Duration
	HeaderBytes int64
	FrameBytes  int64
	TailBytes   int64
	SourceBytes int64
	Copied      int64
	Replaced    int64
}

func (s MetricsSnapshot) Frames() int64 { return s.Copied + s.Replaced }

// Bytes is the size of the rewritten stream.
func (s MetricsSnapshot) Bytes() int64 { return s.HeaderBytes + s.FrameBytes + s.TailBytes }

// ThroughputBytesPerSecond is zero until the pass has a measurable duration.
func (s MetricsSnapshot) ThroughputBytesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Bytes()) / s.Duration.Seconds()
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("frames=%d (replaced %d, copied %d) tag=%s tail=%s written=%s of %s in %s (%s/s)",
		s.Frames(), s.Replaced, s.Copied,
		FormatBytes(s.HeaderBytes+s.FrameBytes), FormatBytes(s.TailBytes),
		FormatBytes(s.Bytes()), FormatBytes(s.SourceBytes),
		s.Duration.Round(time.Microsecond), FormatBytes(int64(s.ThroughputBytesPerSecond())))
}

// FormatBytes renders n with a binary unit, e.g. "2.00 KiB".
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	for _, unit := range []string{"KiB", "MiB", "GiB", "TiB"} {
		v /= 1024
		if v < 1024 || unit == "TiB" {
			return fmt.Sprintf("%.2f %s", v, unit)
		}
	}
	return ""
}
