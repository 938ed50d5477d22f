package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger = log.New(io.Discard, "[mp3tag] ", log.LstdFlags|log.Lmicroseconds)
)

// LogOptions configures where diagnostic output goes.
type LogOptions struct {
	Verbose    bool
	Directory  string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// SetupLogging routes log output to stderr when verbose and to a rotating
// file when a directory is configured. The returned closer releases the file.
func SetupLogging(opts LogOptions) (io.Closer, error) {
	var writers []io.Writer
	if opts.Verbose {
		writers = append(writers, os.Stderr)
	}
	var rotator *lumberjack.Logger
	if opts.Directory != "" {
		if err := os.MkdirAll(opts.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(opts.Directory, "mp3tag.log"),
			MaxSize:    opts.MaxSizeMB,
			MaxAge:     opts.MaxAgeDays,
			MaxBackups: opts.MaxBackups,
			Compress:   opts.Compress,
		}
		writers = append(writers, rotator)
	}
	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
	if rotator == nil {
		return nopCloser{}, nil
	}
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetLogOutput replaces the log destination.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}
