package common

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// AuditEntry captures one frame substitution made to a file.
type AuditEntry struct {
	Path         string    `json:"path"`
	FrameID      string    `json:"frameId"`
	Offset       int64     `json:"offset"`
	BeforeHex    string    `json:"beforeHex"`
	AfterHex     string    `json:"afterHex"`
	BeforeSha256 string    `json:"beforeSha256,omitempty"`
	AfterSha256  string    `json:"afterSha256,omitempty"`
	Ts           time.Time `json:"ts"`
}

// BeforeBytes decodes the payload the frame held before the edit.
func (e AuditEntry) BeforeBytes() ([]byte, error) {
	if strings.TrimSpace(e.BeforeHex) == "" {
		return []byte{}, nil
	}
	return hex.DecodeString(e.BeforeHex)
}

// AfterBytes decodes the payload written by the edit.
func (e AuditEntry) AfterBytes() ([]byte, error) {
	if strings.TrimSpace(e.AfterHex) == "" {
		return []byte{}, nil
	}
	return hex.DecodeString(e.AfterHex)
}

// AuditLog provides append-only access to a JSONL edit log.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Path returns the backing file path for the log.
func (a *AuditLog) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Append writes entry as one JSON line and syncs the file.
func (a *AuditLog) Append(entry AuditEntry) error {
	if a == nil {
		return errors.New("nil audit log")
	}
	if entry.FrameID == "" {
		return errors.New("audit entry missing frameId")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := EnsureParentDir(a.path); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadAuditLog loads every entry from the supplied JSONL file.
func ReadAuditLog(path string) ([]AuditEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	var entries []AuditEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry AuditEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
