package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type AuditConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"`
}

type Config struct {
	Logs   LogConfig   `yaml:"logs"`
	Audit  AuditConfig `yaml:"audit"`
	Verify bool        `yaml:"verify"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults("")
	return cfg
}

// Load decodes the YAML file at path. An empty path yields Default().
// Relative directories in the file are resolved against its directory.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) applyDefaults(baseDir string) {
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) || baseDir == "" {
			return p
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	c.Logs.Directory = resolve(c.Logs.Directory)
	c.Audit.Path = resolve(c.Audit.Path)
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = 5
	}
	if c.Logs.MaxAgeDays <= 0 {
		c.Logs.MaxAgeDays = 30
	}
	if c.Logs.MaxBackups <= 0 {
		c.Logs.MaxBackups = 3
	}
}

// AuditPath returns the audit log used for edits of target, or "" when
// auditing is disabled.
func (c Config) AuditPath(target string) string {
	if c.Audit.Disabled {
		return ""
	}
	if c.Audit.Path != "" {
		return c.Audit.Path
	}
	return target + ".audit.jsonl"
}
