package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"example.com/mp3tag/internal/common"
	"example.com/mp3tag/internal/config"
	"example.com/mp3tag/internal/id3"
	"example.com/mp3tag/internal/report"
	"example.com/mp3tag/internal/verify"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const rule = "----------------------------------------------"

// ArgumentError is a malformed command line; the short usage follows it.
type ArgumentError struct {
	Msg string
	Err error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

func argError(format string, args ...interface{}) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Error: Invalid arguments.")
		usage(stderr)
		return 1
	}
	var err error
	switch args[0] {
	case "-v":
		err = viewCmd(args[1:], stdout)
	case "-e":
		err = editCmd(args[1:], stdout, stderr)
	case "-u":
		err = undoCmd(args[1:], stdout)
	case "--help", "-h":
		help(stdout)
		return 0
	default:
		err = argError("Invalid arguments.")
	}
	if err == nil {
		return 0
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		fmt.Fprintf(stderr, "Error: %v\n", argErr)
		if errors.Is(err, id3.ErrUnsupportedOption) {
			optionTable(stderr)
		}
		usage(stderr)
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `USAGE :
  To view : mp3tag -v <file.mp3> [--json <out.json>] [--pdf <out.pdf>]
  To edit : mp3tag -e -t/-a/-A/-y/-m/-c "value" <file.mp3> [--verify] [--metrics]
  To undo : mp3tag -u <file.mp3> [--audit <log.jsonl>]
  Common  : [--config <config.yaml>] [--verbose]
  Options may come before or after <file.mp3>.
`)
}

func help(w io.Writer) {
	fmt.Fprintf(w, "mp3tag %s (built %s) --help\n", version, buildDate)
	usage(w)
	fmt.Fprintln(w)
	optionTable(w)
}

func optionTable(w io.Writer) {
	fmt.Fprintln(w, "Options:")
	for _, t := range id3.Targets() {
		fmt.Fprintf(w, "%15s  Modifies %s tag (%s)\n", t.Option(), t.Label, t.ID)
	}
}

type commonFlags struct {
	config  string
	verbose bool
}

func newFlagSet(name string, c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.config, "config", "", "YAML configuration file")
	fs.BoolVar(&c.verbose, "verbose", false, "write diagnostic log lines to stderr")
	return fs
}

// parseArgs parses flags placed before, between or after the positional
// arguments and returns the positionals in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, &ArgumentError{Msg: "bad option", Err: err}
		}
		if fs.NArg() == 0 {
			return pos, nil
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// setup loads the configuration and installs logging for one invocation.
func setup(c commonFlags) (config.Config, func(), error) {
	cfg, err := config.Load(c.config)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	closer, err := common.SetupLogging(common.LogOptions{
		Verbose:    c.verbose,
		Directory:  cfg.Logs.Directory,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	})
	if err != nil {
		return cfg, nil, fmt.Errorf("setup logging: %w", err)
	}
	return cfg, func() { closer.Close() }, nil
}

func checkMP3(path string) error {
	if !common.HasExt(path, ".mp3") {
		return argError("Audio file should be in .mp3 format: %s", path)
	}
	return nil
}

func viewCmd(args []string, stdout io.Writer) error {
	var c commonFlags
	fs := newFlagSet("view", &c)
	jsonOut := fs.String("json", "", "write the tag listing as JSON")
	pdfOut := fs.String("pdf", "", "render the tag listing as PDF")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return argError("Invalid view command format.")
	}
	path := pos[0]
	if err := checkMP3(path); err != nil {
		return err
	}
	_, done, err := setup(c)
	if err != nil {
		return err
	}
	defer done()

	info, err := id3.ReadFile(path)
	if err != nil {
		return err
	}
	printListing(stdout, info)

	if *jsonOut == "" && *pdfOut == "" {
		return nil
	}
	sha, size, err := common.Sha256OfFile(path)
	if err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	sheet := report.NewTagSheet(info, sha, size)
	if *jsonOut != "" {
		if err := report.SaveJSON(sheet, *jsonOut); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		fmt.Fprintln(stdout, "Wrote JSON:", *jsonOut)
	}
	if *pdfOut != "" {
		if err := report.SavePDF(sheet, *pdfOut); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		fmt.Fprintln(stdout, "Wrote PDF:", *pdfOut)
	}
	return nil
}

func printListing(w io.Writer, info *id3.TagInfo) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Mp3 Tag Reader and Editor for ID3v2")
	fmt.Fprintln(w, rule)
	for _, f := range info.Frames {
		label := f.Label()
		if label == "" {
			continue
		}
		fmt.Fprintf(w, "%-9s: %s\n", label, f.Text())
	}
	fmt.Fprintln(w, rule)
}

func editCmd(args []string, stdout, stderr io.Writer) error {
	if len(args) < 3 {
		return argError("Invalid edit command format.")
	}
	opt, value := args[0], args[1]
	var c commonFlags
	fs := newFlagSet("edit", &c)
	verifyFlag := fs.Bool("verify", false, "re-read the rewritten file with an independent tag reader")
	metricsFlag := fs.Bool("metrics", false, "print rewrite metrics")
	pos, err := parseArgs(fs, args[2:])
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return argError("Invalid edit command format.")
	}
	path := pos[0]
	if err := checkMP3(path); err != nil {
		return err
	}
	target, err := id3.ResolveOption(opt)
	if err != nil {
		return &ArgumentError{Msg: "Invalid edit command format", Err: err}
	}
	cfg, done, err := setup(c)
	if err != nil {
		return err
	}
	defer done()

	auditPath := cfg.AuditPath(path)
	var beforeHash string
	if auditPath != "" {
		if beforeHash, _, err = common.Sha256OfFile(path); err != nil {
			return err
		}
	}
	var metrics *common.Metrics
	if *metricsFlag {
		metrics = common.NewMetrics()
	}

	res, err := id3.EditFile(id3.NewEditRequest(path, target, value), metrics)
	if err != nil {
		return err
	}
	if !res.Found {
		fmt.Fprintf(stdout, "Warning: frame '%s' not found. No changes made.\n", target.ID)
		return nil
	}

	fmt.Fprintln(stdout, rule)
	fmt.Fprintf(stdout, "%-8s: %s\n", target.Label, value)
	fmt.Fprintf(stdout, "%s changed successfully\n", target.Label)
	fmt.Fprintln(stdout, rule)

	if auditPath != "" {
		audit := common.NewAuditLog(auditPath)
		if err := appendAudit(audit, res, beforeHash); err != nil {
			fmt.Fprintf(stderr, "Warning: audit log %s: %v\n", audit.Path(), err)
		} else {
			common.Logf("audit entry appended to %s", audit.Path())
		}
	}
	if *verifyFlag || cfg.Verify {
		if got, err := verify.File(path); err != nil {
			fmt.Fprintf(stderr, "Warning: verification read failed: %v\n", err)
		} else {
			common.Logf("verified %s: %s", path, got)
		}
	}
	if metrics != nil {
		fmt.Fprintf(stdout, "Metrics: %s\n", metrics.Snapshot())
	}
	return nil
}

func appendAudit(audit *common.AuditLog, res id3.EditResult, beforeHash string) error {
	abs, err := filepath.Abs(res.Path)
	if err != nil {
		return err
	}
	afterHash, _, err := common.Sha256OfFile(res.Path)
	if err != nil {
		return err
	}
	return audit.Append(common.AuditEntry{
		Path:         abs,
		FrameID:      res.Target.ID.String(),
		Offset:       res.Before.Offset,
		BeforeHex:    fmt.Sprintf("%x", res.Before.Payload),
		AfterHex:     fmt.Sprintf("%x", res.After.Payload),
		BeforeSha256: beforeHash,
		AfterSha256:  afterHash,
	})
}

func undoCmd(args []string, stdout io.Writer) error {
	var c commonFlags
	fs := newFlagSet("undo", &c)
	auditFlag := fs.String("audit", "", "audit log (jsonl)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return argError("Invalid undo command format.")
	}
	path := pos[0]
	if err := checkMP3(path); err != nil {
		return err
	}
	cfg, done, err := setup(c)
	if err != nil {
		return err
	}
	defer done()

	auditPath := strings.TrimSpace(*auditFlag)
	if auditPath == "" {
		auditPath = cfg.AuditPath(path)
	}
	if auditPath == "" {
		return argError("audit log disabled in config; pass --audit")
	}
	entries, err := common.ReadAuditLog(auditPath)
	if err != nil {
		return fmt.Errorf("read audit: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	var mine []common.AuditEntry
	for _, e := range entries {
		if filepath.Clean(e.Path) == abs {
			mine = append(mine, e)
		}
	}
	if len(mine) == 0 {
		return fmt.Errorf("no audit entries for %s in %s", path, auditPath)
	}

	startHash, _, err := common.Sha256OfFile(path)
	if err != nil {
		return fmt.Errorf("hash input: %w", err)
	}
	if first := mine[0]; first.BeforeSha256 != "" && first.BeforeSha256 == startHash {
		fmt.Fprintf(stdout, "Already restored: %s matches its state before the first of %d edit(s)\n", path, len(mine))
		fmt.Fprintf(stdout, "SHA256: %s\n", startHash)
		return nil
	}

	current := startHash
	applied, restored, mismatches := 0, 0, 0
	for i := len(mine) - 1; i >= 0; i-- {
		entry := mine[i]
		id, ok := id3.ParseFrameID(entry.FrameID)
		if !ok {
			fmt.Fprintf(stdout, "skip entry %d: invalid frame id %q\n", i, entry.FrameID)
			continue
		}
		before, err := entry.BeforeBytes()
		if err != nil {
			fmt.Fprintf(stdout, "skip entry %d: decode beforeHex failed: %v\n", i, err)
			continue
		}
		after, err := entry.AfterBytes()
		if err != nil {
			fmt.Fprintf(stdout, "skip entry %d: decode afterHex failed: %v\n", i, err)
			continue
		}
		frame, found, err := id3.FindFrame(path, id)
		if err != nil {
			return fmt.Errorf("scan %s: %w", path, err)
		}
		if !found {
			fmt.Fprintf(stdout, "skip entry %d: frame %s not found\n", i, entry.FrameID)
			continue
		}
		switch {
		case bytes.Equal(frame.Payload, before) && !bytes.Equal(frame.Payload, after):
			restored++
			continue
		case !bytes.Equal(frame.Payload, after):
			mismatches++
		}
		target := id3.Target{ID: id, Label: id3.LabelOf(id)}
		if _, err := id3.EditFile(id3.EditRequest{Path: path, Target: target, Value: id3.Raw(before)}, nil); err != nil {
			return fmt.Errorf("restore %s: %w", entry.FrameID, err)
		}
		applied++
		if current, _, err = common.Sha256OfFile(path); err != nil {
			return fmt.Errorf("hash restored: %w", err)
		}
	}

	fmt.Fprintf(stdout, "Restored %d edit(s) to %s\n", applied, path)
	if restored > 0 {
		fmt.Fprintf(stdout, "Already restored: %d edit(s)\n", restored)
	}
	fmt.Fprintf(stdout, "Edited SHA256: %s\n", startHash)
	fmt.Fprintf(stdout, "Restored SHA256: %s\n", current)
	if mismatches > 0 {
		fmt.Fprintf(stdout, "Warning: %d frame(s) no longer held the value the edit wrote; original values restored regardless.\n", mismatches)
	}
	return nil
}
