// Copyright (c) 2025 The FileSplitter developers

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/VetheonGames/FileSplitter/pkg/chunking"
	"github.com/VetheonGames/FileSplitter/pkg/config"
	"github.com/VetheonGames/FileSplitter/pkg/logging"
	"github.com/VetheonGames/FileSplitter/pkg/prompt"
	"github.com/VetheonGames/FileSplitter/pkg/summary"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
)

// Process exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitMissingFile = 2
	exitConsistency = 3
	exitFailure     = 10
)

// errCancelled is returned when the user declines to start an operation.
var errCancelled = errors.New("operation cancelled")

var fsplLog = logging.Logger("FSPL")

// filesplitterMain runs the operation selected by cfg. Questions go through
// confirm and results are printed to out.
func filesplitterMain(cfg *config.Config, confirm chunking.Confirmer, out io.Writer) error {
	start := time.Now()

	var err error
	switch {
	case cfg.Info:
		err = showInfo(cfg, out)
	case cfg.Merge:
		err = mergeMode(cfg, confirm, out)
	default:
		err = splitMode(cfg, confirm, out)
	}
	if err != nil {
		return err
	}

	if !cfg.Info {
		fmt.Fprintln(out, "Done!")
		fmt.Fprintf(out, "Operation took %v.\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func splitMode(cfg *config.Config, confirm chunking.Confirmer, out io.Writer) error {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return err
	}
	totalSize := uint64(info.Size())
	chunkCount, err := chunking.ChunkCount(totalSize, cfg.ChunkSize)
	if err != nil {
		return err
	}

	question := fmt.Sprintf("Recognized input path as %s, output path as %s, chunk size as %d bytes (%s), "+
		"making %d total chunks. Continue?", cfg.Path, cfg.Export, cfg.ChunkSize,
		humanize.IBytes(cfg.ChunkSize), chunkCount)
	if !confirm.Confirm(question) {
		return errCancelled
	}

	// Refuse before writing any chunk when the summary would collide.
	sumPath := filepath.Join(cfg.Export, summary.FileName(filepath.Base(cfg.Path)))
	if _, err := os.Lstat(sumPath); err == nil {
		return chunking.Error{
			ErrorCode:   chunking.ErrAlreadyExists,
			Description: "summary file already exists",
			Path:        sumPath,
		}
	}

	fmt.Fprintln(out, "Beginning operation...")
	record, err := chunking.SplitFile(cfg.Path, cfg.Export, cfg.ChunkSize)
	if err != nil {
		return err
	}
	if err := summary.Store(record, sumPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %d chunks of %s and summary %s\n", record.ChunkCount,
		record.Filename, sumPath)
	fmt.Fprintf(out, "SHA-256: %s\n", record.WholeFileChecksumHex())
	return nil
}

func mergeMode(cfg *config.Config, confirm chunking.Confirmer, out io.Writer) error {
	record, err := summary.Load(cfg.Path)
	if err != nil {
		return err
	}

	question := fmt.Sprintf("Recognized input path as %s, output path as %s. Continue?",
		cfg.Path, cfg.Export)
	if !confirm.Confirm(question) {
		return errCancelled
	}

	fmt.Fprintln(out, "Beginning operation...")
	printRecord(record, out, false)

	chunkDir := filepath.Dir(cfg.Path)
	report, err := chunking.VerifyAndReassemble(record, chunkDir, cfg.Export, confirm)
	if report != nil {
		printReport(report, out)
	}
	if err != nil {
		return err
	}

	if !report.WholeFileMatch {
		fmt.Fprintf(out, "WARNING! Final file checksum does not match! Expected %s but got %s!\n",
			record.WholeFileChecksumHex(), report.WholeFileChecksumHex())
	}
	return nil
}

func showInfo(cfg *config.Config, out io.Writer) error {
	record, err := summary.Load(cfg.Path)
	if err != nil {
		return err
	}
	printRecord(record, out, true)

	if err := record.CheckForErrors(filepath.Dir(cfg.Path)); err != nil {
		fmt.Fprintf(out, "Check: FAILED (%v)\n", err)
		return err
	}
	fmt.Fprintln(out, "Check: OK")
	return nil
}

func printRecord(r *summary.Record, out io.Writer, chunks bool) {
	fmt.Fprintf(out, "Output file will be %s\n", r.Filename)
	fmt.Fprintf(out, "Reported total file size is: %d (%s)\n", r.TotalSize, humanize.IBytes(r.TotalSize))
	fmt.Fprintf(out, "Reported chunk size is: %d (%s)\n", r.ChunkSize, humanize.IBytes(r.ChunkSize))
	fmt.Fprintf(out, "Thus there should be %d chunks, %d listed.\n",
		summary.ExpectedChunkCount(r.TotalSize, r.ChunkSize), r.ChunkCount)
	if !chunks {
		return
	}
	fmt.Fprintf(out, "Run: %s (format version %d)\n", r.ID, r.Version)
	for index := uint32(1); index <= r.ChunkCount; index++ {
		fmt.Fprintf(out, "  %s  %s\n", r.ChecksumHex(index), r.PartName(index))
	}
	fmt.Fprintf(out, "  %s  %s\n", r.WholeFileChecksumHex(), r.Filename)
}

func printReport(r *chunking.MergeReport, out io.Writer) {
	fmt.Fprintf(out, "Merged %d chunks, %s written to %s\n", r.ChunksMerged,
		humanize.IBytes(r.BytesWritten), r.OutputPath)
	for _, m := range r.Mismatches {
		verdict := "declined"
		if m.Accepted {
			verdict = "accepted"
		}
		fmt.Fprintf(out, "  chunk #%d: %s, expected %s, got %s (%s)\n", m.Index, m.Kind,
			m.Expected, m.Actual, verdict)
	}
}

// exitCode maps the result of a run to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errCancelled), chunking.IsErrorCode(err, chunking.ErrAborted):
		return exitOK
	case chunking.IsErrorCode(err, chunking.ErrInvalidConfiguration):
		return exitUsage
	case summary.IsConsistencyError(err),
		summary.IsErrorCode(err, summary.ErrDecode),
		summary.IsErrorCode(err, summary.ErrUnsupportedVersion):
		return exitConsistency
	case errors.Is(err, fs.ErrNotExist):
		return exitMissingFile
	}
	return exitFailure
}

func realMain(args []string) int {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return exitOK
		}
		var flagErr *flags.Error
		if !errors.As(err, &flagErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitUsage
	}

	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, version())
		return exitOK
	}

	if logFile := cfg.LogFile(); logFile != "" {
		if err := logging.InitLogRotator(logFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		defer logging.Close()
	}
	fsplLog.Debugf("%s version %s", appName, version())

	console := prompt.Stdio(cfg.Yes)
	if !cfg.Yes && !console.Interactive() {
		fsplLog.Warnf("Standard input is not a terminal, answers are read from it")
	}

	err = filesplitterMain(cfg, console, os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errCancelled), chunking.IsErrorCode(err, chunking.ErrAborted):
		fmt.Println("Cancelling execution...")
	case errors.Is(err, fs.ErrNotExist) && !summary.IsConsistencyError(err):
		fmt.Fprintf(os.Stderr, "Unable to find file: %v\n", err)
	default:
		fsplLog.Errorf("Unable to complete execution: %v", err)
	}
	return exitCode(err)
}

func main() {
	// Use a more aggressive GC target unless overridden.
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(10)
	}

	os.Exit(realMain(os.Args[1:]))
}
