// Copyright (c) 2025 The FileSplitter developers

package chunking

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/VetheonGames/FileSplitter/pkg/summary"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Confirmer decides whether a merge continues past a recoverable mismatch.
// Confirm blocks until an answer is available.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// MismatchKind tells which check a chunk failed.
type MismatchKind int

const (
	// SizeMismatch means the chunk file length differs from the length
	// derived from the record.
	SizeMismatch MismatchKind = iota

	// ChecksumMismatch means the chunk content hashes to a different value
	// than the one recorded.
	ChecksumMismatch
)

func (k MismatchKind) String() string {
	switch k {
	case SizeMismatch:
		return "size mismatch"
	case ChecksumMismatch:
		return "checksum mismatch"
	}
	return fmt.Sprintf("unknown mismatch (%d)", int(k))
}

// Mismatch describes one recoverable inconsistency found while merging.
type Mismatch struct {
	Index    uint32
	Kind     MismatchKind
	Path     string
	Expected string
	Actual   string
	Accepted bool
}

// MergeReport summarizes a merge run. It is returned even when the merge is
// aborted, covering the chunks processed so far.
type MergeReport struct {
	OutputPath        string
	ChunksMerged      uint32
	BytesWritten      uint64
	WholeFileChecksum []byte
	WholeFileMatch    bool
	Mismatches        []Mismatch
}

// WholeFileChecksumHex returns the digest of the merged output as hex.
func (r *MergeReport) WholeFileChecksumHex() string {
	return hex.EncodeToString(r.WholeFileChecksum)
}

// MismatchedChunks lists the chunk indices that failed the given check.
func (r *MergeReport) MismatchedChunks(kind MismatchKind) []uint32 {
	var indices []uint32
	for _, m := range r.Mismatches {
		if m.Kind == kind {
			indices = append(indices, m.Index)
		}
	}
	return indices
}

// VerifyAndReassemble runs the record's self-check against chunkDir and only
// then merges. No chunk file is opened for a record that fails the check.
func VerifyAndReassemble(record *summary.Record, chunkDir, outputDir string, confirm Confirmer) (*MergeReport, error) {
	if err := record.CheckForErrors(chunkDir); err != nil {
		return nil, err
	}
	return ReassembleFile(record, chunkDir, outputDir, confirm)
}

// ReassembleFile rebuilds record.Filename inside outputDir from the chunks in
// chunkDir, in ascending index order. The record must already have passed
// CheckForErrors.
//
// A chunk whose size or checksum disagrees with the record is reported to
// confirm; a negative answer stops the merge with ErrAborted and leaves the
// partial output on disk. A nil confirm declines every mismatch. A whole-file
// checksum mismatch is only reported in the returned MergeReport.
func ReassembleFile(record *summary.Record, chunkDir, outputDir string, confirm Confirmer) (*MergeReport, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	outputPath := filepath.Join(outputDir, record.Filename)
	out, err := createExclusive(outputPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	whole := newDigest()
	m := &merger{
		record:   record,
		chunkDir: chunkDir,
		confirm:  confirm,
		dst:      io.MultiWriter(out, whole),
		part:     newDigest(),
		buf:      make([]byte, BufferSize(record.ChunkSize)),
		report:   &MergeReport{OutputPath: outputPath},
	}

	log.Infof("Merging %d chunks of %s into %s (%s) [run %s]", record.ChunkCount,
		record.Filename, outputPath, humanize.IBytes(record.TotalSize), record.ID)

	for index := uint32(1); index <= record.ChunkCount; index++ {
		if err := m.mergeChunk(index); err != nil {
			return m.report, err
		}
	}

	if err := out.Close(); err != nil {
		return m.report, errors.Wrapf(err, "failed to close output file %s", outputPath)
	}

	report := m.report
	report.WholeFileChecksum = whole.Sum(nil)
	report.WholeFileMatch = bytes.Equal(report.WholeFileChecksum, record.WholeFileChecksum)
	if !report.WholeFileMatch {
		log.Warnf("Final merged file checksum mismatch, %s is most likely corrupted! "+
			"Expected [%s], but got [%s]", outputPath, record.WholeFileChecksumHex(),
			report.WholeFileChecksumHex())
	} else {
		log.Infof("Merged %s, sha256 %s", outputPath, report.WholeFileChecksumHex())
	}

	return report, nil
}

type merger struct {
	record   *summary.Record
	chunkDir string
	confirm  Confirmer
	dst      io.Writer
	part     hash.Hash
	buf      []byte
	report   *MergeReport
}

func (m *merger) mergeChunk(index uint32) error {
	path := m.record.PartPath(m.chunkDir, index)
	expected := RecordExpectedSize(m.record, index)

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat chunk %s", path)
	}
	actual := uint64(info.Size())
	if actual != expected {
		err := m.mismatch(Mismatch{
			Index:    index,
			Kind:     SizeMismatch,
			Path:     path,
			Expected: fmt.Sprintf("%d B", expected),
			Actual:   fmt.Sprintf("%d B", actual),
		})
		if err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open chunk %s", path)
	}
	defer f.Close()

	// LimitReader hides os.File's WriterTo so the bounded buffer is used.
	m.part.Reset()
	n, err := io.CopyBuffer(io.MultiWriter(m.dst, m.part), io.LimitReader(f, int64(actual)), m.buf)
	m.report.BytesWritten += uint64(n)
	if err != nil {
		return errors.Wrapf(err, "failed to merge chunk %s", path)
	}
	if uint64(n) != actual {
		return errors.Wrapf(io.ErrUnexpectedEOF,
			"chunk %s ended after %d of %d bytes", path, n, actual)
	}

	sum := m.part.Sum(nil)
	if want := m.record.Checksum(index); !bytes.Equal(sum, want) {
		err := m.mismatch(Mismatch{
			Index:    index,
			Kind:     ChecksumMismatch,
			Path:     path,
			Expected: hex.EncodeToString(want),
			Actual:   hex.EncodeToString(sum),
		})
		if err != nil {
			return err
		}
	}

	m.report.ChunksMerged++
	log.Debugf("(#%d/%d) Merged %s at %d bytes", index, m.record.ChunkCount, path, n)
	return nil
}

// mismatch records mm and asks whether to carry on.
func (m *merger) mismatch(mm Mismatch) error {
	var prompt string
	switch mm.Kind {
	case SizeMismatch:
		prompt = fmt.Sprintf("Chunk #%d has a size of %s instead of the expected %s! Continue anyway?",
			mm.Index, mm.Actual, mm.Expected)
	default:
		prompt = fmt.Sprintf("Checksum mismatch on chunk #%d, chunk most likely corrupted! "+
			"Expected [%s], but got [%s]. Continue anyway?", mm.Index, mm.Expected, mm.Actual)
	}
	log.Warnf("%s: %s", mm.Kind, prompt)

	mm.Accepted = m.confirm != nil && m.confirm.Confirm(prompt)
	m.report.Mismatches = append(m.report.Mismatches, mm)
	if !mm.Accepted {
		log.Infof("Merge cancelled at chunk #%d/%d", mm.Index, m.record.ChunkCount)
		return Error{
			ErrorCode:   ErrAborted,
			Description: fmt.Sprintf("merge aborted on %s of chunk %d", mm.Kind, mm.Index),
			Path:        mm.Path,
		}
	}
	return nil
}
