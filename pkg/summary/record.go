// Copyright (c) 2025 The FileSplitter developers

package summary

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// RecordVersion is the current on-disk record format version.
	RecordVersion = 1

	// ChecksumSize is the length of every stored digest (SHA-256).
	ChecksumSize = 32

	// PartSuffix terminates every chunk file name.
	PartSuffix = ".part"

	// FileSuffix terminates the summary record file name.
	FileSuffix = ".sum"
)

// Record describes a single split run: enough to rebuild and verify the
// original file from its chunks without reading the source again.
type Record struct {
	Version           int               `json:"version"`
	ID                string            `json:"id"`
	TotalSize         uint64            `json:"total_size"`
	ChunkSize         uint64            `json:"chunk_size"`
	ChunkCount        uint32            `json:"chunk_count"`
	Filename          string            `json:"filename"`
	Checksums         map[uint32][]byte `json:"checksums"`
	WholeFileChecksum []byte            `json:"whole_file_checksum"`
}

// New creates the record for a split run of filename. ChunkCount is derived
// from the two sizes and saturates at the uint32 range; callers must reject
// records whose count does not fit.
func New(totalSize, chunkSize uint64, filename string) *Record {
	return &Record{
		Version:    RecordVersion,
		ID:         uuid.NewString(),
		TotalSize:  totalSize,
		ChunkSize:  chunkSize,
		ChunkCount: clampCount(ExpectedChunkCount(totalSize, chunkSize)),
		Filename:   filename,
		Checksums:  make(map[uint32][]byte),
	}
}

// ExpectedChunkCount returns ceil(totalSize / chunkSize), or 0 when chunkSize
// is 0.
func ExpectedChunkCount(totalSize, chunkSize uint64) uint64 {
	if chunkSize == 0 {
		return 0
	}
	count := totalSize / chunkSize
	if totalSize%chunkSize != 0 {
		count++
	}
	return count
}

func clampCount(count uint64) uint32 {
	if count > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(count)
}

// AddChunk records the checksum of chunk index (1-based).
func (r *Record) AddChunk(index uint32, checksum []byte) error {
	if index == 0 || index > r.ChunkCount {
		return Error{
			ErrorCode:   ErrInvalidChunk,
			Description: fmt.Sprintf("chunk index %d outside 1..%d", index, r.ChunkCount),
		}
	}
	if len(checksum) != ChecksumSize {
		return Error{
			ErrorCode:   ErrInvalidChunk,
			Description: fmt.Sprintf("chunk %d checksum has %d bytes, want %d", index, len(checksum), ChecksumSize),
		}
	}
	if _, exists := r.Checksums[index]; exists {
		return Error{
			ErrorCode:   ErrInvalidChunk,
			Description: fmt.Sprintf("chunk %d already recorded", index),
		}
	}
	if r.Checksums == nil {
		r.Checksums = make(map[uint32][]byte)
	}
	r.Checksums[index] = append([]byte(nil), checksum...)
	return nil
}

// SetWholeFileChecksum stores the digest of the complete stream. It may only
// be called once per record.
func (r *Record) SetWholeFileChecksum(checksum []byte) error {
	if len(r.WholeFileChecksum) != 0 {
		return Error{
			ErrorCode:   ErrInvalidChunk,
			Description: "whole-file checksum already set",
		}
	}
	if len(checksum) != ChecksumSize {
		return Error{
			ErrorCode:   ErrMalformedChecksum,
			Description: fmt.Sprintf("whole-file checksum has %d bytes, want %d", len(checksum), ChecksumSize),
		}
	}
	r.WholeFileChecksum = append([]byte(nil), checksum...)
	return nil
}

// Checksum returns the stored digest for chunk index, or nil.
func (r *Record) Checksum(index uint32) []byte {
	return r.Checksums[index]
}

// ChecksumHex returns the stored digest for chunk index as lower-case hex.
func (r *Record) ChecksumHex(index uint32) string {
	return hex.EncodeToString(r.Checksums[index])
}

// WholeFileChecksumHex returns the whole-file digest as lower-case hex.
func (r *Record) WholeFileChecksumHex() string {
	return hex.EncodeToString(r.WholeFileChecksum)
}

// PartName returns the name of chunk index for filename.
func (r *Record) PartName(index uint32) string {
	return PartName(r.Filename, index)
}

// PartPath returns the location of chunk index inside dir.
func (r *Record) PartPath(dir string, index uint32) string {
	return filepath.Join(dir, PartName(r.Filename, index))
}

// CheckForErrors verifies the record is self-consistent and that every chunk
// it references exists in chunkDir. Merging must not start against a record
// that fails this check.
func (r *Record) CheckForErrors(chunkDir string) error {
	if r.TotalSize == 0 {
		return Error{
			ErrorCode:   ErrInvalidTotalSize,
			Description: "source file size recorded as zero",
		}
	}
	if r.ChunkSize == 0 {
		return Error{
			ErrorCode:   ErrInvalidChunkSize,
			Description: "chunk size recorded as zero",
		}
	}
	if expected := ExpectedChunkCount(r.TotalSize, r.ChunkSize); expected != uint64(r.ChunkCount) {
		return Error{
			ErrorCode: ErrChunkCountMismatch,
			Description: fmt.Sprintf("chunk count %d does not match ceil(%d / %d) = %d",
				r.ChunkCount, r.TotalSize, r.ChunkSize, expected),
		}
	}
	if err := ValidateFilename(r.Filename); err != nil {
		return err
	}

	for index := range r.Checksums {
		if index == 0 || index > r.ChunkCount {
			return Error{
				ErrorCode:   ErrNamingConvention,
				Description: fmt.Sprintf("registry references chunk %q outside 1..%d", r.PartName(index), r.ChunkCount),
			}
		}
	}

	for index := uint32(1); index <= r.ChunkCount; index++ {
		sum, ok := r.Checksums[index]
		if !ok || sum == nil {
			return Error{
				ErrorCode:   ErrMalformedChecksum,
				Description: fmt.Sprintf("no checksum recorded for chunk %d", index),
			}
		}
		if len(sum) != ChecksumSize {
			return Error{
				ErrorCode:   ErrMalformedChecksum,
				Description: fmt.Sprintf("chunk %d checksum has %d bytes, want %d", index, len(sum), ChecksumSize),
			}
		}

		path := r.PartPath(chunkDir, index)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Error{
					ErrorCode:   ErrMissingChunk,
					Description: fmt.Sprintf("chunk file missing: %s", path),
				}
			}
			return fmt.Errorf("failed to check chunk file %s: %w", path, err)
		}
		if info.IsDir() {
			return Error{
				ErrorCode:   ErrMissingChunk,
				Description: fmt.Sprintf("chunk path is a directory: %s", path),
			}
		}
	}

	if len(r.WholeFileChecksum) != ChecksumSize {
		return Error{
			ErrorCode:   ErrMalformedChecksum,
			Description: fmt.Sprintf("whole-file checksum has %d bytes, want %d", len(r.WholeFileChecksum), ChecksumSize),
		}
	}

	return nil
}

// Equal reports whether both records describe the same split run.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Version != other.Version || r.ID != other.ID ||
		r.TotalSize != other.TotalSize || r.ChunkSize != other.ChunkSize ||
		r.ChunkCount != other.ChunkCount || r.Filename != other.Filename {
		return false
	}
	if !bytes.Equal(r.WholeFileChecksum, other.WholeFileChecksum) {
		return false
	}
	if len(r.Checksums) != len(other.Checksums) {
		return false
	}
	for index, sum := range r.Checksums {
		otherSum, ok := other.Checksums[index]
		if !ok || !bytes.Equal(sum, otherSum) {
			return false
		}
	}
	return true
}

// ValidateFilename rejects names that cannot be used to derive chunk and
// output paths.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return Error{
			ErrorCode:   ErrNamingConvention,
			Description: fmt.Sprintf("filename %q is not a plain base name", name),
		}
	}
	return nil
}

// PartName returns "<filename>.<index>.part".
func PartName(filename string, index uint32) string {
	return filename + "." + strconv.FormatUint(uint64(index), 10) + PartSuffix
}

// ParsePartName splits a chunk file name into the original filename and its
// index. Indices with leading zeros are rejected.
func ParsePartName(name string) (string, uint32, error) {
	invalid := Error{
		ErrorCode:   ErrNamingConvention,
		Description: fmt.Sprintf("%q does not follow <filename>.<index>%s", name, PartSuffix),
	}

	stem, ok := strings.CutSuffix(name, PartSuffix)
	if !ok {
		return "", 0, invalid
	}
	dot := strings.LastIndexByte(stem, '.')
	if dot <= 0 || dot == len(stem)-1 {
		return "", 0, invalid
	}
	digits := stem[dot+1:]
	if digits[0] == '0' {
		return "", 0, invalid
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", 0, invalid
		}
	}
	index, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return "", 0, invalid
	}
	return stem[:dot], uint32(index), nil
}

// FileName returns the conventional summary file name for filename.
func FileName(filename string) string {
	return filename + FileSuffix
}
