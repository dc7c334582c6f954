// Copyright (c) 2025 The FileSplitter developers

package chunking

import (
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/VetheonGames/FileSplitter/pkg/summary"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// SplitFile splits sourcePath into chunks of chunkSize bytes written to
// outputDir as <name>.<index>.part, reading the source exactly once. The
// returned record holds every chunk checksum and the whole-file checksum;
// storing it is left to the caller.
//
// Chunk files written before a failure are left in place.
func SplitFile(sourcePath, outputDir string, chunkSize uint64) (*summary.Record, error) {
	if chunkSize == 0 {
		return nil, Error{
			ErrorCode:   ErrInvalidConfiguration,
			Description: "chunk size must be greater than zero",
		}
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open source file %s", sourcePath)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get file info for %s", sourcePath)
	}
	if !info.Mode().IsRegular() {
		return nil, Error{
			ErrorCode:   ErrInvalidConfiguration,
			Description: "source is not a regular file",
			Path:        sourcePath,
		}
	}

	totalSize := uint64(info.Size())
	chunkCount, err := ChunkCount(totalSize, chunkSize)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot split %s", sourcePath)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	record := summary.New(totalSize, chunkSize, filepath.Base(info.Name()))
	log.Infof("Splitting %s (%s) into %d chunks of %s [run %s]", sourcePath,
		humanize.IBytes(totalSize), chunkCount, humanize.IBytes(chunkSize), record.ID)

	// The whole-file digest sees every byte pulled from the source; the
	// chunk digest is reset at each boundary.
	whole := newDigest()
	part := newDigest()
	stream := io.TeeReader(source, whole)
	buf := make([]byte, BufferSize(chunkSize))

	for index := uint32(1); index <= chunkCount; index++ {
		size := ExpectedSize(totalSize, chunkSize, chunkCount, index)
		path := record.PartPath(outputDir, index)

		part.Reset()
		if err := writeChunk(path, stream, size, part, buf); err != nil {
			return nil, err
		}
		if err := record.AddChunk(index, part.Sum(nil)); err != nil {
			return nil, err
		}

		log.Debugf("(#%d/%d) Wrote %s at %d bytes, sha256 %s", index, chunkCount,
			path, size, record.ChecksumHex(index))
	}

	if err := record.SetWholeFileChecksum(whole.Sum(nil)); err != nil {
		return nil, err
	}

	log.Infof("Split %s into %d chunks, sha256 %s", record.Filename, chunkCount,
		record.WholeFileChecksumHex())
	return record, nil
}

// writeChunk copies exactly size bytes from src into a new file at path,
// feeding digest along the way.
func writeChunk(path string, src io.Reader, size uint64, digest hash.Hash, buf []byte) error {
	f, err := createExclusive(path)
	if err != nil {
		return err
	}
	defer f.Close()

	written, err := io.CopyBuffer(io.MultiWriter(f, digest), io.LimitReader(src, int64(size)), buf)
	if err != nil {
		return errors.Wrapf(err, "failed to write chunk %s", path)
	}
	if uint64(written) != size {
		return errors.Wrapf(io.ErrUnexpectedEOF,
			"source ended after %d of %d bytes for chunk %s", written, size, path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close chunk %s", path)
	}
	return nil
}
