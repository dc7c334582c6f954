// Copyright (c) 2025 The FileSplitter developers

package chunking

import (
	"fmt"
	"hash"

	"github.com/VetheonGames/FileSplitter/pkg/summary"
	"github.com/minio/sha256-simd"
)

// MaxBufferSize caps the copy buffer so memory use stays bounded whatever the
// chunk size is.
const MaxBufferSize = 8 * 1024 * 1024

// ChunkCount returns ceil(totalSize / chunkSize) as a chunk count.
func ChunkCount(totalSize, chunkSize uint64) (uint32, error) {
	if chunkSize == 0 {
		return 0, Error{
			ErrorCode:   ErrInvalidConfiguration,
			Description: "chunk size must be greater than zero",
		}
	}
	count := summary.ExpectedChunkCount(totalSize, chunkSize)
	if count == 0 {
		return 0, Error{
			ErrorCode:   ErrIllegalState,
			Description: fmt.Sprintf("illegal chunk count %d for %d bytes", count, totalSize),
		}
	}
	if count > uint64(^uint32(0)) {
		return 0, Error{
			ErrorCode:   ErrIllegalState,
			Description: fmt.Sprintf("%d chunks exceed the supported maximum of %d", count, ^uint32(0)),
		}
	}
	return uint32(count), nil
}

// ExpectedSize returns the byte length of chunk index (1-based). Every chunk
// but the last is chunkSize long; the last one holds the remainder.
func ExpectedSize(totalSize, chunkSize uint64, chunkCount, index uint32) uint64 {
	if index == 0 || index > chunkCount {
		return 0
	}
	if index < chunkCount {
		return chunkSize
	}
	return totalSize - chunkSize*uint64(chunkCount-1)
}

// RecordExpectedSize is ExpectedSize for the chunks described by r.
func RecordExpectedSize(r *summary.Record, index uint32) uint64 {
	return ExpectedSize(r.TotalSize, r.ChunkSize, r.ChunkCount, index)
}

// BufferSize returns the copy buffer length used for chunks of chunkSize.
func BufferSize(chunkSize uint64) int {
	if chunkSize == 0 || chunkSize > MaxBufferSize {
		return MaxBufferSize
	}
	return int(chunkSize)
}

// newDigest returns a fresh SHA-256 accumulator. Every logical scope (whole
// file, current chunk) gets its own.
func newDigest() hash.Hash {
	return sha256.New()
}
