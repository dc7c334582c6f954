// Copyright (c) 2025 The FileSplitter developers

package summary

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// Error codes.
const (
	// ErrInvalidTotalSize indicates a record with a zero source size.
	ErrInvalidTotalSize ErrorCode = iota

	// ErrInvalidChunkSize indicates a record with a zero chunk size.
	ErrInvalidChunkSize

	// ErrChunkCountMismatch indicates the stored chunk count disagrees with
	// the one computed from the sizes.
	ErrChunkCountMismatch

	// ErrNamingConvention indicates a chunk reference that cannot be mapped
	// to a <filename>.<index>.part name.
	ErrNamingConvention

	// ErrMissingChunk indicates a referenced chunk file does not exist.
	ErrMissingChunk

	// ErrMalformedChecksum indicates a missing, nil or wrongly sized digest.
	ErrMalformedChecksum

	// ErrInvalidChunk indicates a rejected AddChunk call.
	ErrInvalidChunk

	// ErrDecode indicates the on-disk record could not be decoded.
	ErrDecode

	// ErrUnsupportedVersion indicates a record written by an unknown format
	// version.
	ErrUnsupportedVersion
)

var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidTotalSize:   "ErrInvalidTotalSize",
	ErrInvalidChunkSize:   "ErrInvalidChunkSize",
	ErrChunkCountMismatch: "ErrChunkCountMismatch",
	ErrNamingConvention:   "ErrNamingConvention",
	ErrMissingChunk:       "ErrMissingChunk",
	ErrMalformedChecksum:  "ErrMalformedChecksum",
	ErrInvalidChunk:       "ErrInvalidChunk",
	ErrDecode:             "ErrDecode",
	ErrUnsupportedVersion: "ErrUnsupportedVersion",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error represents a summary record error.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return fmt.Sprintf("summary error: %s", e.Description)
}

// IsErrorCode reports whether err is, or wraps, an Error with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.ErrorCode == code
}

// IsConsistencyError reports whether err comes from a failed self-check.
func IsConsistencyError(err error) bool {
	var serr Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.ErrorCode {
	case ErrInvalidTotalSize, ErrInvalidChunkSize, ErrChunkCountMismatch,
		ErrNamingConvention, ErrMissingChunk, ErrMalformedChecksum:
		return true
	}
	return false
}
