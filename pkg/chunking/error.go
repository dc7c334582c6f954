// Copyright (c) 2025 The FileSplitter developers

package chunking

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// Error codes.
const (
	// ErrInvalidConfiguration indicates a rejected parameter, reported
	// before any I/O.
	ErrInvalidConfiguration ErrorCode = iota

	// ErrIllegalState indicates chunk arithmetic that cannot describe a
	// split, such as an empty source.
	ErrIllegalState

	// ErrAlreadyExists indicates a chunk or output file is already present.
	ErrAlreadyExists

	// ErrAborted indicates the merge stopped because a mismatch was not
	// confirmed.
	ErrAborted
)

var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidConfiguration: "ErrInvalidConfiguration",
	ErrIllegalState:         "ErrIllegalState",
	ErrAlreadyExists:        "ErrAlreadyExists",
	ErrAborted:              "ErrAborted",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error represents a split or merge error. Path names the file involved, if
// any.
type Error struct {
	ErrorCode   ErrorCode
	Description string
	Path        string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Description, e.Path)
	}
	return e.Description
}

// IsErrorCode reports whether err is, or wraps, an Error with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var cerr Error
	return errors.As(err, &cerr) && cerr.ErrorCode == code
}
