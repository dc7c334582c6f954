// Copyright (c) 2025 The FileSplitter developers

package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Binary size units accepted after a chunk size magnitude.
const (
	KB uint64 = 1024
	MB        = KB * 1024
	GB        = MB * 1024
)

// DefaultChunkSize is used when no size is given.
const DefaultChunkSize = 10 * MB

// ErrInvalidSize is wrapped by every ParseSize failure.
var ErrInvalidSize = errors.New("invalid chunk size")

// Magnitude returns the multiplier for unit. Unrecognized units count as KB.
func Magnitude(unit string) uint64 {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "GB":
		return GB
	case "MB":
		return MB
	default:
		return KB
	}
}

// ParseSize converts "<magnitude>[:unit]" into bytes. The separator may also
// be whitespace or omitted ("10:MB", "10 MB", "10MB"); a bare magnitude is
// taken as KB. The result must be positive and fit in a signed 64-bit file
// offset.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	number, unit := s, ""
	if i := strings.IndexByte(s, ':'); i >= 0 {
		number, unit = s[:i], s[i+1:]
	} else if i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }); i >= 0 {
		number, unit = s[:i], s[i:]
	}

	n, err := strconv.ParseUint(strings.TrimSpace(number), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not start with a positive integer", ErrInvalidSize, s)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %q is zero", ErrInvalidSize, s)
	}

	magnitude := Magnitude(unit)
	if n > math.MaxInt64/magnitude {
		return 0, fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidSize, s, int64(math.MaxInt64))
	}
	return n * magnitude, nil
}
