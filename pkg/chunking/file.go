// Copyright (c) 2025 The FileSplitter developers

package chunking

import (
	"os"

	"github.com/pkg/errors"
)

// createExclusive creates path for writing and fails if anything already
// occupies it.
func createExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, Error{
				ErrorCode:   ErrAlreadyExists,
				Description: "refusing to overwrite existing file",
				Path:        path,
			}
		}
		return nil, errors.Wrapf(err, "failed to create %s", path)
	}
	return f, nil
}
