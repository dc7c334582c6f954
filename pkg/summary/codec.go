// Copyright (c) 2025 The FileSplitter developers

package summary

import (
	"fmt"
	"math"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Records are stored as CBOR with Core Deterministic Encoding: map keys are
// sorted and integers use their shortest form, so the same record always
// produces the same bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("summary: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		MaxMapPairs: math.MaxInt32,
	}.DecMode()
	if err != nil {
		panic("summary: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes the record.
func Encode(r *Record) ([]byte, error) {
	data, err := encMode.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "encoding summary record")
	}
	return data, nil
}

// Decode parses a serialized record. It does not run CheckForErrors.
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, Error{
			ErrorCode:   ErrDecode,
			Description: fmt.Sprintf("decoding summary record: %v", err),
		}
	}
	if r.Version < 1 || r.Version > RecordVersion {
		return nil, Error{
			ErrorCode:   ErrUnsupportedVersion,
			Description: fmt.Sprintf("summary record version %d not supported (want 1..%d)", r.Version, RecordVersion),
		}
	}
	if r.Checksums == nil {
		r.Checksums = make(map[uint32][]byte)
	}
	return &r, nil
}

// Store writes the record to path. An existing file is never overwritten.
func Store(r *Record, path string) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to create summary file %s", path)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write summary file %s", path)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, "failed to sync summary file %s", path)
	}

	log.Debugf("Stored summary %s for %s (%d chunks)", path, r.Filename, r.ChunkCount)
	return f.Close()
}

// Load reads a record previously written by Store.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read summary file %s", path)
	}

	r, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "summary file %s", path)
	}

	log.Debugf("Loaded summary %s: %s, %d bytes in %d chunks", path, r.Filename, r.TotalSize, r.ChunkCount)
	return r, nil
}
