// Copyright (c) 2025 The FileSplitter developers

package summary

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeDecode(t *testing.T) {
	r := createTestRecord(t, t.TempDir())

	data, err := Encode(r)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, r.Equal(decoded))

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")
}

func TestEncodeDecodeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		totalSize := rapid.Uint64Range(1, 1<<40).Draw(t, "totalSize")
		chunkSize := rapid.Uint64Range(totalSize/1000+1, 1<<41).Draw(t, "chunkSize")
		r := New(totalSize, chunkSize, rapid.StringMatching(`[a-z]{1,12}\.bin`).Draw(t, "name"))

		for index := uint32(1); index <= r.ChunkCount; index++ {
			sum := rapid.SliceOfN(rapid.Byte(), ChecksumSize, ChecksumSize).Draw(t, "sum")
			if err := r.AddChunk(index, sum); err != nil {
				t.Fatal(err)
			}
		}
		whole := rapid.SliceOfN(rapid.Byte(), ChecksumSize, ChecksumSize).Draw(t, "whole")
		if err := r.SetWholeFileChecksum(whole); err != nil {
			t.Fatal(err)
		}

		data, err := Encode(r)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		if !r.Equal(decoded) {
			t.Fatalf("decoded record differs:\n%s\nvs\n%s", spew.Sdump(r), spew.Sdump(decoded))
		}
	})
}

func TestDecodeErrors(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, err := Decode([]byte{0xff, 0x00, 0x13})
		assert.True(t, IsErrorCode(err, ErrDecode))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Decode(nil)
		assert.True(t, IsErrorCode(err, ErrDecode))
	})

	t.Run("not a record", func(t *testing.T) {
		data, err := encMode.Marshal("hello")
		require.NoError(t, err)
		_, err = Decode(data)
		assert.True(t, IsErrorCode(err, ErrDecode))
	})

	t.Run("unknown version", func(t *testing.T) {
		r := New(25, 10, "data.bin")
		r.Version = RecordVersion + 1
		data, err := Encode(r)
		require.NoError(t, err)

		_, err = Decode(data)
		assert.True(t, IsErrorCode(err, ErrUnsupportedVersion))
	})
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	r := createTestRecord(t, dir)
	path := filepath.Join(dir, FileName(r.Filename))

	require.NoError(t, Store(r, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, r.Equal(loaded))
	assert.NoError(t, loaded.CheckForErrors(dir))

	t.Run("refuses to overwrite", func(t *testing.T) {
		other := New(1, 1, "other.bin")
		err := Store(other, path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrExist))

		stillThere, err := Load(path)
		require.NoError(t, err)
		assert.True(t, r.Equal(stillThere))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.sum"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("corrupted file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.sum")
		require.NoError(t, os.WriteFile(bad, []byte("not cbor at all"), 0644))

		_, err := Load(bad)
		assert.True(t, IsErrorCode(err, ErrDecode))
	})
}
