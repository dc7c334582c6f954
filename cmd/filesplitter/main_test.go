// Copyright (c) 2025 The FileSplitter developers

package main

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/VetheonGames/FileSplitter/pkg/chunking"
	"github.com/VetheonGames/FileSplitter/pkg/config"
	"github.com/VetheonGames/FileSplitter/pkg/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	yes = chunking.ConfirmFunc(func(string) bool { return true })
	no  = chunking.ConfirmFunc(func(string) bool { return false })
)

// createTestFile writes size random bytes to dir/name.
func createTestFile(t *testing.T, dir, name string, size int) (string, []byte) {
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path, data
}

// splitForTest runs split mode and returns the summary file path.
func splitForTest(t *testing.T, size int, chunkSize uint64) (string, []byte) {
	source, data := createTestFile(t, t.TempDir(), "data.bin", size)
	export := t.TempDir()

	cfg := &config.Config{Path: source, Export: export, ChunkSize: chunkSize}
	var out bytes.Buffer
	require.NoError(t, filesplitterMain(cfg, yes, &out))
	assert.Contains(t, out.String(), "Done!")

	return filepath.Join(export, "data.bin.sum"), data
}

func TestSplitInfoMerge(t *testing.T) {
	sumPath, data := splitForTest(t, 2500, 1000)
	chunkDir := filepath.Dir(sumPath)

	for index := 1; index <= 3; index++ {
		assert.FileExists(t, filepath.Join(chunkDir, fmt.Sprintf("data.bin.%d.part", index)))
	}

	var out bytes.Buffer
	err := filesplitterMain(&config.Config{Path: sumPath, Info: true}, no, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Output file will be data.bin")
	assert.Contains(t, out.String(), "data.bin.3.part")
	assert.Contains(t, out.String(), "Check: OK")

	restored := t.TempDir()
	out.Reset()
	err = filesplitterMain(&config.Config{Path: sumPath, Export: restored, Merge: true}, yes, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Merged 3 chunks")

	merged, err := os.ReadFile(filepath.Join(restored, "data.bin"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, merged))
}

func TestSplitCancelled(t *testing.T) {
	source, _ := createTestFile(t, t.TempDir(), "data.bin", 100)
	export := t.TempDir()

	var out bytes.Buffer
	err := filesplitterMain(&config.Config{Path: source, Export: export, ChunkSize: 10}, no, &out)
	assert.True(t, errors.Is(err, errCancelled))
	assert.Equal(t, exitOK, exitCode(err))

	entries, err := os.ReadDir(export)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSplitExistingSummary(t *testing.T) {
	source, _ := createTestFile(t, t.TempDir(), "data.bin", 100)
	export := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(export, "data.bin.sum"), nil, 0644))

	var out bytes.Buffer
	err := filesplitterMain(&config.Config{Path: source, Export: export, ChunkSize: 10}, yes, &out)
	assert.True(t, chunking.IsErrorCode(err, chunking.ErrAlreadyExists))
	assert.Equal(t, exitFailure, exitCode(err))

	_, err = os.Stat(filepath.Join(export, "data.bin.1.part"))
	assert.True(t, os.IsNotExist(err))
}

func TestSplitMissingSource(t *testing.T) {
	var out bytes.Buffer
	err := filesplitterMain(&config.Config{
		Path:      filepath.Join(t.TempDir(), "nope.bin"),
		Export:    t.TempDir(),
		ChunkSize: 10,
	}, yes, &out)
	assert.Equal(t, exitMissingFile, exitCode(err))
}

func TestInfoInconsistent(t *testing.T) {
	sumPath, _ := splitForTest(t, 2500, 1000)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(sumPath), "data.bin.2.part")))

	var out bytes.Buffer
	err := filesplitterMain(&config.Config{Path: sumPath, Info: true}, no, &out)
	assert.True(t, summary.IsErrorCode(err, summary.ErrMissingChunk))
	assert.Equal(t, exitConsistency, exitCode(err))
	assert.Contains(t, out.String(), "Check: FAILED")
}

func TestMergeDeclinedMismatch(t *testing.T) {
	sumPath, _ := splitForTest(t, 2500, 1000)
	part := filepath.Join(filepath.Dir(sumPath), "data.bin.1.part")
	data, err := os.ReadFile(part)
	require.NoError(t, err)
	data[10] ^= 0xff
	require.NoError(t, os.WriteFile(part, data, 0644))

	// Accept the plan, decline the mismatch.
	answers := []bool{true, false}
	confirm := chunking.ConfirmFunc(func(string) bool {
		answer := answers[0]
		answers = answers[1:]
		return answer
	})

	var out bytes.Buffer
	err = filesplitterMain(&config.Config{Path: sumPath, Export: t.TempDir(), Merge: true}, confirm, &out)
	assert.True(t, chunking.IsErrorCode(err, chunking.ErrAborted))
	assert.Equal(t, exitOK, exitCode(err))
	assert.Contains(t, out.String(), "chunk #1: checksum mismatch")
	assert.Empty(t, answers)
}

func TestMergeMissingSummary(t *testing.T) {
	var out bytes.Buffer
	err := filesplitterMain(&config.Config{
		Path:   filepath.Join(t.TempDir(), "nope.bin.sum"),
		Export: t.TempDir(),
		Merge:  true,
	}, yes, &out)
	assert.Equal(t, exitMissingFile, exitCode(err))
}

func TestMergeCorruptSummary(t *testing.T) {
	dir := t.TempDir()
	sumPath := filepath.Join(dir, "data.bin.sum")
	require.NoError(t, os.WriteFile(sumPath, []byte{0xff, 0xfe}, 0644))

	var out bytes.Buffer
	err := filesplitterMain(&config.Config{Path: sumPath, Export: dir, Merge: true}, yes, &out)
	assert.Equal(t, exitConsistency, exitCode(err))
}

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, exitOK},
		{"cancelled", errCancelled, exitOK},
		{"aborted", chunking.Error{ErrorCode: chunking.ErrAborted}, exitOK},
		{"invalid configuration", chunking.Error{ErrorCode: chunking.ErrInvalidConfiguration}, exitUsage},
		{"missing file", fmt.Errorf("open: %w", os.ErrNotExist), exitMissingFile},
		{"consistency", summary.Error{ErrorCode: summary.ErrChunkCountMismatch}, exitConsistency},
		{"missing chunk", summary.Error{ErrorCode: summary.ErrMissingChunk}, exitConsistency},
		{"other", errors.New("disk on fire"), exitFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, exitCode(tc.err))
		})
	}
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "0.6.0", version())
}
