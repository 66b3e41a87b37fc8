package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "a.bmp")

	assert.False(t, FileExists(filename))
	require.NoError(t, os.WriteFile(filename, nil, 0o644))
	assert.True(t, FileExists(filename))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "merged_image.bmp"), OutputPath("out", "merged_image", "in/cat.bmp"))
	assert.Equal(t, filepath.Join("out", "merged_image.dib"), OutputPath("out", "merged_image", "cat.dib"))
	assert.Equal(t, "merged_image.bmp", OutputPath("", "merged_image", "cat"))
}

func TestWriteFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "x.bin")
	require.NoError(t, WriteFile(filename, []byte{1, 2, 3}))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "x.bin"), nil))
}

func TestAbsDiff(t *testing.T) {
	assert.Equal(t, byte(3), AbsDiff(5, 2))
	assert.Equal(t, byte(3), AbsDiff(2, 5))
	assert.Equal(t, byte(0), AbsDiff(7, 7))
	assert.Equal(t, byte(255), AbsDiff(0, 255))
}
