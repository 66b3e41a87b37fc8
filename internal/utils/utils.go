package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Reports whether something exists at path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Builds dir/name+ext, taking ext from like (".bmp" when like has none)
func OutputPath(dir, name, like string) string {
	ext := filepath.Ext(like)
	if ext == "" {
		ext = ".bmp"
	}
	return filepath.Join(dir, name+ext)
}

// Writes data to filename, removing the file again if the write fails half way
func WriteFile(filename string, data []byte) error {
	err := os.WriteFile(filename, data, 0o644)
	if err != nil {
		os.Remove(filename)
	}
	return err
}

// Returns |a - b|
func AbsDiff(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}
