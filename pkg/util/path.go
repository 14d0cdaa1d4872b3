package util

import (
	"path/filepath"
	"strings"
)

// CleanPath cleans an operator-supplied file path. Absolute paths are
// accepted; empty paths and paths that keep a ".." segment after cleaning
// are not.
func CleanPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	cleaned := filepath.Clean(path)
	for _, seg := range strings.FieldsFunc(cleaned, isSeparator) {
		if seg == ".." {
			return "", false
		}
	}
	return cleaned, true
}

func isSeparator(r rune) bool { return r == '/' || r == '\\' }
