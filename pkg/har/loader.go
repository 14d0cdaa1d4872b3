package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/getmockd/harmock/pkg/util"
)

// Common errors for archive loading.
var (
	ErrFileNotFound     = errors.New("archive file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrEmptyFile        = errors.New("archive file is empty")
	ErrUnsafePath       = errors.New("archive path contains path traversal")
)

// Parse decodes archive bytes into a Document.
// Only malformed JSON is an error; an object without entries yields an
// empty Document.
func Parse(data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return &doc, nil
}

// Decode reads and parses an archive from r.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return Parse(data)
}

// LoadFile reads and parses the archive at path.
// Returns wrapped errors for common failure cases.
func LoadFile(path string) (*Document, error) {
	cleanPath, safe := util.CleanPath(path)
	if !safe {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, path)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
