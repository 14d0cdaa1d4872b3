package har

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LogShape(t *testing.T) {
	doc, err := Parse([]byte(`{
		"log": {
			"version": "1.2",
			"creator": {"name": "browser", "version": "1"},
			"entries": [
				{"time": 12.5, "request": {"method": "GET", "url": "https://a.test/1", "headers": []},
				 "response": {"status": 200, "headers": [{"name": "X-A", "value": "1"}], "content": {"text": "one"}}},
				{"request": {"method": "PUT", "url": "https://a.test/2", "headers": []},
				 "response": {"status": 204, "headers": [], "content": {"text": ""}}}
			]
		}
	}`))
	require.NoError(t, err)

	entries := doc.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "GET", entries[0].Request.Method)
	assert.Equal(t, "https://a.test/1", entries[0].Request.URL)
	assert.InDelta(t, 12.5, entries[0].Time, 0.0001)
	assert.Equal(t, []Header{{Name: "X-A", Value: "1"}}, entries[0].Response.Headers)
	assert.Equal(t, "PUT", entries[1].Request.Method)
	assert.Zero(t, entries[1].Time)
}

func TestParse_EntriesShape(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "entries-only.har"))
	require.NoError(t, err)

	doc, err := Parse(data)
	require.NoError(t, err)

	entries := doc.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "https://example.org/a", entries[0].Request.URL)
	assert.Equal(t, "https://example.org/b", entries[1].Request.URL)
}

func TestParse_LogWinsOverEntries(t *testing.T) {
	doc, err := Parse([]byte(`{
		"log": {"entries": [{"request": {"method": "GET", "url": "https://log.test/"}, "response": {"status": 200}}]},
		"entries": [{"request": {"method": "GET", "url": "https://bare.test/"}, "response": {"status": 200}}]
	}`))
	require.NoError(t, err)

	entries := doc.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "https://log.test/", entries[0].Request.URL)
}

func TestParse_NoEntries(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty object", `{}`},
		{"unrelated keys", `{"pages": []}`},
		{"empty log", `{"log": {}}`},
		{"empty entries", `{"log": {"entries": []}}`},
		{"top-level array", `[1, 2, 3]`},
		{"top-level null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Empty(t, doc.AllEntries())
		})
	}
}

func TestParse_NonStringURLSurvivesDecode(t *testing.T) {
	doc, err := Parse([]byte(`{"entries": [{"request": {"method": "GET", "url": 42}, "response": {"status": 200}}]}`))
	require.NoError(t, err)

	entries := doc.AllEntries()
	require.Len(t, entries, 1)
	_, isString := entries[0].Request.URL.(string)
	assert.False(t, isString)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"log": `))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestAllEntries_NilDocument(t *testing.T) {
	var doc *Document
	assert.Nil(t, doc.AllEntries())
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadFile(t *testing.T) {
	t.Run("reads archive", func(t *testing.T) {
		doc, err := LoadFile(filepath.Join("testdata", "entries-only.har"))
		require.NoError(t, err)
		assert.Len(t, doc.AllEntries(), 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.har"))
		assert.True(t, errors.Is(err, ErrFileNotFound), "got %v", err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.har")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFile(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("traversal", func(t *testing.T) {
		_, err := LoadFile("../../secret.har")
		assert.ErrorIs(t, err, ErrUnsafePath)
	})
}
