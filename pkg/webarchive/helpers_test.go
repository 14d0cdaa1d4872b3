package webarchive

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/getmockd/harmock/pkg/har"
)

func loadFixture(t *testing.T, name string) *har.Document {
	t.Helper()
	doc, err := har.LoadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return doc
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func getEntry(method, rawURL string) har.Entry {
	return har.Entry{
		Request: har.Request{Method: method, URL: rawURL},
		Response: har.Response{
			Status:  200,
			Content: har.Content{Text: "ok"},
		},
	}
}
