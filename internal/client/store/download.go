package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var errReleased = errors.New("download handle released")

// DownloadHandle holds an exported file until the caller saves or releases it.
type DownloadHandle struct {
	Filename string

	mu   sync.Mutex
	data []byte
}

func newDownloadHandle(name string, data []byte) *DownloadHandle {
	if data == nil {
		data = []byte{}
	}
	return &DownloadHandle{Filename: name, data: data}
}

// Size returns the number of bytes held, zero after Release.
func (h *DownloadHandle) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

// WriteTo writes the file contents to w.
func (h *DownloadHandle) WriteTo(w io.Writer) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.data == nil {
		return 0, errReleased
	}
	return bytes.NewReader(h.data).WriteTo(w)
}

// Save writes the file into dir under its suggested name and returns the path.
func (h *DownloadHandle) Save(dir string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.data == nil {
		return "", errReleased
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(h.Filename))
	if err := os.WriteFile(path, h.data, 0o644); err != nil {
		return "", fmt.Errorf("save download: %w", err)
	}
	return path, nil
}

// Release drops the held bytes. Safe to call more than once.
func (h *DownloadHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
}
