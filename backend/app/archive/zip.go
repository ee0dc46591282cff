package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrArchiveFormat   = errors.New("invalid archive")
	ErrPayloadNotFound = errors.New("payload entry not found")
)

// Entry is one named file inside a zip container.
type Entry struct {
	Name string
	Data []byte
}

// Pack wraps the given entries into a zip container.
func Pack(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.Name)
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", e.Name, err)
		}
		if _, err := f.Write(e.Data); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack extracts all entries from zip bytes.
func Unpack(data []byte) ([]Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFormat, err)
	}
	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrArchiveFormat, f.Name, err)
		}
		body, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrArchiveFormat, f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: body})
	}
	return entries, nil
}

// FindBySuffix returns the first entry whose name ends with suffix. Backup
// archives carry their encrypted payload as the single ".enc" entry.
func FindBySuffix(entries []Entry, suffix string) (Entry, error) {
	for _, e := range entries {
		if strings.HasSuffix(e.Name, suffix) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: no entry matches %q", ErrPayloadNotFound, suffix)
}
