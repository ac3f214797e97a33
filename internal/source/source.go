// Package source opens the tool's input and output streams, unpacking the
// archive and compression formats GADM data is commonly shipped in.
package source

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
)

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

// Open returns a reader for path. Files ending in .gz or .zst are
// decompressed; a .zip archive must hold exactly one .json or .geojson file.
func Open(path string) (io.ReadCloser, error) {
	if path == "" || path == Stdio {
		return io.NopCloser(os.Stdin), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return openZIP(path)
	case ".gz":
		return openGzip(path)
	case ".zst", ".zstd":
		return openZstd(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	return f, nil
}

// Create returns a writer for path, truncating an existing file.
func Create(path string) (io.WriteCloser, error) {
	if path == "" || path == Stdio {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: create %s", path)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// multiCloser reads from r and closes every closer in order.
type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "source: gzip %s", path)
	}
	return &multiCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
}

func openZstd(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "source: zstd %s", path)
	}
	rc := dec.IOReadCloser()
	return &multiCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
}

// openZIP opens the single GeoJSON entry of a ZIP archive.
func openZIP(path string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open archive %s", path)
	}

	var entries []*zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".json", ".geojson":
			entries = append(entries, f)
		}
	}
	if len(entries) != 1 {
		_ = r.Close()
		return nil, eris.Errorf("source: expected exactly 1 json file in %s, got %d", path, len(entries))
	}

	rc, err := entries[0].Open()
	if err != nil {
		_ = r.Close()
		return nil, eris.Wrapf(err, "source: open entry %s", entries[0].Name)
	}
	return &multiCloser{Reader: rc, closers: []io.Closer{rc, r}}, nil
}
