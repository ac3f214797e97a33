package source

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{"features":[{"properties":{"GID_0":"AFG"}}]}`

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "gadm41_AFG_2.json.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func readAll(t *testing.T, path string) string {
	t.Helper()
	rc, err := Open(path)
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestOpen_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gadm.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	assert.Equal(t, sampleJSON, readAll(t, path))
}

func TestOpen_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gadm.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleJSON))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	assert.Equal(t, sampleJSON, readAll(t, path))
}

func TestOpen_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gadm.json.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(sampleJSON))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	assert.Equal(t, sampleJSON, readAll(t, path))
}

func TestOpen_ZIPSingleEntry(t *testing.T) {
	path := createTestZIP(t, map[string]string{
		"gadm41_AFG_2.json": sampleJSON,
		"license.txt":       "see gadm.org",
	})

	assert.Equal(t, sampleJSON, readAll(t, path))
}

func TestOpen_ZIPAmbiguous(t *testing.T) {
	path := createTestZIP(t, map[string]string{
		"a.json":    sampleJSON,
		"b.geojson": sampleJSON,
	})

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly 1 json file")
}

func TestOpen_ZIPNoJSON(t *testing.T) {
	path := createTestZIP(t, map[string]string{"readme.txt": "nothing"})

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 0")
}

func TestOpen_BadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gadm.json.gz")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source: gzip")
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestOpen_Stdin(t *testing.T) {
	rc, err := Open(Stdio)
	require.NoError(t, err)
	assert.NoError(t, rc.Close())
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	wc, err := Create(path)
	require.NoError(t, err)
	_, err = wc.Write([]byte("a,b\n"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestCreate_Stdout(t *testing.T) {
	wc, err := Create(Stdio)
	require.NoError(t, err)
	assert.NoError(t, wc.Close())
}

func TestCreate_BadDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
}
