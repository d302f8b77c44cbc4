package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), LastRunFile)

	rec := &Run{
		Datetime: 1700000000,
		Hostname: "backuphost",
		Source:   "/home/user",
		Target:   "host:/backups",
		Snapshot: "2024-01-15T10-00-00",
		Basis:    "2024-01-15T09-00-00",
		Excludes: []string{"cache", ".swp"},
		LogPath:  "/var/log/rsnap/2024-01-15T10-00-00.log",
	}
	require.NoError(t, Write(path, rec))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestBLAKE3File(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("snapshot log"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("different log"), 0o644))

	hashA, err := BLAKE3File(a)
	require.NoError(t, err)
	assert.Len(t, hashA, 64)

	hashA2, err := BLAKE3File(a)
	require.NoError(t, err)
	assert.Equal(t, hashA, hashA2)

	hashB, err := BLAKE3File(b)
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashB)
}

func TestBLAKE3FileMissing(t *testing.T) {
	_, err := BLAKE3File(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
