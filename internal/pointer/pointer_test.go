package pointer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsnap/internal/pointer"
	"rsnap/internal/transport/transporttest"
)

const target = "host:/backups"

func TestResolve(t *testing.T) {
	t.Run("missing pointer means first run", func(t *testing.T) {
		fake := transporttest.New()
		got := pointer.Resolve(context.Background(), fake, target, t.TempDir())
		assert.Empty(t, got)
	})

	t.Run("fetch failure degrades to first run", func(t *testing.T) {
		fake := transporttest.New()
		fake.FetchErr = errors.New("connection refused")
		got := pointer.Resolve(context.Background(), fake, target, t.TempDir())
		assert.Empty(t, got)
	})

	t.Run("contents are trimmed", func(t *testing.T) {
		fake := transporttest.New()
		fake.Files[target+"/last_successful_timestamp"] = []byte("2024-01-15T10-00-00\n")

		got := pointer.Resolve(context.Background(), fake, target, t.TempDir())
		assert.Equal(t, "2024-01-15T10-00-00", got)
	})

	t.Run("scratch file is removed", func(t *testing.T) {
		fake := transporttest.New()
		fake.Files[target+"/last_successful_timestamp"] = []byte("2024-01-15T10-00-00\n")
		scratch := t.TempDir()

		pointer.Resolve(context.Background(), fake, target, scratch)

		_, err := os.Stat(filepath.Join(scratch, pointer.FileName))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestCommit(t *testing.T) {
	t.Run("pushes the timestamp over the pointer", func(t *testing.T) {
		fake := transporttest.New()
		scratch := t.TempDir()

		require.NoError(t, pointer.Commit(context.Background(), fake, target, scratch, "2024-01-15T10-00-00"))

		assert.Equal(t, []byte("2024-01-15T10-00-00\n"), fake.Files[target+"/last_successful_timestamp"])
		require.Len(t, fake.PushCalls, 1)
		assert.Equal(t, target+"/last_successful_timestamp", fake.PushCalls[0].Remote)

		_, err := os.Stat(filepath.Join(scratch, pointer.FileName))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("resolve roundtrips a committed pointer", func(t *testing.T) {
		fake := transporttest.New()
		scratch := t.TempDir()

		require.NoError(t, pointer.Commit(context.Background(), fake, target, scratch, "2024-02-01T00-00-00"))
		got := pointer.Resolve(context.Background(), fake, target, scratch)
		assert.Equal(t, "2024-02-01T00-00-00", got)
	})
}
