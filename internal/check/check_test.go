package check_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsnap/internal/check"
	"rsnap/internal/transport/transporttest"
)

func TestGate(t *testing.T) {
	const target = "host:/backups"

	t.Run("provisioned target passes", func(t *testing.T) {
		fake := transporttest.New()
		fake.Provision(target)
		require.NoError(t, check.Gate(context.Background(), fake, target))
	})

	t.Run("missing marker aborts", func(t *testing.T) {
		fake := transporttest.New()
		fake.Dirs[target+"/hourly"] = true

		err := check.Gate(context.Background(), fake, target)
		assert.ErrorIs(t, err, check.ErrNotProvisioned)
		assert.ErrorContains(t, err, "backup_enabled")
	})

	t.Run("missing container aborts", func(t *testing.T) {
		fake := transporttest.New()
		fake.Files[target+"/backup_enabled"] = nil

		err := check.Gate(context.Background(), fake, target)
		assert.ErrorIs(t, err, check.ErrNotProvisioned)
		assert.ErrorContains(t, err, "hourly")
	})

	t.Run("empty target aborts", func(t *testing.T) {
		fake := transporttest.New()
		err := check.Gate(context.Background(), fake, target)
		assert.ErrorIs(t, err, check.ErrNotProvisioned)
	})

	t.Run("gate is read-only", func(t *testing.T) {
		fake := transporttest.New()
		_ = check.Gate(context.Background(), fake, target)
		assert.Zero(t, fake.WriteCalls())
	})
}
