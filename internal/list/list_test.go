package list_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsnap/internal/check"
	"rsnap/internal/list"
	"rsnap/internal/transport/transporttest"
)

const target = "host:/backups"

func TestRunRequiresProvisionedTarget(t *testing.T) {
	fake := transporttest.New()
	err := list.Run(context.Background(), fake, target)
	assert.ErrorIs(t, err, check.ErrNotProvisioned)
}

func TestRunListsSnapshots(t *testing.T) {
	fake := transporttest.New()
	fake.Provision(target)
	fake.Dirs[target+"/hourly/2024-01-15T10-00-00"] = true
	fake.Dirs[target+"/hourly/2024-01-15T11-00-00"] = true
	fake.Files[target+"/last_successful_timestamp"] = []byte("2024-01-15T11-00-00\n")

	require.NoError(t, list.Run(context.Background(), fake, target))
}

func TestRunEmptyContainer(t *testing.T) {
	fake := transporttest.New()
	fake.Provision(target)
	require.NoError(t, list.Run(context.Background(), fake, target))
}
