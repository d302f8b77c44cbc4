package provision_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsnap/internal/check"
	"rsnap/internal/provision"
	"rsnap/internal/transport/transporttest"
)

const target = "host:/backups"

func TestRunProvisionsEmptyTarget(t *testing.T) {
	fake := transporttest.New()

	require.NoError(t, provision.Run(context.Background(), fake, target))

	_, hasMarker := fake.Files[target+"/"+check.MarkerFile]
	assert.True(t, hasMarker)
	assert.True(t, fake.Dirs[target+"/"+check.ContainerDir])

	// The gate must pass afterwards.
	require.NoError(t, check.Gate(context.Background(), fake, target))
}

func TestRunIsNoOpWhenAlreadyProvisioned(t *testing.T) {
	fake := transporttest.New()
	fake.Provision(target)

	require.NoError(t, provision.Run(context.Background(), fake, target))
	assert.Zero(t, fake.WriteCalls())
}
