//go:build integration

package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maskchain/pkg/testutil/containers"
)

func TestRedisLockerSerializesAcrossClients(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	locker := NewRedisLocker(rc.Client, 30*time.Second)

	release, err := locker.Acquire(ctx, "maskchain:chain:order:order-1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "maskchain:chain:order:order-1")
	assert.ErrorIs(t, err, ErrLockBusy)

	// Other orders lock independently.
	other, err := locker.Acquire(ctx, "maskchain:chain:order:order-2")
	require.NoError(t, err)
	other()

	release()
	release2, err := locker.Acquire(ctx, "maskchain:chain:order:order-1")
	require.NoError(t, err)
	release2()
}

func TestRedisLockerExpiryFreesCrashedHolder(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	short := NewRedisLocker(rc.Client, 100*time.Millisecond)
	_, err := short.Acquire(ctx, "maskchain:chain:order:order-1")
	require.NoError(t, err)

	// Never released; the TTL must free it.
	require.Eventually(t, func() bool {
		release, err := short.Acquire(ctx, "maskchain:chain:order:order-1")
		if err != nil {
			return false
		}
		release()
		return true
	}, 2*time.Second, 50*time.Millisecond)
}
