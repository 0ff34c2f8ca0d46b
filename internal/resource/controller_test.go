package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acquireWithin(c *Controller, d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return c.AcquireWorker(ctx)
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))
	assert.ErrorIs(t, acquireWithin(c, 10*time.Millisecond), context.DeadlineExceeded)

	c.ReleaseWorker()
	assert.NoError(t, acquireWithin(c, time.Second))
}

func TestController_UnlimitedWorkers(t *testing.T) {
	c := NewController(Config{})
	for range 100 {
		require.NoError(t, acquireWithin(c, time.Millisecond))
	}
	c.ReleaseWorker()
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireIO(t.Context(), 1<<20))
	c.ReleaseWorker()
}

func TestController_AcquireIOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// A request above the burst would fail WaitN if not split.
	require.NoError(t, c.AcquireIO(t.Context(), 1<<20+1))
}

func TestRateLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	w := NewRateLimitedWriter(t.Context(), &buf, c)

	n, err := w.Write([]byte("template"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "template", buf.String())
}

func TestRateLimitedWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	c := NewController(Config{IOLimitBytesPerSec: 1})
	w := NewRateLimitedWriter(ctx, &bytes.Buffer{}, c)
	_, err := w.Write([]byte("xx"))
	assert.Error(t, err)
}
