package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestWatchdog(t *testing.T) {
	clk := &testClock{t: time.Unix(1000, 0)}
	w := NewWithClock(100*time.Millisecond, clk.now)
	require.False(t, w.IsFed())
	require.True(t, w.LastFed().IsZero())

	w.Feed()
	require.True(t, w.IsFed())
	require.True(t, clk.t.Equal(w.LastFed()))

	clk.advance(99 * time.Millisecond)
	require.True(t, w.IsFed())
	clk.advance(time.Millisecond)
	require.False(t, w.IsFed())

	w.Feed()
	require.True(t, w.IsFed())
	require.Equal(t, 100*time.Millisecond, w.Timeout())
}

func TestWatchdogRealClock(t *testing.T) {
	w := New(time.Hour)
	w.Feed()
	require.True(t, w.IsFed())
}
