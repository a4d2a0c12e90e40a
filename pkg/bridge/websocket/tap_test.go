package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/uartsync/pkg/diag"
	"github.com/robotalks/uartsync/pkg/frame"
)

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "timeout")
		time.Sleep(time.Millisecond)
	}
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + DefaultPath
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	return conn
}

func receive(t *testing.T, conn *websocket.Conn) interface{} {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var data []byte
	require.NoError(t, websocket.Message.Receive(conn, &data))
	msg, err := diag.Unmarshal(data)
	require.NoError(t, err)
	return msg
}

func TestTapBroadcast(t *testing.T) {
	tap := New("")
	server := httptest.NewServer(tap.Handler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tap.Run(ctx) }()

	c1, c2 := dial(t, server), dial(t, server)
	waitFor(t, func() bool { return tap.Clients() == 2 })

	tap.HandleFrame(&frame.Frame{Seq: 5, Time: time.Unix(1, 0), Data: []byte{9, 8, 7}})
	for _, conn := range []*websocket.Conn{c1, c2} {
		ev, ok := receive(t, conn).(*diag.FrameEvent)
		require.True(t, ok)
		require.Equal(t, uint64(5), ev.Seq)
		require.Equal(t, []byte{9, 8, 7}, ev.Data)
	}

	c1.Close()
	waitFor(t, func() bool { return tap.Clients() == 1 })

	cancel()
	require.NoError(t, <-done)
	waitFor(t, func() bool { return tap.Clients() == 0 })
	c2.Close()
}

func TestTapStats(t *testing.T) {
	tap := New("")
	tap.Stats = func() *diag.Counters { return &diag.Counters{State: "WaitHead"} }
	tap.StatsInterval = 5 * time.Millisecond
	server := httptest.NewServer(tap.Handler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tap.Run(ctx)

	conn := dial(t, server)
	defer conn.Close()
	counters, ok := receive(t, conn).(*diag.Counters)
	require.True(t, ok)
	require.Equal(t, "WaitHead", counters.State)
}

func TestTapDropsWhenFull(t *testing.T) {
	tap := New("")
	for i := 0; i < DefaultQueueLen+3; i++ {
		tap.HandleFrame(&frame.Frame{})
	}
	require.Equal(t, uint64(3), tap.Dropped())
	require.Equal(t, "websocket", tap.Name())
}

func TestTapListenError(t *testing.T) {
	tap := New("127.0.0.1:-1")
	require.Error(t, tap.Run(context.Background()))
}
