package link

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartsync/pkg/config"
	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/rxsync"
)

func newTestLink(t *testing.T) *Link {
	c := config.NewConfig()
	c.Header = config.HexBytes{0xaa, 0x55}
	c.DataLen = 4
	c.CRC = "CRC-8"
	l, err := New(c)
	require.NoError(t, err)
	return l
}

func TestLinkRun(t *testing.T) {
	l := newTestLink(t)
	var frames []*frame.Frame
	l.AddSink(frame.SinkFunc(func(f *frame.Frame) { frames = append(frames, f) }))

	g := frame.NewGenerator(l.Layout, 1)
	var stream bytes.Buffer
	var sent [][]byte
	for i := 0; i < 10; i++ {
		line, data, _ := g.Next()
		stream.Write(line)
		sent = append(sent, data)
	}
	require.NoError(t, l.Run(context.Background(), &stream))
	require.Len(t, frames, 10)
	for i, f := range frames {
		require.Equal(t, sent[i], f.Data)
		require.Equal(t, uint64(i+1), f.Seq)
	}
	// Run stops the receiver at the end of the stream
	require.Equal(t, rxsync.Stopped, l.Receiver.State())

	c := l.Counters()
	require.Equal(t, uint64(10), c.DecodeOk)
	require.Equal(t, uint64(70), c.BytesReceived)
}

func TestLinkControl(t *testing.T) {
	l := newTestLink(t)
	require.NoError(t, l.Control("start"))
	require.Equal(t, rxsync.WaitHead, l.Receiver.State())
	b, err := l.Layout.Encode([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	l.Port.Feed(b)
	require.Equal(t, rxsync.DMAActive, l.Receiver.State())
	require.True(t, l.Receiver.IsConnected())

	require.NoError(t, l.Control("resync"))
	require.Equal(t, rxsync.WaitHead, l.Receiver.State())
	require.NoError(t, l.Control("stop"))
	require.Equal(t, rxsync.Stopped, l.Receiver.State())
	require.Error(t, l.Control("reboot"))
	require.Equal(t, "Stopped", l.Counters().State)
}

func TestLinkInvalidConfig(t *testing.T) {
	c := config.NewConfig()
	c.CRC = "nope"
	_, err := New(c)
	require.Error(t, err)
}
