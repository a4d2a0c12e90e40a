package diag

import (
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/rxsync"
	"github.com/robotalks/uartsync/pkg/uart"
)

func TestFrameEventTyped(t *testing.T) {
	ts := time.Unix(1500, 42)
	ev := NewFrameEvent(&frame.Frame{Seq: 7, Time: ts, Data: []byte{1, 2, 3}})
	data, err := Marshal(ev)
	require.NoError(t, err)
	msg, err := Unmarshal(data)
	require.NoError(t, err)
	got, ok := msg.(*FrameEvent)
	require.True(t, ok)
	require.Equal(t, uint64(7), got.Seq)
	require.Equal(t, []byte{1, 2, 3}, got.Data)
	require.True(t, ts.Equal(got.Time()))
}

func TestUnknownType(t *testing.T) {
	data, err := proto.Marshal(&Typed{TypeId: 0x1234})
	require.NoError(t, err)
	_, err = Unmarshal(data)
	require.Equal(t, &ErrUnknownType{TypeID: 0x1234}, err)
	require.Equal(t, "unknown type: 1234", err.Error())

	_, err = Marshal(&Typed{})
	require.Error(t, err)
}

func TestNewCounters(t *testing.T) {
	layout, err := frame.NewLayout([]byte{0xaa, 0x55}, 2, "CRC-8")
	require.NoError(t, err)
	port := uart.NewPort()
	dec := frame.NewDecoder(layout, nil)
	rx, err := rxsync.New(port, dec, layout.FrameLen())
	require.NoError(t, err)
	port.Bind(rx)
	require.NoError(t, rx.Start())

	b, err := layout.Encode([]byte{1, 2})
	require.NoError(t, err)
	port.Feed(b)
	b[2] ^= 0xff
	port.Feed(b)

	c := NewCounters(Sources{Receiver: rx, Decoder: dec, Port: port}, time.Unix(10, 0))
	require.Equal(t, "DMAActive", c.State)
	require.True(t, c.Connected)
	require.Equal(t, uint64(2), c.FramesReceived)
	require.Equal(t, uint64(1), c.DecodeOk)
	require.Equal(t, uint64(1), c.DecodeFailed)
	require.Equal(t, uint64(1), c.BadChecksum)
	require.Equal(t, uint64(10), c.BytesReceived)
	require.Equal(t, int64(10e9), c.Timestamp)

	data, err := Marshal(c)
	require.NoError(t, err)
	msg, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, proto.Equal(c, msg))

	empty := NewCounters(Sources{}, time.Unix(0, 0))
	require.Equal(t, "", empty.State)
}
