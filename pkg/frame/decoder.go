package frame

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// Frame is a verified frame.
type Frame struct {
	Seq  uint64
	Time time.Time
	Data []byte
}

// Sink receives decoded frames. HandleFrame runs inside the receiver's
// read window and must not block.
type Sink interface {
	HandleFrame(*Frame)
}

// SinkFunc is func type of Sink.
type SinkFunc func(*Frame)

// HandleFrame implements Sink.
func (f SinkFunc) HandleFrame(fr *Frame) {
	f(fr)
}

// Sinks fans out to multiple sinks.
type Sinks []Sink

// HandleFrame implements Sink.
func (s Sinks) HandleFrame(fr *Frame) {
	for _, sink := range s {
		sink.HandleFrame(fr)
	}
}

// DecoderStats is a snapshot of the Decoder counters.
type DecoderStats struct {
	Accepted    uint64
	BadLength   uint64
	BadChecksum uint64
}

// Decoder implements rxsync.Framer for a Layout.
type Decoder struct {
	layout Layout
	sink   Sink
	now    func() time.Time

	seq         atomic.Uint64
	badLength   atomic.Uint64
	badChecksum atomic.Uint64
}

// NewDecoder creates a Decoder delivering to sink, which may be nil.
func NewDecoder(layout Layout, sink Sink) *Decoder {
	return &Decoder{layout: layout, sink: sink, now: time.Now}
}

// Layout returns the frame layout.
func (d *Decoder) Layout() Layout {
	return d.layout
}

// Header implements rxsync.Framer.
func (d *Decoder) Header() []byte {
	return d.layout.Header
}

// Decode implements rxsync.Framer.
func (d *Decoder) Decode(payload []byte) bool {
	data, err := d.layout.Verify(payload)
	if err != nil {
		if errors.Is(err, ErrChecksum) {
			d.badChecksum.Add(1)
		} else {
			d.badLength.Add(1)
		}
		if glog.V(2) {
			glog.Infof("frame: rejected: %v", err)
		}
		return false
	}
	seq := d.seq.Add(1)
	if d.sink != nil {
		d.sink.HandleFrame(&Frame{
			Seq:  seq,
			Time: d.now(),
			Data: append([]byte(nil), data...),
		})
	}
	return true
}

// Stats returns a snapshot of the counters.
func (d *Decoder) Stats() DecoderStats {
	return DecoderStats{
		Accepted:    d.seq.Load(),
		BadLength:   d.badLength.Load(),
		BadChecksum: d.badChecksum.Load(),
	}
}
