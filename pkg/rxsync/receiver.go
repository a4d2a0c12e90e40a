package rxsync

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/watchdog"
)

// DefaultLiveness is the watchdog timeout used when none is supplied.
const DefaultLiveness = 100 * time.Millisecond

// Receiver synchronizes to a header delimited frame stream.
type Receiver struct {
	drv      Driver
	framer   Framer
	watchdog Watchdog
	window   time.Duration
	now      func() time.Time

	header []byte
	buf    []byte
	hdrIdx int
	// bytes hunted since entering WaitHead, saturating at the header length
	hunted int
	state  atomic.Int32

	counters counters
}

// Option customizes a Receiver.
type Option func(*Receiver)

// WithWatchdog uses w to track liveness.
func WithWatchdog(w Watchdog) Option {
	return func(r *Receiver) { r.watchdog = w }
}

// WithReadWindow enables the decode latency guard. Use HeaderWindow to
// derive d from the line rate.
func WithReadWindow(d time.Duration) Option {
	return func(r *Receiver) { r.window = d }
}

// WithClock replaces the clock used to time decodes.
func WithClock(now func() time.Time) Option {
	return func(r *Receiver) { r.now = now }
}

// HeaderWindow is the time the line needs to deliver headerLen bytes.
// bitsPerByte includes start, parity and stop bits, e.g. 10 for 8N1.
func HeaderWindow(baud, headerLen, bitsPerByte int) time.Duration {
	if baud <= 0 {
		return 0
	}
	return time.Duration(headerLen*bitsPerByte) * time.Second / time.Duration(baud)
}

// New creates a Receiver for frames of frameLen bytes, the header included.
func New(drv Driver, framer Framer, frameLen int, opts ...Option) (*Receiver, error) {
	hdr := framer.Header()
	if len(hdr) == 0 || len(hdr) >= frameLen {
		return nil, fmt.Errorf("%w: header %d, frame %d", ErrFrameLength, len(hdr), frameLen)
	}
	r := &Receiver{
		drv:    drv,
		framer: framer,
		now:    time.Now,
		header: append([]byte(nil), hdr...),
		buf:    make([]byte, frameLen),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.watchdog == nil {
		r.watchdog = watchdog.New(DefaultLiveness)
	}
	return r, nil
}

// HeaderLen returns the header length.
func (r *Receiver) HeaderLen() int { return len(r.header) }

// FrameLen returns the frame length.
func (r *Receiver) FrameLen() int { return len(r.buf) }

// PayloadLen returns the number of bytes passed to Decode.
func (r *Receiver) PayloadLen() int { return len(r.buf) - len(r.header) }

// State returns the current state.
func (r *Receiver) State() SyncState {
	return SyncState(r.state.Load())
}

// Stats returns a snapshot of the counters.
func (r *Receiver) Stats() Stats {
	return r.counters.snapshot()
}

// IsConnected reports whether frames are flowing and decoding.
func (r *Receiver) IsConnected() bool {
	return r.State() == DMAActive && r.watchdog.IsFed()
}

// Start validates the driver and starts hunting for the header.
func (r *Receiver) Start() error {
	if r.drv == nil || !r.drv.Bound() {
		return ErrNoChannel
	}
	if !r.drv.Circular() {
		return ErrNotCircular
	}
	if r.State() != Stopped {
		return ErrAlreadyStarted
	}
	r.hdrIdx, r.hunted = 0, 0
	r.setState(WaitHead)
	if err := r.drv.ReceiveByte(r.buf, 0); err != nil {
		r.setState(Stopped)
		return fmt.Errorf("arm byte reception: %w", err)
	}
	glog.Infof("rxsync: started, header % x, frame %d bytes", r.header, len(r.buf))
	return nil
}

// Stop aborts reception.
func (r *Receiver) Stop() {
	if r.State() == Stopped {
		return
	}
	r.setState(Stopped)
	r.abort()
	r.hdrIdx, r.hunted = 0, 0
	glog.Info("rxsync: stopped")
}

// OnBytesArrived is called by the driver when an armed reception completes.
func (r *Receiver) OnBytesArrived() {
	switch r.State() {
	case WaitHead:
		r.scanHeader()
	case Receiving:
		r.counters.framesReceived.Add(1)
		r.abort()
		// Rearm before decoding: the first HeaderLen bytes of the next frame
		// land in the header region while Decode reads the payload.
		if err := r.drv.ReceiveLoop(r.buf, len(r.buf)); err != nil {
			glog.Warningf("rxsync: arm looped reception: %v", err)
			r.resync()
			return
		}
		r.setState(DMAActive)
		r.decode()
	case DMAActive:
		r.counters.framesReceived.Add(1)
		if !bytes.Equal(r.buf[:len(r.header)], r.header) {
			r.counters.headerErrors.Add(1)
			if glog.V(2) {
				glog.Infof("rxsync: header mismatch % x, resync", r.buf[:len(r.header)])
			}
			r.resync()
			return
		}
		r.decode()
	}
}

// OnLineError is called by the driver when it flags a reception fault.
func (r *Receiver) OnLineError() {
	if r.drv == nil {
		return
	}
	faults := r.drv.Faults()
	if faults == FaultNone {
		return
	}
	r.counters.lineErrors.Add(1)
	glog.V(1).Infof("rxsync: line fault %s in %s, resync", faults, r.State())
	r.drv.ClearFaults()
	r.resync()
}

func (r *Receiver) scanHeader() {
	hl := len(r.header)
	next := r.hdrIdx + 1
	if next == hl {
		next = 0
	}
	if r.hunted < hl {
		r.hunted++
	}
	// The window holds stale bytes until a full header length has been
	// hunted. Only the last header byte can complete a match.
	if r.hunted == hl && r.buf[r.hdrIdx] == r.header[hl-1] && r.matchWindow(next) {
		r.counters.headerMatches.Add(1)
		r.hdrIdx, r.hunted = 0, 0
		r.setState(Receiving)
		if err := r.drv.ReceiveOnce(r.buf, hl, len(r.buf)-hl); err != nil {
			glog.Warningf("rxsync: arm payload reception: %v", err)
			r.resync()
		}
		return
	}
	r.hdrIdx = next
	if err := r.drv.ReceiveByte(r.buf, next); err != nil {
		glog.Warningf("rxsync: arm byte reception: %v", err)
		r.resync()
	}
}

// matchWindow compares the circular header window, whose oldest byte is
// at oldest, against the header.
func (r *Receiver) matchWindow(oldest int) bool {
	hl := len(r.header)
	head := hl - oldest
	return bytes.Equal(r.buf[oldest:hl], r.header[:head]) &&
		bytes.Equal(r.buf[:oldest], r.header[head:])
}

func (r *Receiver) decode() {
	payload := r.buf[len(r.header):len(r.buf):len(r.buf)]
	var start time.Time
	if r.window > 0 {
		start = r.now()
	}
	ok := r.framer.Decode(payload)
	if r.window > 0 {
		if elapsed := r.now().Sub(start); elapsed > r.window {
			r.counters.decodeOverruns.Add(1)
			glog.Warningf("rxsync: decode took %v, read window is %v", elapsed, r.window)
		}
	}
	if ok {
		r.watchdog.Feed()
		r.counters.decodeOK.Add(1)
	} else {
		r.counters.decodeFailed.Add(1)
	}
}

// resync restarts header hunting. A driver that cannot be rearmed leaves
// the receiver Stopped, Start brings it back.
func (r *Receiver) resync() {
	r.abort()
	r.hdrIdx, r.hunted = 0, 0
	r.setState(WaitHead)
	if err := r.drv.ReceiveByte(r.buf, 0); err != nil {
		r.counters.rearmFailures.Add(1)
		r.setState(Stopped)
		r.abort()
		glog.Errorf("rxsync: rearm byte reception: %v, stopped", err)
	}
}

func (r *Receiver) abort() {
	if err := r.drv.Abort(); err != nil {
		glog.Warningf("rxsync: abort: %v", err)
	}
}

func (r *Receiver) setState(s SyncState) {
	if old := SyncState(r.state.Swap(int32(s))); old != s && glog.V(2) {
		glog.Infof("rxsync: %s -> %s", old, s)
	}
}
