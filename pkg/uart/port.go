package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/rxsync"
)

// Handler receives reception events. It is called with no Port lock held,
// so it may arm the next reception.
type Handler interface {
	OnBytesArrived()
	OnLineError()
}

type xferMode int

const (
	xferIdle xferMode = iota
	xferByte
	xferOnce
	xferLoop
)

func (m xferMode) String() string {
	switch m {
	case xferByte:
		return "byte"
	case xferOnce:
		return "once"
	case xferLoop:
		return "loop"
	}
	return "idle"
}

// Stats is a snapshot of the Port counters.
type Stats struct {
	Received uint64
	// Dropped counts bytes that arrived with no reception armed.
	Dropped     uint64
	Completions uint64
	Faults      uint64
}

// Port implements rxsync.Driver in software.
type Port struct {
	// ReadSize is the chunk size used by Run.
	ReadSize int

	handler  Handler
	circular bool

	// delivery serializes callbacks like interrupts on a single core.
	delivery sync.Mutex
	lock     sync.Mutex
	buf      []byte
	mode     xferMode
	off      int
	n        int
	pos      int
	faults   rxsync.Fault

	received    atomic.Uint64
	dropped     atomic.Uint64
	completions atomic.Uint64
	faultCount  atomic.Uint64
}

// NewPort creates a Port with a circular block engine.
func NewPort() *Port {
	return &Port{ReadSize: 256, circular: true}
}

// Bind attaches the Handler.
func (p *Port) Bind(h Handler) {
	p.lock.Lock()
	p.handler = h
	p.lock.Unlock()
}

// SetCircular configures whether looped transfers restart by themselves.
func (p *Port) SetCircular(circular bool) {
	p.lock.Lock()
	p.circular = circular
	p.lock.Unlock()
}

// Bound implements rxsync.Driver.
func (p *Port) Bound() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.handler != nil
}

// Circular implements rxsync.Driver.
func (p *Port) Circular() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.circular
}

// ReceiveByte implements rxsync.Driver.
func (p *Port) ReceiveByte(buf []byte, offset int) error {
	return p.arm(xferByte, buf, offset, 1)
}

// ReceiveOnce implements rxsync.Driver.
func (p *Port) ReceiveOnce(buf []byte, offset, n int) error {
	return p.arm(xferOnce, buf, offset, n)
}

// ReceiveLoop implements rxsync.Driver.
func (p *Port) ReceiveLoop(buf []byte, n int) error {
	return p.arm(xferLoop, buf, 0, n)
}

func (p *Port) arm(mode xferMode, buf []byte, offset, n int) error {
	if offset < 0 || n <= 0 || offset+n > len(buf) {
		return fmt.Errorf("%w: %s %d+%d of %d", ErrBounds, mode, offset, n, len(buf))
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.handler == nil {
		return ErrNoHandler
	}
	p.buf, p.mode, p.off, p.n, p.pos = buf, mode, offset, n, 0
	return nil
}

// Abort implements rxsync.Driver.
func (p *Port) Abort() error {
	p.lock.Lock()
	p.mode = xferIdle
	p.lock.Unlock()
	return nil
}

// Faults implements rxsync.Driver.
func (p *Port) Faults() rxsync.Fault {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.faults
}

// ClearFaults implements rxsync.Driver.
func (p *Port) ClearFaults() {
	p.lock.Lock()
	p.faults = rxsync.FaultNone
	p.lock.Unlock()
}

// Stats returns a snapshot of the counters.
func (p *Port) Stats() Stats {
	return Stats{
		Received:    p.received.Load(),
		Dropped:     p.dropped.Load(),
		Completions: p.completions.Load(),
		Faults:      p.faultCount.Load(),
	}
}

// Do runs fn with deliveries held off, like code running with interrupts
// disabled. fn must not call Feed or SignalFault.
func (p *Port) Do(fn func()) {
	p.delivery.Lock()
	defer p.delivery.Unlock()
	fn()
}

// Feed delivers bytes as if they arrived on the line.
func (p *Port) Feed(data []byte) {
	p.delivery.Lock()
	defer p.delivery.Unlock()
	for _, b := range data {
		p.receive(b)
	}
}

func (p *Port) receive(b byte) {
	p.received.Add(1)
	complete := false
	p.lock.Lock()
	switch p.mode {
	case xferByte:
		p.buf[p.off] = b
		p.mode = xferIdle
		complete = true
	case xferOnce:
		p.buf[p.off+p.pos] = b
		if p.pos++; p.pos == p.n {
			p.mode = xferIdle
			complete = true
		}
	case xferLoop:
		p.buf[p.pos] = b
		if p.pos++; p.pos == p.n {
			p.pos = 0
			if !p.circular {
				p.mode = xferIdle
			}
			complete = true
		}
	default:
		p.dropped.Add(1)
	}
	h := p.handler
	p.lock.Unlock()
	if complete {
		p.completions.Add(1)
		if h != nil {
			h.OnBytesArrived()
		}
	}
}

// SignalFault raises line faults. Any armed reception is aborted.
func (p *Port) SignalFault(f rxsync.Fault) {
	if f == rxsync.FaultNone {
		return
	}
	p.delivery.Lock()
	defer p.delivery.Unlock()
	p.faultCount.Add(1)
	p.lock.Lock()
	p.faults |= f
	p.mode = xferIdle
	h := p.handler
	p.lock.Unlock()
	if h != nil {
		h.OnLineError()
	}
}

// Run reads from r and delivers until r is exhausted or ctx is done.
// A *FaultError from r raises the faults and reading continues.
func (p *Port) Run(ctx context.Context, r io.Reader) error {
	eventCh, errCh := make(chan lineEvent), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.readLoop(subCtx, r, eventCh, errCh)
	for {
		select {
		case ev := <-eventCh:
			if ev.data != nil {
				p.Feed(ev.data)
			} else {
				p.SignalFault(ev.faults)
			}
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				glog.V(1).Info("uart: end of stream")
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// lineEvent carries either data or faults, keeping their order.
type lineEvent struct {
	data   []byte
	faults rxsync.Fault
}

func (p *Port) readLoop(ctx context.Context, r io.Reader, eventCh chan lineEvent, errCh chan error) {
	send := func(ev lineEvent) bool {
		select {
		case eventCh <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	size := p.ReadSize
	if size <= 0 {
		size = 256
	}
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 && !send(lineEvent{data: append([]byte(nil), buf[:n]...)}) {
			return
		}
		var fe *FaultError
		switch {
		case err == nil:
		case errors.As(err, &fe):
			if fe.Faults != rxsync.FaultNone && !send(lineEvent{faults: fe.Faults}) {
				return
			}
		case os.IsTimeout(err):
		default:
			errCh <- err
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
