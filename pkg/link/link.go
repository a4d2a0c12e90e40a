// Package link assembles a receive path from a Config: software port,
// frame synchronization receiver, frame decoder and sinks.
package link

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/config"
	"github.com/robotalks/uartsync/pkg/diag"
	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/rxsync"
	"github.com/robotalks/uartsync/pkg/uart"
	"github.com/robotalks/uartsync/pkg/watchdog"
)

// Link is a receive path.
type Link struct {
	Layout   frame.Layout
	Port     *uart.Port
	Receiver *rxsync.Receiver
	Decoder  *frame.Decoder
	Watchdog *watchdog.Watchdog

	sinkLock sync.RWMutex
	sinks    frame.Sinks
}

// New creates a Link from c.
func New(c *config.Config) (*Link, error) {
	layout, err := c.Layout()
	if err != nil {
		return nil, err
	}
	l := &Link{
		Layout:   layout,
		Port:     uart.NewPort(),
		Watchdog: watchdog.New(c.Liveness),
	}
	l.Decoder = frame.NewDecoder(layout, frame.SinkFunc(l.dispatch))
	opts := []rxsync.Option{rxsync.WithWatchdog(l.Watchdog)}
	if window := c.ReadWindow(); window > 0 {
		opts = append(opts, rxsync.WithReadWindow(window))
	}
	if l.Receiver, err = rxsync.New(l.Port, l.Decoder, layout.FrameLen(), opts...); err != nil {
		return nil, err
	}
	l.Port.Bind(l.Receiver)
	return l, nil
}

// AddSink adds a destination of decoded frames.
func (l *Link) AddSink(sinks ...frame.Sink) {
	l.sinkLock.Lock()
	l.sinks = append(l.sinks, sinks...)
	l.sinkLock.Unlock()
}

func (l *Link) dispatch(f *frame.Frame) {
	l.sinkLock.RLock()
	sinks := l.sinks
	l.sinkLock.RUnlock()
	sinks.HandleFrame(f)
}

// Start starts the receiver.
func (l *Link) Start() (err error) {
	l.Port.Do(func() { err = l.Receiver.Start() })
	return
}

// Stop stops the receiver.
func (l *Link) Stop() {
	l.Port.Do(l.Receiver.Stop)
}

// Resync restarts header hunting.
func (l *Link) Resync() (err error) {
	l.Port.Do(func() {
		l.Receiver.Stop()
		err = l.Receiver.Start()
	})
	return
}

// Control executes a control command: start, stop or resync.
func (l *Link) Control(cmd string) error {
	switch cmd {
	case "start":
		return l.Start()
	case "stop":
		l.Stop()
		return nil
	case "resync":
		return l.Resync()
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// Counters takes a snapshot of all counters.
func (l *Link) Counters() *diag.Counters {
	return diag.NewCounters(diag.Sources{
		Receiver: l.Receiver,
		Decoder:  l.Decoder,
		Port:     l.Port,
	}, time.Now())
}

// Run starts the receiver and feeds it from r until r ends or ctx is done.
func (l *Link) Run(ctx context.Context, r io.Reader) error {
	if err := l.Start(); err != nil {
		return err
	}
	glog.Infof("link: %s", l.Layout)
	defer l.Stop()
	return l.Port.Run(ctx, r)
}
