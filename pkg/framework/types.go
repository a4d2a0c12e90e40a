package framework

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Periodic calls fn every interval until the context is done.
type Periodic struct {
	Interval time.Duration
	Func     func(time.Time)
}

// Every creates a Periodic.
func Every(interval time.Duration, fn func(time.Time)) *Periodic {
	return &Periodic{Interval: interval, Func: fn}
}

// Run implements Runnable.
func (p *Periodic) Run(ctx context.Context) error {
	if p.Interval <= 0 {
		glog.V(4).Info("periodic runner disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			p.Func(t)
		}
	}
}
