package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerCollectsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	r := NewRunner()
	r.Go(
		RunnableFunc(func(context.Context) error { return errA }),
		NamedRun("b", RunnableFunc(func(context.Context) error { return errB })),
		RunnableFunc(func(context.Context) error { return nil }),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errB))
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Len(t, agg.Errors, 2)
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestRunnerStopOnError(t *testing.T) {
	failure := errors.New("port closed")
	r := NewRunner()
	r.StopOnError = true
	r.Go(
		RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		RunnableFunc(func(context.Context) error { return failure }),
	)
	err := r.Wait()
	require.True(t, errors.Is(err, failure))
	require.Equal(t, "port closed", err.Error())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	errs.Add(errors.New("x"))
	require.Equal(t, "x", errs.Aggregate().Error())
	errs.Add(errors.New("y"))
	require.Equal(t, "Multiple errors:\nx\ny", errs.Aggregate().Error())
}

func TestPeriodic(t *testing.T) {
	var count atomic.Int32
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	err := Every(10*time.Millisecond, func(time.Time) { count.Add(1) }).Run(ctx)
	require.Equal(t, context.DeadlineExceeded, err)
	require.True(t, count.Load() >= 2)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, Every(0, nil).Run(ctx))
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	go cancel()
	err := RunWithContextCancel(ctx, func() { close(release) }, func() error {
		<-release
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.NoError(t, RunWithContext(context.Background(), func() error { return nil }))
}
