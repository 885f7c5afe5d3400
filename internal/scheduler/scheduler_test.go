package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func Test_RunsOnStartupWhenConfigured(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())

	s := New(time.Hour, true, func(ctx context.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			cancel()
		}
	}, hclog.NewNullLogger())

	s.Start(ctx)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func Test_SkipsStartupRunWhenNotConfigured(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before Start so the ticker branch never fires either

	s := New(time.Hour, false, func(ctx context.Context) {
		atomic.AddInt32(&calls, 1)
	}, hclog.NewNullLogger())

	s.Start(ctx)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func Test_OverrunningRunDefersNextRunInsteadOfSkippingIt(t *testing.T) {
	const interval = 100 * time.Millisecond

	var firstDone, secondStart time.Time
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(interval, false, func(ctx context.Context) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			time.Sleep(5 * interval / 2)
			firstDone = time.Now()
		case 2:
			secondStart = time.Now()
			cancel()
		}
	}, hclog.NewNullLogger())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}

	// The tick owed from the overrun fires immediately once the first run
	// completes, well before a full interval has elapsed.
	require.Less(t, secondStart.Sub(firstDone), interval)
}

func Test_PeriodicRunsRepeatOnEveryTick(t *testing.T) {
	var calls int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(5*time.Millisecond, false, func(ctx context.Context) {
		n := atomic.AddInt32(&calls, 1)
		if n >= 2 {
			cancel()
		}
	}, hclog.NewNullLogger())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
	require.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}
