package service

import (
	"context"
	"time"
)

// Delayer simulates remote latency. Implementations must return early with
// ctx.Err() when the context ends first.
type Delayer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// DelayFunc adapts a function to Delayer
type DelayFunc func(ctx context.Context, d time.Duration) error

func (f DelayFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerDelayer waits on a real timer
type TimerDelayer struct{}

func (TimerDelayer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay returns immediately
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
