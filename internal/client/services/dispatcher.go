package services

import (
	"context"
	"sync"
	"time"
)

// Dispatcher decides how the remote half of a mutation runs.
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, call func(context.Context) error) error
	// Wait blocks until every dispatched call has finished.
	Wait()
}

// InlineDispatcher runs the call before returning and hands back its error.
type InlineDispatcher struct{}

func (InlineDispatcher) Dispatch(ctx context.Context, _ string, call func(context.Context) error) error {
	return call(ctx)
}

func (InlineDispatcher) Wait() {}

// BackgroundDispatcher runs each call in its own goroutine. The caller's
// cancellation does not reach the call; Timeout bounds it instead.
type BackgroundDispatcher struct {
	Timeout time.Duration
	wg      sync.WaitGroup
}

func NewBackgroundDispatcher(timeout time.Duration) *BackgroundDispatcher {
	return &BackgroundDispatcher{Timeout: timeout}
}

// Dispatch always returns nil; failures are handled inside call.
func (d *BackgroundDispatcher) Dispatch(ctx context.Context, _ string, call func(context.Context) error) error {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.Timeout)
			defer cancel()
		}
		_ = call(ctx)
	}()
	return nil
}

func (d *BackgroundDispatcher) Wait() {
	d.wg.Wait()
}
