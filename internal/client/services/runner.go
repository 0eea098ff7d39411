package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophpos/internal/client/netwatch"
)

// runner drives a background job on a fixed interval and on every
// offline->online transition. Triggers that arrive while the job runs are
// coalesced into one follow-up run.
type runner struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	unsub  func()
}

// start launches the loop unless it is already running. tick runs on the
// interval; reconnect runs on every transition to online.
func (r *runner) start(ctx context.Context, net netwatch.Status, interval time.Duration, tick, reconnect func(ctx context.Context)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	trigger := make(chan struct{}, 1)
	r.unsub = net.Subscribe(func(online bool) {
		if !online {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	r.cancel = cancel
	r.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		tick(ctx)
		for {
			select {
			case <-ticker.C:
				tick(ctx)
			case <-trigger:
				reconnect(ctx)
			case <-ctx.Done():
				return
			}
		}
	}(r.done)
	return true
}

// stop unsubscribes, cancels the loop and waits for it to exit.
func (r *runner) stop() {
	r.mu.Lock()
	if r.cancel == nil {
		r.mu.Unlock()
		return
	}
	r.unsub()
	r.cancel()
	done := r.done
	r.cancel, r.done, r.unsub = nil, nil, nil
	r.mu.Unlock()

	<-done
}
