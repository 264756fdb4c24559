// Package loop provides the scheduling primitives of the control core: named
// fixed-rate runners, snapshot cells for cross-task state exchange and the
// single-slot latest-value hand-off between the inference and control tasks.
package loop

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
)

// Runner invokes fn at a fixed period on its own goroutine. Ticks never
// overlap; a tick that overruns simply delays the next one. Cancellation via
// the start context finishes the in-flight tick and issues no further ones.
type Runner struct {
	name   string
	period time.Duration
	fn     func()
	log    golog.Logger

	wg sync.WaitGroup
}

func NewRunner(name string, period time.Duration, fn func(), log golog.Logger) *Runner {
	return &Runner{name: name, period: period, fn: fn, log: log}
}

// Start launches the loop. It returns immediately.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.period)
		defer ticker.Stop()
		if r.log != nil {
			r.log.Debugf("loop %s started, period %s", r.name, r.period)
		}
		for {
			select {
			case <-ctx.Done():
				if r.log != nil {
					r.log.Debugf("loop %s stopped", r.name)
				}
				return
			case <-ticker.C:
				r.fn()
			}
		}
	}()
}

// Wait blocks until the loop goroutine has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}
