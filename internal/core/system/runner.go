package system

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order on a fixed cadence, independent of
// any read loop.
type Runner struct {
	systems []System
	sorted  bool
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 4),
		log:     log,
	}
}

// Register adds s. Not safe to call concurrently with Tick or Run.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once. A panicking system is logged and skipped;
// the rest of the tick proceeds.
func (r *Runner) Tick(ctx context.Context, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.update(ctx, s, dt)
	}
}

// Run ticks every interval until ctx is done.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Tick(ctx, now.Sub(last))
			last = now
			if took := time.Since(now); took > interval {
				r.log.Warn("periodic tick overran its interval",
					zap.Duration("took", took),
					zap.Duration("interval", interval),
				)
			}
		}
	}
}

func (r *Runner) update(ctx context.Context, s System, dt time.Duration) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("system panic recovered",
				zap.String("system", s.Name()),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
		}
	}()
	s.Update(ctx, dt)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
