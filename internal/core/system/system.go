package system

import (
	"context"
	"time"
)

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseProbe  Phase = iota // 0: liveness probes
	PhaseUpkeep              // 1: cache and store housekeeping
)

// System is one periodic task. Update must not block for long; it runs on
// the runner goroutine and a slow Update delays every later system.
type System interface {
	Name() string
	Phase() Phase
	Update(ctx context.Context, dt time.Duration)
}
