package handler

import (
	"context"
	"time"

	"github.com/lofbot/client/internal/core/system"
	"github.com/lofbot/client/internal/world"
	"go.uber.org/zap"
)

// NameRequestTTL is how long a name request may go unanswered before it is
// dropped and the being becomes eligible for a fresh request.
const NameRequestTTL = time.Minute

// NamePruner drops name requests the server never answered.
type NamePruner struct {
	names *world.Names
	ttl   time.Duration
	log   *zap.Logger
}

func NewNamePruner(names *world.Names, ttl time.Duration, log *zap.Logger) *NamePruner {
	return &NamePruner{names: names, ttl: ttl, log: log}
}

func (p *NamePruner) Name() string        { return "name-pruner" }
func (p *NamePruner) Phase() system.Phase { return system.PhaseUpkeep }

func (p *NamePruner) Update(_ context.Context, _ time.Duration) {
	if n := p.names.Prune(p.ttl); n > 0 {
		p.log.Debug("stale name requests dropped", zap.Int("count", n))
	}
}
