package handler

import (
	"context"
	"sync"
	"time"

	"github.com/lofbot/client/internal/core/system"
	"github.com/lofbot/client/internal/data"
	"go.uber.org/zap"
)

// ProbeTarget is the connection the emote ping runs over.
type ProbeTarget interface {
	AccountID() uint32
	SendEmote(id uint8) error
	// Disconnect drops a connection that stopped answering.
	Disconnect()
}

// Probe measures server lag by sending an emote no client draws and timing
// the echo of our own emote. A probe still unanswered one interval later
// means the connection is dead.
type Probe struct {
	mu      sync.Mutex
	target  ProbeTarget
	sent    time.Time
	waiting bool
	lag     time.Duration
	hasLag  bool
	now     func() time.Time
	log     *zap.Logger
}

func NewProbe(target ProbeTarget, log *zap.Logger) *Probe {
	return &Probe{target: target, now: time.Now, log: log}
}

func (p *Probe) Name() string        { return "emote-ping" }
func (p *Probe) Phase() system.Phase { return system.PhaseProbe }

// Update sends the next probe, first dropping the connection if the last
// one was never echoed.
func (p *Probe) Update(_ context.Context, _ time.Duration) {
	p.mu.Lock()
	timedOut := p.waiting
	p.waiting = true
	p.sent = p.now()
	p.mu.Unlock()

	if timedOut {
		p.log.Warn("emote ping timed out")
		p.target.Disconnect()
	}

	if err := p.target.SendEmote(data.ProbeEmote); err != nil {
		// no connection right now; try again next tick
		p.mu.Lock()
		p.waiting = false
		p.mu.Unlock()
		p.log.Debug("emote ping not sent", zap.Error(err))
	}
}

// Reset forgets an unanswered ping emote. A new connection must not inherit
// the one sent on the connection it replaced.
func (p *Probe) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiting = false
	p.sent = time.Time{}
}

// Check consumes an emote event. It reports true when the emote was the
// echo of our probe.
func (p *Probe) Check(beingID uint32, emoteID uint8) bool {
	if emoteID != data.ProbeEmote || beingID != p.target.AccountID() {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.waiting {
		p.lag = p.now().Sub(p.sent)
		p.hasLag = true
		p.waiting = false
	}
	return true
}

// Lag returns the last measured round trip.
func (p *Probe) Lag() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lag, p.hasLag
}
