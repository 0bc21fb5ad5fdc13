package handler

import (
	"context"
	"time"

	"github.com/lofbot/client/internal/net/packet"
	"go.uber.org/zap"
)

const sightingTimeout = 5 * time.Second

// HandleEmote processes S_EMOTE: feed the lag probe and make sure the
// emoting being gets a name.
func HandleEmote(ev packet.Emote, deps *Deps) {
	if deps.Probe != nil && deps.Probe.Check(ev.BeingID, ev.EmoteID) {
		return
	}
	emote := deps.Emotes.Name(ev.EmoteID)
	name, known := deps.Names.Lookup(ev.BeingID)
	if known {
		deps.Log.Debug("emote", zap.String("being", name), zap.String("emote", emote))
		return
	}
	deps.Log.Debug("emote", zap.Uint32("being", ev.BeingID), zap.String("emote", emote))
	whois(ev.BeingID, deps)
}

// HandleNameResponse processes both S_NAME_RES variants.
func HandleNameResponse(ev packet.NameResponse, deps *Deps) {
	deps.Log.Debug("name resolved", zap.Uint32("being", ev.BeingID), zap.String("name", ev.Name))
	learnName(ev.BeingID, ev.Name, deps)
}

// HandleRemove processes S_REMOVE.
func HandleRemove(ev packet.BeingRemoved, deps *Deps) {
	what := "removed"
	if ev.Died {
		what = "died"
	}
	fields := []zap.Field{zap.Uint32("being", ev.BeingID)}
	if name, ok := deps.Names.Lookup(ev.BeingID); ok {
		fields = append(fields, zap.String("name", name))
	}
	deps.Log.Debug("being "+what, fields...)
	deps.Names.Forget(ev.BeingID)
}

// whois requests the name of id unless a request is already pending.
func whois(id uint32, deps *Deps) {
	if !deps.Names.Resolve(id, func(string) {}) {
		return
	}
	if err := deps.Bot.RequestName(id); err != nil {
		deps.Names.Cancel(id)
		deps.Log.Debug("name request failed", zap.Uint32("being", id), zap.Error(err))
	}
}

func learnName(id uint32, name string, deps *Deps) {
	if name == "" {
		deps.Names.Cancel(id)
		return
	}
	deps.Names.Store(id, name)
	if deps.Sightings == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sightingTimeout)
	defer cancel()
	if err := deps.Sightings.Record(ctx, name, id); err != nil {
		deps.Log.Warn("record sighting failed", zap.String("name", name), zap.Error(err))
	}
}
