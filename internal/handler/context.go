package handler

import (
	"context"

	"github.com/lofbot/client/internal/data"
	"github.com/lofbot/client/internal/net/packet"
	"github.com/lofbot/client/internal/scripting"
	"github.com/lofbot/client/internal/world"
	"go.uber.org/zap"
)

// Bot is the connected client the handlers act for.
type Bot interface {
	scripting.API
	// AccountID is also our being id on the map server.
	AccountID() uint32
	RequestName(beingID uint32) error
}

// Commands evaluates whisper commands and chat hooks.
type Commands interface {
	Evaluate(api scripting.API, nick, msg string) string
	Chat(api scripting.API, speaker, text string)
}

// SightingRecorder persists name resolutions.
type SightingRecorder interface {
	Record(ctx context.Context, name string, beingID uint32) error
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Bot       Bot
	ChatAPI   scripting.API    // bot chat hooks run for; nil = Bot
	Names     *world.Names     // shared by every bot of the process
	Commands  Commands         // nil = whispers are only logged
	Sightings SightingRecorder // nil = no database
	Probe     *Probe
	Emotes    *data.EmoteTable
	Log       *zap.Logger
}

func (d *Deps) chatAPI() scripting.API {
	if d.ChatAPI != nil {
		return d.ChatAPI
	}
	return d.Bot
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Chat
	packet.On(reg, "S_WHISPER", func(ev packet.Whisper) {
		HandleWhisper(ev, deps)
	})
	packet.On(reg, "S_NORM_MSG", func(ev packet.NormalMessage) {
		HandleNormalMessage(ev, deps)
	})
	packet.On(reg, "S_OTHER_MSG", func(ev packet.ServerMessage) {
		HandleServerMessage(ev, deps)
	})

	// Beings
	packet.On(reg, "S_EMOTE", func(ev packet.Emote) {
		HandleEmote(ev, deps)
	})
	packet.On(reg, "S_NAME_RES", func(ev packet.NameResponse) {
		HandleNameResponse(ev, deps)
	})
	packet.On(reg, "S_NAME_RES2", func(ev packet.NameResponse) {
		HandleNameResponse(ev, deps)
	})
	packet.On(reg, "S_REMOVE", func(ev packet.BeingRemoved) {
		HandleRemove(ev, deps)
	})

	// Connection
	packet.On(reg, "S_PING", func(ev packet.PingResponse) {
		HandlePing(ev, deps)
	})
	packet.On(reg, "S_CONNECTION_ERROR", func(ev packet.ConnectionError) {
		HandleConnectionError(ev, deps)
	})
	reg.RegisterUnknown(func(id uint16, frame []byte) {
		HandleUnknown(id, frame, deps)
	})
}
