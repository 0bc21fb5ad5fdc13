package handler

import (
	"strings"

	"github.com/lofbot/client/internal/net/packet"
	"go.uber.org/zap"
)

// HandleWhisper processes S_WHISPER: run it as a command and whisper each
// reply line back to the sender.
func HandleWhisper(ev packet.Whisper, deps *Deps) {
	deps.Log.Info("whisper", zap.String("from", ev.Sender), zap.String("text", ev.Text))
	if deps.Commands == nil {
		return
	}

	reply := deps.Commands.Evaluate(deps.Bot, ev.Sender, ev.Text)
	for _, line := range strings.Split(reply, "\n") {
		if line == "" {
			continue
		}
		if err := deps.Bot.Whisper(ev.Sender, line); err != nil {
			deps.Log.Warn("whisper reply failed", zap.String("to", ev.Sender), zap.Error(err))
			return
		}
	}
}

// HandleNormalMessage processes S_NORM_MSG. Player speech names its
// speaker, which also gives us the being's name for free.
func HandleNormalMessage(ev packet.NormalMessage, deps *Deps) {
	if ev.BeingID == deps.Bot.AccountID() {
		return
	}
	speaker, text, ok := packet.SplitSpeaker(ev.Text)
	if !ok {
		deps.Log.Info("chat", zap.Uint32("being", ev.BeingID), zap.String("text", ev.Text))
		return
	}
	deps.Log.Info("chat",
		zap.Uint32("being", ev.BeingID),
		zap.String("speaker", speaker),
		zap.String("text", text),
	)
	learnName(ev.BeingID, speaker, deps)

	if deps.Commands != nil {
		deps.Commands.Chat(deps.chatAPI(), speaker, text)
	}
}

// HandleServerMessage processes S_OTHER_MSG.
func HandleServerMessage(ev packet.ServerMessage, deps *Deps) {
	deps.Log.Info("server message", zap.String("text", ev.Text))
}
