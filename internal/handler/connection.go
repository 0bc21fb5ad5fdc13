package handler

import (
	"fmt"
	"strings"

	"github.com/lofbot/client/internal/net/packet"
	"go.uber.org/zap"
)

// HandlePing processes S_PING.
func HandlePing(ev packet.PingResponse, deps *Deps) {
	deps.Log.Debug("server tick", zap.Uint32("tick", ev.Tick))
}

// HandleConnectionError processes S_CONNECTION_ERROR. The server closes
// the connection itself afterwards.
func HandleConnectionError(ev packet.ConnectionError, deps *Deps) {
	deps.Log.Warn("connection error from server", zap.Uint8("code", ev.Code))
}

// HandleUnknown dumps frames that have no decoder.
func HandleUnknown(id uint16, frame []byte, deps *Deps) {
	if ce := deps.Log.Check(zap.DebugLevel, "unknown packet"); ce != nil {
		ce.Write(
			zap.String("packet", packet.Label(id)),
			zap.String("body", hexDump(frame)),
		)
	}
}

func hexDump(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}
