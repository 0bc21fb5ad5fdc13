package net

import "fmt"

// SessionState is the handshake phase of a Session.
type SessionState int32

const (
	StateDisconnected       SessionState = iota
	StateLoggingIn                       // talking to the login server
	StateSelectingCharacter              // talking to the char server
	StateJoiningMap                      // talking to the map server
	StateConnected                       // in game, steady-state read loop
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateLoggingIn:
		return "LoggingIn"
	case StateSelectingCharacter:
		return "SelectingCharacter"
	case StateJoiningMap:
		return "JoiningMap"
	case StateConnected:
		return "Connected"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
