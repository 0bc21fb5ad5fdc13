package packet

import "strings"

// Event is the decoded form of an inbound frame.
type Event interface {
	event()
}

// CharServerInfo is S_CSERV: login accepted. Only the first advertised char
// server is kept.
type CharServerInfo struct {
	LoginID1  uint32
	AccountID uint32
	LoginID2  uint32
	Sex       uint8
	IP        string
	Port      uint16
}

// LoginError is S_LOGIN_ERROR.
type LoginError struct {
	Code      uint8
	BlockDate string // set for banned accounts
}

// CharSlot is one character offered by S_PICK_CHAR.
type CharSlot struct {
	CharID uint32
	Name   string
	Slot   uint8
}

// CharList is S_PICK_CHAR: the char server waits for a slot choice.
type CharList struct {
	Chars []CharSlot
}

// CharLoginError is S_CHAR_LOGIN_ERROR.
type CharLoginError struct {
	Code uint8
}

// MapServerInfo is S_MSERV.
type MapServerInfo struct {
	CharID uint32
	Map    string // without the trailing ".gat"
	IP     string
	Port   uint16
}

// MapConnected is S_CONNECTED: the map server accepted us.
type MapConnected struct {
	Tick uint32
	Pos  Coord
}

// ConnectionError is S_CONNECTION_ERROR.
type ConnectionError struct {
	Code uint8
}

// PingResponse is S_PING.
type PingResponse struct {
	Tick uint32
}

// BeingRemoved is S_REMOVE.
type BeingRemoved struct {
	BeingID uint32
	Died    bool
}

// NormalMessage is S_NORM_MSG: speech from a nearby being. Player speech
// arrives as "<name> : <text>"; see SplitSpeaker.
type NormalMessage struct {
	BeingID uint32
	Text    string
}

// ServerMessage is S_OTHER_MSG.
type ServerMessage struct {
	Text string
}

// NameResponse is S_NAME_RES or S_NAME_RES2.
type NameResponse struct {
	BeingID uint32
	Name    string
}

// Whisper is S_WHISPER.
type Whisper struct {
	Sender string
	Text   string
}

// Emote is S_EMOTE.
type Emote struct {
	BeingID uint32
	EmoteID uint8
}

func (CharServerInfo) event()  {}
func (LoginError) event()      {}
func (CharList) event()        {}
func (CharLoginError) event()  {}
func (MapServerInfo) event()   {}
func (MapConnected) event()    {}
func (ConnectionError) event() {}
func (PingResponse) event()    {}
func (BeingRemoved) event()    {}
func (NormalMessage) event()   {}
func (ServerMessage) event()   {}
func (NameResponse) event()    {}
func (Whisper) event()         {}
func (Emote) event()           {}

// SplitSpeaker splits "<name> : <text>" chat into its parts.
func SplitSpeaker(text string) (speaker, msg string, ok bool) {
	speaker, msg, ok = strings.Cut(text, " : ")
	if !ok {
		return "", text, false
	}
	return speaker, msg, true
}
