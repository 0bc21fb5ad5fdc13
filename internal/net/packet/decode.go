package packet

import "strings"

const (
	charListHeader = 24  // id, length, 20 reserved bytes
	charEntrySize  = 106 // one character in S_PICK_CHAR
	charNameOffset = 74  // name within a character entry
	charSlotOffset = 104 // slot byte within a character entry
)

type decodeFunc func(r *Reader) Event

// decoders lists every inbound kind the client understands. Ids not listed
// here surface through the registry's unknown-packet handler.
var decoders = map[uint16]decodeFunc{
	S_CSERV:            decodeCharServerInfo,
	S_LOGIN_ERROR:      decodeLoginError,
	S_PICK_CHAR:        decodeCharList,
	S_CHAR_LOGIN_ERROR: decodeCharLoginError,
	S_MSERV:            decodeMapServerInfo,
	S_CONNECTED:        decodeMapConnected,
	S_CONNECTION_ERROR: decodeConnectionError,
	S_PING:             decodePing,
	S_REMOVE:           decodeRemove,
	S_NORM_MSG:         decodeNormalMessage,
	S_OTHER_MSG:        decodeServerMessage,
	S_NAME_RES:         decodeNameResponse,
	S_NAME_RES2:        decodeNameResponse2,
	S_WHISPER:          decodeWhisper,
	S_EMOTE:            decodeEmote,
}

// Decodable reports whether id has a decode routine.
func Decodable(id uint16) bool {
	_, ok := decoders[id]
	return ok
}

// Decode parses one complete frame. It returns ErrNotDecodable for ids with
// no decode routine and ErrShortFrame when the frame ends early.
func Decode(frame []byte) (Event, error) {
	r := NewReader(frame)
	if err := r.Err(); err != nil {
		return nil, err
	}
	fn, ok := decoders[r.ID()]
	if !ok {
		return nil, &FrameError{ID: r.ID(), Err: ErrNotDecodable}
	}
	ev := fn(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return ev, nil
}

func decodeCharServerInfo(r *Reader) Event {
	r.Skip(2) // length
	ev := CharServerInfo{
		LoginID1:  r.ReadD(),
		AccountID: r.ReadD(),
		LoginID2:  r.ReadD(),
	}
	r.Skip(30) // last IP, last login time, unused
	ev.Sex = r.ReadC()
	ev.IP = r.ReadIP()
	ev.Port = r.ReadH()
	return ev
}

func decodeLoginError(r *Reader) Event {
	return LoginError{Code: r.ReadC(), BlockDate: r.ReadS(20)}
}

func decodeCharList(r *Reader) Event {
	r.Skip(charListHeader - 2)
	var ev CharList
	for r.Remaining() >= charEntrySize {
		c := CharSlot{CharID: r.ReadD()}
		r.Skip(charNameOffset - 4)
		c.Name = r.ReadS(24)
		r.Skip(charSlotOffset - charNameOffset - 24)
		c.Slot = r.ReadC()
		r.Skip(charEntrySize - charSlotOffset - 1)
		ev.Chars = append(ev.Chars, c)
	}
	return ev
}

func decodeCharLoginError(r *Reader) Event {
	return CharLoginError{Code: r.ReadC()}
}

func decodeMapServerInfo(r *Reader) Event {
	ev := MapServerInfo{CharID: r.ReadD()}
	ev.Map, _, _ = strings.Cut(r.ReadS(16), ".")
	ev.IP = r.ReadIP()
	ev.Port = r.ReadH()
	return ev
}

func decodeMapConnected(r *Reader) Event {
	ev := MapConnected{Tick: r.ReadD()}
	ev.Pos = r.ReadPos()
	return ev
}

func decodeConnectionError(r *Reader) Event {
	return ConnectionError{Code: r.ReadC()}
}

func decodePing(r *Reader) Event {
	return PingResponse{Tick: r.ReadD()}
}

func decodeRemove(r *Reader) Event {
	return BeingRemoved{BeingID: r.ReadD(), Died: r.ReadC() == 1}
}

func decodeNormalMessage(r *Reader) Event {
	r.Skip(2) // length
	return NormalMessage{BeingID: r.ReadD(), Text: r.ReadText()}
}

func decodeServerMessage(r *Reader) Event {
	r.Skip(2) // length
	return ServerMessage{Text: r.ReadText()}
}

func decodeNameResponse(r *Reader) Event {
	return NameResponse{BeingID: r.ReadD(), Name: r.ReadS(24)}
}

func decodeNameResponse2(r *Reader) Event {
	size := int(r.ReadH())
	return NameResponse{BeingID: r.ReadD(), Name: r.ReadS(size - 8)}
}

func decodeWhisper(r *Reader) Event {
	r.Skip(2) // length
	return Whisper{Sender: r.ReadS(24), Text: r.ReadText()}
}

func decodeEmote(r *Reader) Event {
	return Emote{BeingID: r.ReadD(), EmoteID: r.ReadC()}
}
