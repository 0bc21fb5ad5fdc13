package packet

import "fmt"

// Protocol constants sent during the handshake.
const (
	loginClientVersion = 0 // C_L_LOGIN version field
	loginAbilityFlags  = 3 // C_L_LOGIN trailing version/ability byte
	charClientVersion  = 1 // C_C_LOGIN major version we emulate
)

// C_CHANGE_ACT actions.
const (
	ActionSit          uint8 = 2
	ActionStand        uint8 = 3
	ActionAttack       uint8 = 0
	ActionAttackRepeat uint8 = 7
)

// Login builds C_L_LOGIN.
func Login(account, password string) []byte {
	w := NewWriter(C_L_LOGIN)
	w.WriteD(loginClientVersion)
	w.WriteS(account, 24)
	w.WriteS(password, 24)
	w.WriteC(loginAbilityFlags)
	return w.Bytes()
}

// CharLogin builds C_C_LOGIN.
func CharLogin(accountID, loginID1, loginID2 uint32, sex uint8) []byte {
	w := NewWriter(C_C_LOGIN)
	w.WriteD(accountID)
	w.WriteD(loginID1)
	w.WriteD(loginID2)
	w.WriteH(charClientVersion)
	w.WriteC(sex)
	return w.Bytes()
}

// PickChar builds C_PICK_CHAR.
func PickChar(slot uint8) []byte {
	w := NewWriter(C_PICK_CHAR)
	w.WriteC(slot)
	return w.Bytes()
}

// MapLogin builds C_M_LOGIN.
func MapLogin(accountID, charID, loginID1, loginID2 uint32, sex uint8) []byte {
	w := NewWriter(C_M_LOGIN)
	w.WriteD(accountID)
	w.WriteD(charID)
	w.WriteD(loginID1)
	w.WriteD(loginID2)
	w.WriteC(sex)
	return w.Bytes()
}

// MapLoaded builds C_MAP_LOADED.
func MapLoaded() []byte {
	return NewWriter(C_MAP_LOADED).Bytes()
}

// Ping builds C_PING.
func Ping(tick uint32) []byte {
	w := NewWriter(C_PING)
	w.WriteD(tick)
	return w.Bytes()
}

// Goto builds C_GOTO. dir may be DirNone.
func Goto(x, y, dir int) []byte {
	w := NewWriter(C_GOTO)
	w.WritePos(x, y, dir)
	return w.Bytes()
}

// ChangeAct builds C_CHANGE_ACT for ActionSit or ActionStand.
func ChangeAct(action uint8) []byte {
	w := NewWriter(C_CHANGE_ACT)
	w.WriteD(0)
	w.WriteC(action)
	return w.Bytes()
}

// Attack builds C_ATTACK. keep asks the server to keep attacking.
func Attack(targetID uint32, keep bool) []byte {
	w := NewWriter(C_ATTACK)
	w.WriteD(targetID)
	if keep {
		w.WriteC(ActionAttackRepeat)
	} else {
		w.WriteC(ActionAttack)
	}
	return w.Bytes()
}

// Say builds C_MSG.
func Say(text string) []byte {
	w := NewWriter(C_MSG)
	w.WriteLength()
	w.WriteText(text)
	return w.Bytes()
}

// WhisperFrame builds C_WHISPER.
func WhisperFrame(nick, text string) []byte {
	w := NewWriter(C_WHISPER)
	w.WriteLength()
	w.WriteS(nick, 24)
	w.WriteText(text)
	return w.Bytes()
}

// Face builds C_FACE.
func Face(dir uint8) []byte {
	w := NewWriter(C_FACE)
	w.WriteH(0)
	w.WriteC(dir)
	return w.Bytes()
}

// EmoteFrame builds C_EMOTE.
func EmoteFrame(emoteID uint8) []byte {
	w := NewWriter(C_EMOTE)
	w.WriteC(emoteID)
	return w.Bytes()
}

// Respawn builds C_RESPAWN.
func Respawn() []byte {
	w := NewWriter(C_RESPAWN)
	w.WriteC(0)
	return w.Bytes()
}

// NameRequest builds C_NAME_REQ.
func NameRequest(beingID uint32) []byte {
	w := NewWriter(C_NAME_REQ)
	w.WriteD(beingID)
	return w.Bytes()
}

// Encode builds the frame for id from loosely typed arguments, for callers
// that only know the id at run time (scripts, replay tools). Integer
// arguments may be any Go integer type.
//
// Encode panics when args do not match the layout of id, including any
// arguments at all for an id with no layout: that is a caller bug, not bad
// remote data. C_CHANGE_ACT takes one argument (the action); the two-argument
// form is C_ATTACK.
func Encode(id uint16, args ...any) []byte {
	switch id {
	case C_L_LOGIN:
		mustArgs(id, args, 2)
		return Login(argString(id, args[0]), argString(id, args[1]))
	case C_C_LOGIN:
		mustArgs(id, args, 4)
		return CharLogin(argU32(id, args[0]), argU32(id, args[1]), argU32(id, args[2]), uint8(argU32(id, args[3])))
	case C_PICK_CHAR:
		mustArgs(id, args, 1)
		return PickChar(uint8(argU32(id, args[0])))
	case C_M_LOGIN:
		mustArgs(id, args, 5)
		return MapLogin(argU32(id, args[0]), argU32(id, args[1]), argU32(id, args[2]), argU32(id, args[3]), uint8(argU32(id, args[4])))
	case C_PING:
		mustArgs(id, args, 1)
		return Ping(argU32(id, args[0]))
	case C_GOTO:
		if len(args) == 2 {
			return Goto(argInt(id, args[0]), argInt(id, args[1]), DirNone)
		}
		mustArgs(id, args, 3)
		return Goto(argInt(id, args[0]), argInt(id, args[1]), argInt(id, args[2]))
	case C_CHANGE_ACT:
		if len(args) == 2 {
			return Attack(argU32(id, args[0]), argBool(id, args[1]))
		}
		mustArgs(id, args, 1)
		return ChangeAct(uint8(argU32(id, args[0])))
	case C_MSG:
		mustArgs(id, args, 1)
		return Say(argString(id, args[0]))
	case C_WHISPER:
		mustArgs(id, args, 2)
		return WhisperFrame(argString(id, args[0]), argString(id, args[1]))
	case C_FACE:
		mustArgs(id, args, 1)
		return Face(uint8(argU32(id, args[0])))
	case C_EMOTE:
		mustArgs(id, args, 1)
		return EmoteFrame(uint8(argU32(id, args[0])))
	case C_RESPAWN:
		mustArgs(id, args, 0)
		return Respawn()
	case C_NAME_REQ:
		mustArgs(id, args, 1)
		return NameRequest(argU32(id, args[0]))
	default:
		mustArgs(id, args, 0)
		return NewWriter(id).Bytes()
	}
}

func mustArgs(id uint16, args []any, n int) {
	if len(args) != n {
		panic(fmt.Sprintf("packet: %s takes %d arguments, got %d", Label(id), n, len(args)))
	}
}

func argString(id uint16, v any) string {
	s, ok := v.(string)
	if !ok {
		panic(fmt.Sprintf("packet: %s wants a string, got %T", Label(id), v))
	}
	return s
}

func argBool(id uint16, v any) bool {
	b, ok := v.(bool)
	if !ok {
		panic(fmt.Sprintf("packet: %s wants a bool, got %T", Label(id), v))
	}
	return b
}

func argInt(id uint16, v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	}
	panic(fmt.Sprintf("packet: %s wants an integer, got %T", Label(id), v))
}

func argU32(id uint16, v any) uint32 {
	return uint32(argInt(id, v))
}
