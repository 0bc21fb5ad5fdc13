package packet

import "fmt"

// Client -> server packet ids.
const (
	C_L_LOGIN    uint16 = 0x0064 // login server credentials
	C_C_LOGIN    uint16 = 0x0065 // enter char server
	C_PICK_CHAR  uint16 = 0x0066 // select character slot
	C_M_LOGIN    uint16 = 0x0072 // enter map server
	C_MAP_LOADED uint16 = 0x007d // map loading complete
	C_PING       uint16 = 0x007e // client tick
	C_GOTO       uint16 = 0x0085 // walk request
	C_CHANGE_ACT uint16 = 0x0089 // sit / stand
	C_ATTACK     uint16 = 0x0089 // same id as C_CHANGE_ACT, different fields
	C_MSG        uint16 = 0x008c // public chat
	C_NAME_REQ   uint16 = 0x0094 // being name request
	C_WHISPER    uint16 = 0x0096 // private message
	C_FACE       uint16 = 0x009b // change facing
	C_RESPAWN    uint16 = 0x00b2 // restart after death
	C_EMOTE      uint16 = 0x00bf // emote
)

// Server -> client packet ids.
const (
	S_CSERV             uint16 = 0x0069 // login accepted, char server list
	S_LOGIN_ERROR       uint16 = 0x006a // login refused
	S_PICK_CHAR         uint16 = 0x006b // char list, pick a slot
	S_CHAR_LOGIN_ERROR  uint16 = 0x006c // char server refused
	S_MSERV             uint16 = 0x0071 // map server address
	S_CONNECTED         uint16 = 0x0073 // map entered
	S_PING              uint16 = 0x007f // server tick
	S_REMOVE            uint16 = 0x0080 // being vanished or died
	S_CONNECTION_ERROR  uint16 = 0x0081 // connection problem notice
	S_NORM_MSG          uint16 = 0x008d // being speech
	S_OTHER_MSG         uint16 = 0x008e // own speech / server text
	S_NAME_RES          uint16 = 0x0095 // being name
	S_WHISPER           uint16 = 0x0097 // private message
	S_ANNOUNCE          uint16 = 0x009a // GM announcement
	S_USED_AFTER_DEATH  uint16 = 0x00b0
	S_USED_AFTER_DEATH2 uint16 = 0x01d9
	S_EMOTE             uint16 = 0x00c0 // being emote
	S_TRADE_REQ         uint16 = 0x00e5
	S_TRADE_RESP        uint16 = 0x00e7
	S_TRADE_ADD         uint16 = 0x00e9
	S_TRADE_OK          uint16 = 0x00ec
	S_TRADE_NO          uint16 = 0x00ee
	S_TRADE_DONE        uint16 = 0x00f0
	S_TRADE_ADD_RESP    uint16 = 0x01b1 // tmwAthena extension
	S_NAME_RES2         uint16 = 0x0220 // variable-length name response
)

var packetNames = map[uint16]string{
	C_L_LOGIN:    "C_L_LOGIN",
	C_C_LOGIN:    "C_C_LOGIN",
	C_PICK_CHAR:  "C_PICK_CHAR",
	C_M_LOGIN:    "C_M_LOGIN",
	C_MAP_LOADED: "C_MAP_LOADED",
	C_PING:       "C_PING",
	C_GOTO:       "C_GOTO",
	C_CHANGE_ACT: "C_CHANGE_ACT",
	C_MSG:        "C_MSG",
	C_NAME_REQ:   "C_NAME_REQ",
	C_WHISPER:    "C_WHISPER",
	C_FACE:       "C_FACE",
	C_RESPAWN:    "C_RESPAWN",
	C_EMOTE:      "C_EMOTE",

	S_CSERV:             "S_CSERV",
	S_LOGIN_ERROR:       "S_LOGIN_ERROR",
	S_PICK_CHAR:         "S_PICK_CHAR",
	S_CHAR_LOGIN_ERROR:  "S_CHAR_LOGIN_ERROR",
	S_MSERV:             "S_MSERV",
	S_CONNECTED:         "S_CONNECTED",
	S_PING:              "S_PING",
	S_REMOVE:            "S_REMOVE",
	S_CONNECTION_ERROR:  "S_CONNECTION_ERROR",
	S_NORM_MSG:          "S_NORM_MSG",
	S_OTHER_MSG:         "S_OTHER_MSG",
	S_NAME_RES:          "S_NAME_RES",
	S_WHISPER:           "S_WHISPER",
	S_ANNOUNCE:          "S_ANNOUNCE",
	S_USED_AFTER_DEATH:  "S_USED_AFTER_DEATH",
	S_USED_AFTER_DEATH2: "S_USED_AFTER_DEATH2",
	S_EMOTE:             "S_EMOTE",
	S_TRADE_REQ:         "S_TRADE_REQ",
	S_TRADE_RESP:        "S_TRADE_RESP",
	S_TRADE_ADD:         "S_TRADE_ADD",
	S_TRADE_OK:          "S_TRADE_OK",
	S_TRADE_NO:          "S_TRADE_NO",
	S_TRADE_DONE:        "S_TRADE_DONE",
	S_TRADE_ADD_RESP:    "S_TRADE_ADD_RESP",
	S_NAME_RES2:         "S_NAME_RES2",
}

// Name returns the canonical name of a packet id, or "" when it has none.
func Name(id uint16) string {
	return packetNames[id]
}

// Label formats id for log output, e.g. "S_EMOTE(0x00c0)".
func Label(id uint16) string {
	if n, ok := packetNames[id]; ok {
		return fmt.Sprintf("%s(0x%04x)", n, id)
	}
	return fmt.Sprintf("0x%04x", id)
}
