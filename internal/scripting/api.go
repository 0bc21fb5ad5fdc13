package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// API is what command scripts may do to the bot they run for.
type API interface {
	Account() string
	Say(text string) error
	Whisper(nick, text string) error
	Emote(spec string) error
	Sit() error
	Stand() error
	Face(spec string) error
	// Lag returns the last probe round trip in milliseconds.
	Lag() (ms int64, ok bool)
	NameOf(beingID uint32) (string, bool)
	IDOf(name string) (uint32, bool)
	// Seen describes the last sighting of name.
	Seen(name string) (string, error)
	// Regulars lists the most often seen names as "name (count)".
	Regulars(limit int) ([]string, error)
	// SetListening updates nick's relay subscription when listening is
	// non-nil and returns the stored state.
	SetListening(nick string, listening *bool) (bool, error)
	Listeners() ([]string, error)
}

func (e *Engine) registerGlobals() {
	L := e.vm
	L.SetGlobal("command", L.NewFunction(e.luaCommand))
	L.SetGlobal("on_chat", L.NewFunction(e.luaOnChat))
	L.SetGlobal("commands", L.NewFunction(e.luaCommands))
	L.SetGlobal("help", L.NewFunction(e.luaHelp))
	L.SetGlobal("is_admin", L.NewFunction(e.luaIsAdmin))

	bot := L.NewTable()
	L.SetFuncs(bot, map[string]lua.LGFunction{
		"account":   e.botAccount,
		"say":       e.botSay,
		"whisper":   e.botWhisper,
		"emote":     e.botEmote,
		"sit":       e.botSit,
		"stand":     e.botStand,
		"face":      e.botFace,
		"lag":       e.botLag,
		"name_of":   e.botNameOf,
		"id_of":     e.botIDOf,
		"seen":      e.botSeen,
		"regulars":  e.botRegulars,
		"listen":    e.botListen,
		"listeners": e.botListeners,
	})
	L.SetGlobal("bot", bot)
}

// command(names, fn [, help]) registers fn under one alias or a list of
// aliases. fn(nick, args) returns the reply text or nil.
func (e *Engine) luaCommand(L *lua.LState) int {
	names := L.CheckAny(1)
	fn := L.CheckFunction(2)
	help := L.OptString(3, "")

	var aliases []string
	switch v := names.(type) {
	case lua.LString:
		aliases = append(aliases, string(v))
	case *lua.LTable:
		v.ForEach(func(_, alias lua.LValue) {
			aliases = append(aliases, alias.String())
		})
	default:
		L.ArgError(1, "string or table expected")
	}
	if len(aliases) == 0 {
		L.ArgError(1, "no command names")
	}

	cmd := &command{name: aliases[0], fn: fn, help: help}
	for _, a := range aliases {
		e.commands[strings.ToLower(a)] = cmd
	}
	return 0
}

func (e *Engine) luaOnChat(L *lua.LState) int {
	e.chat = append(e.chat, L.CheckFunction(1))
	return 0
}

// commands() returns the primary names of every documented command.
func (e *Engine) luaCommands(L *lua.LState) int {
	t := L.NewTable()
	seen := make(map[*command]bool)
	for _, alias := range e.commandNames() {
		cmd := e.commands[alias]
		if seen[cmd] || cmd.help == "" {
			continue
		}
		seen[cmd] = true
		t.Append(lua.LString(cmd.name))
	}
	L.Push(t)
	return 1
}

// help(name) returns the help text of a command, or nil.
func (e *Engine) luaHelp(L *lua.LState) int {
	cmd, ok := e.commands[strings.ToLower(L.CheckString(1))]
	if !ok || cmd.help == "" {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(cmd.help))
	return 1
}

func (e *Engine) luaIsAdmin(L *lua.LState) int {
	L.Push(lua.LBool(e.admins[strings.ToLower(L.CheckString(1))]))
	return 1
}

// current returns the API of the bot being served, raising a Lua error
// outside Evaluate/Chat.
func (e *Engine) current(L *lua.LState) API {
	if e.api == nil {
		L.RaiseError("bot API used outside a command")
	}
	return e.api
}

func (e *Engine) check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func (e *Engine) botAccount(L *lua.LState) int {
	L.Push(lua.LString(e.current(L).Account()))
	return 1
}

func (e *Engine) botSay(L *lua.LState) int {
	e.check(L, e.current(L).Say(L.CheckString(1)))
	return 0
}

func (e *Engine) botWhisper(L *lua.LState) int {
	e.check(L, e.current(L).Whisper(L.CheckString(1), L.CheckString(2)))
	return 0
}

func (e *Engine) botEmote(L *lua.LState) int {
	e.check(L, e.current(L).Emote(L.CheckAny(1).String()))
	return 0
}

func (e *Engine) botSit(L *lua.LState) int {
	e.check(L, e.current(L).Sit())
	return 0
}

func (e *Engine) botStand(L *lua.LState) int {
	e.check(L, e.current(L).Stand())
	return 0
}

func (e *Engine) botFace(L *lua.LState) int {
	e.check(L, e.current(L).Face(L.CheckAny(1).String()))
	return 0
}

func (e *Engine) botLag(L *lua.LState) int {
	ms, ok := e.current(L).Lag()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(ms))
	return 1
}

func (e *Engine) botNameOf(L *lua.LState) int {
	name, ok := e.current(L).NameOf(uint32(L.CheckInt64(1)))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(name))
	return 1
}

func (e *Engine) botIDOf(L *lua.LState) int {
	id, ok := e.current(L).IDOf(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id))
	return 1
}

func (e *Engine) botSeen(L *lua.LState) int {
	desc, err := e.current(L).Seen(L.CheckString(1))
	e.check(L, err)
	L.Push(lua.LString(desc))
	return 1
}

// bot.regulars([limit]) returns up to limit (default 5) "name (count)"
// strings, most seen first.
func (e *Engine) botRegulars(L *lua.LState) int {
	lines, err := e.current(L).Regulars(L.OptInt(1, 5))
	e.check(L, err)
	t := L.NewTable()
	for _, l := range lines {
		t.Append(lua.LString(l))
	}
	L.Push(t)
	return 1
}

// bot.listen(nick [, bool]) sets or reads nick's relay subscription.
func (e *Engine) botListen(L *lua.LState) int {
	api := e.current(L)
	nick := L.CheckString(1)
	var want *bool
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		v := L.ToBool(2)
		want = &v
	}
	got, err := api.SetListening(nick, want)
	e.check(L, err)
	L.Push(lua.LBool(got))
	return 1
}

func (e *Engine) botListeners(L *lua.LState) int {
	names, err := e.current(L).Listeners()
	e.check(L, err)
	t := L.NewTable()
	for _, n := range names {
		t.Append(lua.LString(n))
	}
	L.Push(t)
	return 1
}
