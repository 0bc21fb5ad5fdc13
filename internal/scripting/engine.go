package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine hosts whisper commands and chat hooks written in Lua. One VM
// serves every bot; calls are serialized and the `bot` table is bound to the
// API of the bot being served for the duration of each call.
type Engine struct {
	mu       sync.Mutex
	vm       *lua.LState
	commands map[string]*command // alias -> command
	chat     []*lua.LFunction
	admins   map[string]bool // lower-cased
	api      API
	log      *zap.Logger
}

type command struct {
	name string // first alias
	fn   *lua.LFunction
	help string
}

// NewEngine creates a Lua engine and loads every script under scriptsDir
// and scriptsDir/commands. A missing directory loads nothing.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:       vm,
		commands: make(map[string]*command),
		admins:   make(map[string]bool),
		log:      log,
	}
	e.registerGlobals()

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "commands")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, err
		}
	}
	log.Info("lua commands loaded", zap.Int("commands", len(e.commands)))
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// SetAdmins replaces the names for which is_admin(nick) is true. Names
// compare case-insensitively.
func (e *Engine) SetAdmins(names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.admins = make(map[string]bool, len(names))
	for _, n := range names {
		e.admins[strings.ToLower(n)] = true
	}
}

// LoadString runs a chunk of Lua in the engine, mostly for tests and
// operator one-liners.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.DoString(src)
}

// Close releases the VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}

// Commands returns every registered alias, sorted.
func (e *Engine) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commandNames()
}

func (e *Engine) commandNames() []string {
	names := make([]string, 0, len(e.commands))
	for alias := range e.commands {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs the whisper text msg from nick as a command on behalf of
// api and returns the reply. An empty reply means nothing should be sent;
// multi-line replies are whispered line by line.
func (e *Engine) Evaluate(api API, nick, msg string) string {
	name, args, ok := parseCommand(msg)
	if !ok {
		return ""
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cmd, found := e.commands[name]
	if !found {
		return fmt.Sprintf("The `%s` command is not supported by this bot.", name)
	}

	e.api = api
	defer func() { e.api = nil }()

	if err := e.vm.CallByParam(lua.P{
		Fn:      cmd.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(nick), lua.LString(args)); err != nil {
		e.log.Warn("lua command failed",
			zap.String("command", cmd.name),
			zap.String("nick", nick),
			zap.Error(err),
		)
		return "Error! -- " + luaErrorText(err)
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if ret == lua.LNil {
		return ""
	}
	return ret.String()
}

// Chat passes normal chat heard by api's bot to every on_chat hook.
func (e *Engine) Chat(api API, speaker, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.chat) == 0 {
		return
	}

	e.api = api
	defer func() { e.api = nil }()

	for _, fn := range e.chat {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, lua.LString(speaker), lua.LString(text)); err != nil {
			e.log.Warn("lua chat hook failed", zap.Error(err))
		}
	}
}

// parseCommand normalizes whisper text into a lower-cased command name and
// the remaining argument text.
func parseCommand(msg string) (name, args string, ok bool) {
	msg = strings.TrimSpace(msg)
	if strings.HasPrefix(msg, "##") {
		// colored text: "##" plus one color digit
		if len(msg) >= 3 {
			msg = msg[3:]
		} else {
			msg = ""
		}
	}
	if msg == "" {
		return "", "", false
	}
	if strings.ContainsRune(",!@~", rune(msg[0])) {
		msg = "." + msg[1:]
	}

	fields := strings.Fields(msg)
	if len(fields) == 0 || fields[0] == "*AFK*:" {
		return "", "", false
	}
	name = strings.ToLower(fields[0])
	args = strings.TrimSpace(strings.TrimPrefix(msg, fields[0]))
	return name, args, true
}

func luaErrorText(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		if s := apiErr.Object.String(); s != "" {
			return s
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown cause"
}
