package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lofbot/client/internal/data"
	"github.com/lofbot/client/internal/net"
	"github.com/lofbot/client/internal/net/packet"
	"github.com/lofbot/client/internal/persist"
	"github.com/lofbot/client/internal/scripting"
	"go.uber.org/zap/zaptest"
)

// fakeConn records sent frames and replays inbound frames from Run.
type fakeConn struct {
	mu        sync.Mutex
	sent      [][]byte
	inbound   [][]byte
	connected bool
	closed    int
}

func (f *fakeConn) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeConn) Run(_ context.Context, dispatch func([]byte)) error {
	for _, frame := range f.inbound {
		dispatch(frame)
	}
	return nil
}

func (f *fakeConn) Send(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return net.ErrNotConnected
	}
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.closed++
}

func (f *fakeConn) State() net.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connected {
		return net.StateConnected
	}
	return net.StateDisconnected
}

func (f *fakeConn) AccountID() uint32 { return 2000001 }

func (f *fakeConn) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

func newTestClient(t *testing.T, opts Options, shared Shared) (*Client, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	if opts.Account == "" {
		opts.Account = "GeorgeBot"
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	return New(opts, conn, shared, nil, zaptest.NewLogger(t)), conn
}

func TestConnectTakesPose(t *testing.T) {
	c, conn := newTestClient(t, Options{Direction: "north", Sit: true}, Shared{})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	sent := conn.frames()
	if len(sent) != 2 {
		t.Fatalf("sent %d frames, want 2", len(sent))
	}
	if string(sent[0]) != string(packet.Face(data.DirNorth)) {
		t.Errorf("first frame % x, want face north", sent[0])
	}
	if string(sent[1]) != string(packet.ChangeAct(packet.ActionSit)) {
		t.Errorf("second frame % x, want sit", sent[1])
	}
}

func TestOutboundOperations(t *testing.T) {
	c, conn := newTestClient(t, Options{Speaker: "George"}, Shared{})

	if err := c.Sit(); !errors.Is(err, net.ErrNotConnected) {
		t.Errorf("Sit before connect = %v", err)
	}
	c.Connect(context.Background())

	steps := []struct {
		name string
		do   func() error
		want []byte
	}{
		{"stand", c.Stand, packet.ChangeAct(packet.ActionStand)},
		{"say", func() error { return c.Say("hello") }, packet.Say("George : hello")},
		{"whisper", func() error { return c.Whisper("Bob", "psst") }, packet.WhisperFrame("Bob", "psst")},
		{"emote alias", func() error { return c.Emote("lol") }, packet.EmoteFrame(102)},
		{"emote id", func() error { return c.Emote("7") }, packet.EmoteFrame(7)},
		{"face", func() error { return c.Face("w") }, packet.Face(data.DirWest)},
		{"goto", func() error { return c.Goto(156, 200, packet.DirNone) }, packet.Goto(156, 200, packet.DirNone)},
		{"respawn", c.Respawn, packet.Respawn()},
		{"attack", func() error { return c.Attack(110000123, true) }, packet.Attack(110000123, true)},
		{"name request", func() error { return c.RequestName(5) }, packet.NameRequest(5)},
		{"map loaded", c.MapLoaded, packet.MapLoaded()},
		{"ping", func() error { return c.Ping(99) }, packet.Ping(99)},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Errorf("%s: %v", s.name, err)
		}
	}
	sent := conn.frames()
	if len(sent) != len(steps) {
		t.Fatalf("sent %d frames, want %d", len(sent), len(steps))
	}
	for i, s := range steps {
		if string(sent[i]) != string(s.want) {
			t.Errorf("%s sent % x, want % x", s.name, sent[i], s.want)
		}
	}

	if err := c.Emote("no-such-emote"); err == nil {
		t.Error("unknown emote accepted")
	}
	if err := c.Face("up"); err == nil {
		t.Error("unknown direction accepted")
	}
}

func TestRunDispatchesToHandlers(t *testing.T) {
	engine, err := scripting.NewEngine(t.TempDir(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()
	if err := engine.LoadString(`
command(".hi", function(nick, args) return "hello " .. nick end)
`); err != nil {
		t.Fatal(err)
	}

	c, conn := newTestClient(t, Options{Workers: 2, QueueSize: 4}, Shared{Commands: engine})
	c.Connect(context.Background())

	w := packet.NewWriter(packet.S_WHISPER)
	w.WriteLength()
	w.WriteS("Alice", 24)
	w.WriteText(".hi")
	whisper := w.Bytes()

	w = packet.NewWriter(packet.S_NAME_RES)
	w.WriteD(42)
	w.WriteS("Bob", 24)
	conn.inbound = [][]byte{whisper, w.Bytes()}

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if name, ok := c.NameOf(42); !ok || name != "Bob" {
		t.Errorf("NameOf(42) = %q, %v", name, ok)
	}
	want := string(packet.WhisperFrame("Alice", "hello Alice"))
	found := false
	for _, f := range conn.frames() {
		if string(f) == want {
			found = true
		}
	}
	if !found {
		t.Error("command reply not whispered")
	}
}

func TestProbeEchoSetsLag(t *testing.T) {
	c, conn := newTestClient(t, Options{}, Shared{})
	c.Connect(context.Background())

	c.runner.Tick(context.Background(), time.Second)
	sent := conn.frames()
	if len(sent) != 1 || string(sent[0]) != string(packet.EmoteFrame(data.ProbeEmote)) {
		t.Fatalf("probe not sent: % x", sent)
	}

	w := packet.NewWriter(packet.S_EMOTE)
	w.WriteD(c.AccountID())
	w.WriteC(data.ProbeEmote)
	conn.inbound = [][]byte{w.Bytes()}
	c.Run(context.Background())

	if _, ok := c.Lag(); !ok {
		t.Error("lag not measured after echo")
	}

	// no echo for the next probe: the tick after drops the connection
	c.runner.Tick(context.Background(), time.Second)
	c.runner.Tick(context.Background(), time.Second)
	if conn.closed != 1 {
		t.Errorf("connection closed %d times, want 1", conn.closed)
	}
}

func TestReconnectForgetsUnansweredPing(t *testing.T) {
	c, conn := newTestClient(t, Options{}, Shared{})
	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatal(err)
	}

	// probe goes out, then the socket drops before any echo
	c.runner.Tick(ctx, time.Second)
	conn.Close()
	if err := c.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	closedBefore := conn.closed

	c.runner.Tick(ctx, time.Second)
	if conn.closed != closedBefore {
		t.Errorf("first tick after reconnect closed the new connection")
	}
	if c.State() != net.StateConnected {
		t.Errorf("state = %v, want Connected", c.State())
	}
}

type fakeSightings struct {
	row *persist.SightingRow
	top []persist.SightingRow
}

func (f *fakeSightings) Record(context.Context, string, uint32) error { return nil }
func (f *fakeSightings) Load(context.Context, string) (*persist.SightingRow, error) {
	return f.row, nil
}
func (f *fakeSightings) MostSeen(_ context.Context, limit int) ([]persist.SightingRow, error) {
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func TestSeen(t *testing.T) {
	c, _ := newTestClient(t, Options{}, Shared{})
	if _, err := c.Seen("Bob"); !errors.Is(err, errNoSightings) {
		t.Errorf("Seen without store = %v", err)
	}

	store := &fakeSightings{}
	c, _ = newTestClient(t, Options{}, Shared{Sightings: store})
	if got, _ := c.Seen("Bob"); got != "I have never seen Bob." {
		t.Errorf("Seen = %q", got)
	}
	store.row = &persist.SightingRow{Name: "bob", LastSeen: time.Now().Add(-90 * time.Second), Count: 4}
	got, err := c.Seen("Bob")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Bob was last seen 1m30s ago (seen 4 times)." {
		t.Errorf("Seen = %q", got)
	}
}

func TestSetListening(t *testing.T) {
	c, _ := newTestClient(t, Options{}, Shared{})

	on, err := c.SetListening("Dave", nil)
	if err != nil || !on {
		t.Errorf("first query = %v, %v; want subscribed", on, err)
	}
	off := false
	if on, _ := c.SetListening("Dave", &off); on {
		t.Error("unsubscribe ignored")
	}
	if on, _ := c.SetListening("Dave", nil); on {
		t.Error("query changed the stored state")
	}
	yes := true
	c.SetListening("Erin", &yes)
	names, _ := c.Listeners()
	if len(names) != 1 || names[0] != "Erin" {
		t.Errorf("Listeners = %v", names)
	}
}

func TestSlaveSharesMasterListeners(t *testing.T) {
	master, _ := newTestClient(t, Options{}, Shared{})
	slave := New(Options{Account: "GeorgeBot_s1", Workers: 1}, &fakeConn{}, Shared{}, master, zaptest.NewLogger(t))

	if _, err := slave.SetListening("Frank", nil); err != nil {
		t.Fatalf("SetListening: %v", err)
	}
	names, _ := master.Listeners()
	if len(names) != 1 || names[0] != "Frank" {
		t.Errorf("master Listeners = %v, want [Frank]", names)
	}
}

func TestRegulars(t *testing.T) {
	store := &fakeSightings{top: []persist.SightingRow{
		{Name: "alice", Count: 9},
		{Name: "bob", Count: 4},
	}}
	c, _ := newTestClient(t, Options{}, Shared{Sightings: store})

	got, err := c.Regulars(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "alice (9)" {
		t.Errorf("Regulars(1) = %v", got)
	}

	c.names.Store(77, "Carol")
	if id, ok := c.IDOf("carol"); !ok || id != 77 {
		t.Errorf("IDOf = %d, %v", id, ok)
	}
}
