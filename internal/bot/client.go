package bot

import (
	"context"
	"time"

	"github.com/lofbot/client/internal/core/system"
	"github.com/lofbot/client/internal/data"
	"github.com/lofbot/client/internal/handler"
	"github.com/lofbot/client/internal/net"
	"github.com/lofbot/client/internal/net/packet"
	"github.com/lofbot/client/internal/scripting"
	"github.com/lofbot/client/internal/world"
	"go.uber.org/zap"
)

// Conn is the game connection a Client drives. *net.Session implements it.
type Conn interface {
	Connect(ctx context.Context) error
	Run(ctx context.Context, dispatch func(frame []byte)) error
	Send(frame []byte) error
	Close()
	State() net.SessionState
	AccountID() uint32
}

// Options configures one bot.
type Options struct {
	Account   string
	Speaker   string // public chat prefix
	Direction string // faced after entering the map; empty = leave as is
	Sit       bool

	Workers   int
	QueueSize int
}

// Shared is what every bot of the process uses together.
type Shared struct {
	Names     *world.Names
	Emotes    *data.EmoteTable
	Commands  *scripting.Engine // nil disables whisper commands
	Sightings SightingStore     // nil = no database
	Listeners ListenerStore     // nil = kept in memory
}

// Client is one logged-in bot: a connection, its dispatch pipeline, the
// handler set and the periodic probe.
type Client struct {
	opts   Options
	conn   Conn
	reg    *packet.Registry
	names  *world.Names
	emotes *data.EmoteTable
	probe  *handler.Probe
	runner *system.Runner
	deps   *handler.Deps

	sightings SightingStore
	listeners ListenerStore

	log *zap.Logger
}

// New builds a bot over conn. master is the bot whose chat hooks run for
// what this one hears; pass nil for a master bot.
func New(opts Options, conn Conn, shared Shared, master *Client, log *zap.Logger) *Client {
	if opts.Speaker == "" {
		opts.Speaker = opts.Account
	}
	if shared.Names == nil {
		shared.Names = world.NewNames()
	}
	if shared.Emotes == nil {
		shared.Emotes = data.DefaultEmotes()
	}
	if shared.Listeners == nil {
		if master != nil {
			shared.Listeners = master.listeners
		} else {
			shared.Listeners = newMemListeners()
		}
	}

	c := &Client{
		opts:      opts,
		conn:      conn,
		reg:       packet.NewRegistry(log),
		names:     shared.Names,
		emotes:    shared.Emotes,
		runner:    system.NewRunner(log),
		sightings: shared.Sightings,
		listeners: shared.Listeners,
		log:       log,
	}
	c.probe = handler.NewProbe(c, log)
	c.runner.Register(c.probe)
	c.runner.Register(handler.NewNamePruner(c.names, handler.NameRequestTTL, log))

	c.deps = &handler.Deps{
		Bot:       c,
		Names:     c.names,
		Sightings: shared.Sightings,
		Probe:     c.probe,
		Emotes:    c.emotes,
		Log:       log,
	}
	if shared.Commands != nil {
		c.deps.Commands = shared.Commands
	}
	if master != nil {
		c.deps.ChatAPI = master
	}
	handler.RegisterAll(c.reg, c.deps)
	return c
}

// Registry exposes the dispatch table so callers can add handlers before
// the first Run.
func (c *Client) Registry() *packet.Registry {
	return c.reg
}

// Connect performs the handshake and then takes the configured pose.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.conn.Connect(ctx); err != nil {
		return err
	}
	c.probe.Reset()
	if c.opts.Direction != "" {
		if err := c.Face(c.opts.Direction); err != nil {
			c.log.Warn("initial facing failed", zap.String("direction", c.opts.Direction), zap.Error(err))
		}
	}
	if c.opts.Sit {
		if err := c.Sit(); err != nil {
			c.log.Warn("initial sit failed", zap.Error(err))
		}
	}
	return nil
}

// Run reads and dispatches frames until the connection ends. Handlers run
// on a bounded worker pool; Run returns once every queued frame has been
// handled.
func (c *Client) Run(ctx context.Context) error {
	d := net.NewDispatcher(c.opts.Workers, c.opts.QueueSize, c.dispatch, c.log)
	d.Start()
	defer d.Close()
	return c.conn.Run(ctx, d.Submit)
}

func (c *Client) dispatch(frame []byte) {
	if err := c.reg.Dispatch(frame); err != nil {
		c.log.Warn("frame dropped", zap.Error(err))
	}
}

// RunPeriodic drives the periodic systems every interval until ctx is
// done. It outlives individual connections.
func (c *Client) RunPeriodic(ctx context.Context, interval time.Duration) {
	c.runner.Run(ctx, interval)
}

// Close drops the connection. Run returns soon after.
func (c *Client) Close() {
	c.conn.Close()
}

func (c *Client) State() net.SessionState {
	return c.conn.State()
}

// AccountID is the account id, which is also our being id on the map.
func (c *Client) AccountID() uint32 {
	return c.conn.AccountID()
}

// Disconnect is used by the probe when the server stops answering.
func (c *Client) Disconnect() {
	c.log.Warn("dropping unresponsive connection")
	c.conn.Close()
}
