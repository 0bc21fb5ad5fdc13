package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lofbot/client/internal/net/packet"
	"go.uber.org/zap"
)

var (
	// ErrLoginRefused means a server rejected the credentials or session.
	ErrLoginRefused = errors.New("login refused")
	// ErrClosedEarly means a server closed the stream before sending the
	// frame that ends its handshake phase.
	ErrClosedEarly = errors.New("server closed connection during handshake")
	// ErrNotConnected is returned by Send outside the Connected state.
	ErrNotConnected = errors.New("not connected")
)

// Dialer opens the TCP streams of a Session. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options configures a Session.
type Options struct {
	Host     string
	Port     int
	SameIP   bool // reuse Host for the char and map servers
	Account  string
	Password string
	CharSlot uint8

	DialTimeout time.Duration
	// HandshakeTimeout bounds each read during login, char and map setup.
	// 0 falls back to ReadTimeout.
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // per read on the map connection; 0 = none
	WriteTimeout     time.Duration
	ReadBuffer       int
}

// Session drives the login -> char -> map handshake and then owns the map
// server connection. Only one socket is open at a time and each phase uses a
// fresh packet.Buffer.
type Session struct {
	opts   Options
	dialer Dialer
	state  atomic.Int32 // SessionState

	mu   sync.Mutex // guards conn for Send/Close
	conn net.Conn
	buf  *packet.Buffer // map connection framing, kept for Run

	accountID atomic.Uint32
	charID    uint32
	loginID1  uint32
	loginID2  uint32
	sex       uint8
	mapName   string
	pos       packet.Coord

	log *zap.Logger
}

func NewSession(opts Options, dialer Dialer, log *zap.Logger) *Session {
	if dialer == nil {
		dialer = &net.Dialer{Timeout: opts.DialTimeout}
	}
	if opts.ReadBuffer <= 0 {
		opts.ReadBuffer = 2048
	}
	return &Session{
		opts:   opts,
		dialer: dialer,
		log:    log.With(zap.String("account", opts.Account)),
	}
}

func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) setState(st SessionState) {
	old := SessionState(s.state.Swap(int32(st)))
	if old != st {
		s.log.Debug("session state", zap.Stringer("from", old), zap.Stringer("to", st))
	}
}

// AccountID returns the account id assigned by the login server.
func (s *Session) AccountID() uint32 {
	return s.accountID.Load()
}

// CharID returns the id of the selected character.
func (s *Session) CharID() uint32 {
	return s.charID
}

// Map returns the map name and the position reported when entering it.
func (s *Session) Map() (string, packet.Coord) {
	return s.mapName, s.pos
}

// Connect runs the whole handshake. On success the session is Connected and
// Run may be called. Any failure aborts the handshake; there is no retry.
func (s *Session) Connect(ctx context.Context) error {
	s.Close()
	s.setState(StateLoggingIn)

	ch, err := s.login(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("login server: %w", err))
	}
	mh, err := s.selectChar(ctx, ch)
	if err != nil {
		return s.fail(fmt.Errorf("char server: %w", err))
	}
	if err := s.joinMap(ctx, mh); err != nil {
		return s.fail(fmt.Errorf("map server: %w", err))
	}
	return nil
}

func (s *Session) fail(err error) error {
	if errors.Is(err, ErrLoginRefused) {
		s.setState(StateClosed)
	} else {
		s.setState(StateDisconnected)
	}
	s.log.Error("handshake failed", zap.Error(err))
	return err
}

// login is phase 1: credentials in, char server address out.
func (s *Session) login(ctx context.Context) (*packet.CharServerInfo, error) {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	s.log.Info("connecting to login server", zap.String("addr", addr))
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := writeFrame(conn, packet.Login(s.opts.Account, s.opts.Password), s.opts.WriteTimeout); err != nil {
		return nil, err
	}

	var hop *packet.CharServerInfo
	buf := packet.NewBuffer()
	err = s.readUntil(ctx, conn, buf, func(frame []byte) (bool, error) {
		switch frameID(frame) {
		case packet.S_LOGIN_ERROR:
			ev, err := packet.Decode(frame)
			if err != nil {
				return false, err
			}
			le := ev.(packet.LoginError)
			return false, fmt.Errorf("%w: code %d %s", ErrLoginRefused, le.Code, le.BlockDate)
		case packet.S_CSERV:
			ev, err := packet.Decode(frame)
			if err != nil {
				return false, err
			}
			info := ev.(packet.CharServerInfo)
			hop = &info
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	conn.Close()
	s.accountID.Store(hop.AccountID)
	s.loginID1 = hop.LoginID1
	s.loginID2 = hop.LoginID2
	s.sex = hop.Sex
	s.log.Info("logged in", zap.Uint32("account_id", hop.AccountID))
	s.setState(StateSelectingCharacter)
	return hop, nil
}

// selectChar is phase 2: pick the configured slot, map server address out.
func (s *Session) selectChar(ctx context.Context, ch *packet.CharServerInfo) (*packet.MapServerInfo, error) {
	addr := s.hopAddr(ch.IP, ch.Port)
	s.log.Info("connecting to char server", zap.String("addr", addr))
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	hello := packet.CharLogin(ch.AccountID, ch.LoginID1, ch.LoginID2, ch.Sex)
	if err := writeFrame(conn, hello, s.opts.WriteTimeout); err != nil {
		return nil, err
	}
	if err := discardPreamble(conn, s.handshakeTimeout()); err != nil {
		return nil, err
	}

	var hop *packet.MapServerInfo
	buf := packet.NewBuffer()
	err = s.readUntil(ctx, conn, buf, func(frame []byte) (bool, error) {
		switch frameID(frame) {
		case packet.S_PICK_CHAR:
			s.log.Info("picking character", zap.Uint8("slot", s.opts.CharSlot))
			return false, writeFrame(conn, packet.PickChar(s.opts.CharSlot), s.opts.WriteTimeout)
		case packet.S_CHAR_LOGIN_ERROR:
			ev, err := packet.Decode(frame)
			if err != nil {
				return false, err
			}
			return false, fmt.Errorf("%w: char server code %d", ErrLoginRefused, ev.(packet.CharLoginError).Code)
		case packet.S_MSERV:
			ev, err := packet.Decode(frame)
			if err != nil {
				return false, err
			}
			info := ev.(packet.MapServerInfo)
			hop = &info
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	conn.Close()
	s.charID = hop.CharID
	s.mapName = hop.Map
	s.log.Info("received map server", zap.Uint32("char_id", hop.CharID), zap.String("map", hop.Map))
	s.setState(StateJoiningMap)
	return hop, nil
}

// joinMap is phase 3. On success the map connection stays open as the
// session connection.
func (s *Session) joinMap(ctx context.Context, mh *packet.MapServerInfo) error {
	addr := s.hopAddr(mh.IP, mh.Port)
	s.log.Info("connecting to map server", zap.String("addr", addr))
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return err
	}

	hello := packet.MapLogin(s.AccountID(), mh.CharID, s.loginID1, s.loginID2, s.sex)
	if err := writeFrame(conn, hello, s.opts.WriteTimeout); err != nil {
		conn.Close()
		return err
	}
	if err := discardPreamble(conn, s.handshakeTimeout()); err != nil {
		conn.Close()
		return err
	}

	buf := packet.NewBuffer()
	err = s.readUntil(ctx, conn, buf, func(frame []byte) (bool, error) {
		if frameID(frame) != packet.S_CONNECTED {
			return false, nil
		}
		ev, err := packet.Decode(frame)
		if err != nil {
			return false, err
		}
		s.pos = ev.(packet.MapConnected).Pos
		return true, nil
	})
	if err == nil {
		err = writeFrame(conn, packet.MapLoaded(), s.opts.WriteTimeout)
	}
	if err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.buf = buf
	s.mu.Unlock()
	s.log.Info("entered map", zap.String("map", s.mapName),
		zap.Uint16("x", s.pos.X), zap.Uint16("y", s.pos.Y))
	s.setState(StateConnected)
	return nil
}

func (s *Session) handshakeTimeout() time.Duration {
	if s.opts.HandshakeTimeout > 0 {
		return s.opts.HandshakeTimeout
	}
	return s.opts.ReadTimeout
}

func (s *Session) hopAddr(ip string, port uint16) string {
	host := ip
	if s.opts.SameIP {
		host = s.opts.Host
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

func (s *Session) dial(ctx context.Context, addr string) (net.Conn, error) {
	if s.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.DialTimeout)
		defer cancel()
	}
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

// readUntil feeds conn into buf and passes each complete frame to fn until fn
// reports done. Frames after the terminating one stay in buf.
func (s *Session) readUntil(ctx context.Context, conn net.Conn, buf *packet.Buffer, fn func(frame []byte) (done bool, err error)) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	scratch := make([]byte, s.opts.ReadBuffer)
	for {
		for {
			frame, ok, err := buf.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			done, err := fn(frame)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
		if err := readInto(conn, buf, scratch, s.handshakeTimeout()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return ErrClosedEarly
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

// Run is the steady-state read loop. Every complete frame is passed to
// dispatch in stream order. Run returns nil when the server closes the
// connection, Close is called or ctx is cancelled, and an error for read or
// framing failures. The session ends Closed either way.
func (s *Session) Run(ctx context.Context, dispatch func(frame []byte)) error {
	s.mu.Lock()
	conn, buf := s.conn, s.buf
	s.mu.Unlock()
	if conn == nil || s.State() != StateConnected {
		return ErrNotConnected
	}
	stop := context.AfterFunc(ctx, s.Close)
	defer stop()
	defer s.Close()

	scratch := make([]byte, s.opts.ReadBuffer)
	for {
		frames, err := buf.Drain()
		for _, f := range frames {
			dispatch(f)
		}
		if err != nil {
			s.log.Error("stream desynchronized", zap.Error(err))
			return err
		}

		if err := readInto(conn, buf, scratch, s.opts.ReadTimeout); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Info("server closed connection")
				return nil
			}
			if s.State() == StateClosed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

// Send writes one frame on the map connection.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.State() != StateConnected {
		return ErrNotConnected
	}
	s.log.Debug("TX",
		zap.String("packet", packet.Label(frameID(data))),
		zap.Int("len", len(data)),
	)
	return writeFrame(s.conn, data, s.opts.WriteTimeout)
}

// Close tears down the map connection, if any. It is safe to call at any
// time and from any goroutine.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.setState(StateClosed)
	}
}
