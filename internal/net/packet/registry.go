package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// HandlerFunc receives the decoded fields of one frame.
type HandlerFunc func(ev Event)

// UnknownFunc receives frames that have no decode routine.
type UnknownFunc func(id uint16, frame []byte)

// Registry maps canonical packet names (see Name) to handlers. Handlers for
// one name run in registration order; nothing orders handlers of different
// names. Registration is expected to finish before the first Dispatch.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	unknown  UnknownFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string][]HandlerFunc),
		log:      log,
	}
}

// Register appends fn to the handlers for name. It panics if name is not a
// decodable inbound kind, since such a handler could never run.
func (reg *Registry) Register(name string, fn HandlerFunc) {
	if !decodableName(name) {
		panic(fmt.Sprintf("packet: no decoder for %q", name))
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.handlers[name] = append(reg.handlers[name], fn)
}

// On registers a handler typed to the event decoded for name. Events of any
// other type are ignored.
func On[T Event](reg *Registry, name string, fn func(T)) {
	reg.Register(name, func(ev Event) {
		if e, ok := ev.(T); ok {
			fn(e)
		}
	})
}

// RegisterUnknown sets the single handler for frames without a decoder.
func (reg *Registry) RegisterUnknown(fn UnknownFunc) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.unknown = fn
}

// Count returns the number of handlers registered for name.
func (reg *Registry) Count(name string) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.handlers[name])
}

// Dispatch decodes frame and calls every handler registered for its kind.
// Frames with no decoder go to the unknown handler. A decode failure is
// returned and affects only this frame.
func (reg *Registry) Dispatch(frame []byte) error {
	if len(frame) < 2 {
		return fmt.Errorf("%w: frame of %d bytes", ErrShortFrame, len(frame))
	}
	id := binary.LittleEndian.Uint16(frame)
	reg.log.Debug("RX",
		zap.String("packet", Label(id)),
		zap.Int("len", len(frame)),
	)

	ev, err := Decode(frame)
	if errors.Is(err, ErrNotDecodable) {
		reg.mu.RLock()
		unknown := reg.unknown
		reg.mu.RUnlock()
		if unknown != nil {
			reg.safeCall(id, func() { unknown(id, frame) })
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", Label(id), err)
	}

	reg.mu.RLock()
	handlers := reg.handlers[Name(id)]
	reg.mu.RUnlock()
	for _, fn := range handlers {
		reg.safeCall(id, func() { fn(ev) })
	}
	return nil
}

// safeCall runs a handler with panic recovery so one bad handler cannot take
// down the dispatch worker.
func (reg *Registry) safeCall(id uint16, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("packet", Label(id)),
				zap.Any("panic", rec),
			)
		}
	}()
	fn()
}

func decodableName(name string) bool {
	for id, n := range packetNames {
		if n == name && Decodable(id) {
			return true
		}
	}
	return false
}
