package world

import (
	"strings"
	"sync"
	"time"
)

// NameFunc receives a resolved being name.
type NameFunc func(name string)

// Names caches being id -> name resolutions. Dispatch workers use it
// concurrently, so all three tables share one lock.
type Names struct {
	mu      sync.Mutex
	byID    map[uint32]string
	byName  map[string]uint32 // lower-cased name -> id
	pending map[uint32]*pendingName
	now     func() time.Time
}

// pendingName is an unanswered name request and the callers waiting on it.
type pendingName struct {
	since   time.Time
	waiters []NameFunc
}

func NewNames() *Names {
	return &Names{
		byID:    make(map[uint32]string),
		byName:  make(map[string]uint32),
		pending: make(map[uint32]*pendingName),
		now:     time.Now,
	}
}

// Lookup returns the cached name for id.
func (n *Names) Lookup(id uint32) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.byID[id]
	return name, ok
}

// IDOf returns the being id last seen with name, ignoring case.
func (n *Names) IDOf(name string) (uint32, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.byName[strings.ToLower(name)]
	return id, ok
}

// Resolve calls fn with the name of id. If the name is cached fn runs
// immediately on the calling goroutine and never enters the queue.
// Otherwise fn waits for Store. requested is true only for the first waiter
// of an id: that caller must send the name request to the server.
func (n *Names) Resolve(id uint32, fn NameFunc) (requested bool) {
	n.mu.Lock()
	if name, ok := n.byID[id]; ok {
		n.mu.Unlock()
		fn(name)
		return false
	}
	p, waiting := n.pending[id]
	if !waiting {
		p = &pendingName{since: n.now()}
		n.pending[id] = p
	}
	p.waiters = append(p.waiters, fn)
	n.mu.Unlock()
	return !waiting
}

// Cancel drops the pending request for id and its waiters, so the next
// Resolve asks the server again. Used when the request never went out or
// the answer was unusable.
func (n *Names) Cancel(id uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.pending, id)
}

// Prune cancels requests that have gone unanswered for longer than maxAge
// and returns how many were dropped.
func (n *Names) Prune(maxAge time.Duration) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := n.now().Add(-maxAge)
	dropped := 0
	for id, p := range n.pending {
		if p.since.Before(cutoff) {
			delete(n.pending, id)
			dropped++
		}
	}
	return dropped
}

// Pending returns the number of ids with an outstanding request.
func (n *Names) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Store records the name of id and runs every waiter queued for it, in the
// order they were queued. Each waiter runs exactly once.
func (n *Names) Store(id uint32, name string) {
	n.mu.Lock()
	if old, ok := n.byID[id]; ok && old != name {
		delete(n.byName, strings.ToLower(old))
	}
	n.byID[id] = name
	n.byName[strings.ToLower(name)] = id
	var waiters []NameFunc
	if p, ok := n.pending[id]; ok {
		waiters = p.waiters
		delete(n.pending, id)
	}
	n.mu.Unlock()

	for _, fn := range waiters {
		fn(name)
	}
}

// Forget drops id from the cache along with any request still pending
// for it.
func (n *Names) Forget(id uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.pending, id)
	if name, ok := n.byID[id]; ok {
		delete(n.byID, id)
		if n.byName[strings.ToLower(name)] == id {
			delete(n.byName, strings.ToLower(name))
		}
	}
}

// Len returns the number of cached names.
func (n *Names) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.byID)
}
