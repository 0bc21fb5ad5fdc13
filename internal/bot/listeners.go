package bot

import (
	"context"
	"sort"
	"sync"
)

// memListeners keeps relay subscriptions for a process without a database.
type memListeners struct {
	mu    sync.Mutex
	nicks map[string]bool
}

func newMemListeners() *memListeners {
	return &memListeners{nicks: make(map[string]bool)}
}

func (m *memListeners) Get(_ context.Context, nick string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	on, found := m.nicks[nick]
	return on, found, nil
}

func (m *memListeners) Set(_ context.Context, nick string, listening bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nicks[nick] = listening
	return nil
}

func (m *memListeners) Listening(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for n, on := range m.nicks {
		if on {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}
