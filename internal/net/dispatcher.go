package net

import (
	"sync"

	"go.uber.org/zap"
)

// Dispatcher hands decoded-frame work to a fixed pool of goroutines so a
// slow handler never stalls the read loop. Frames are queued in read order;
// with more than one worker, handlers for different frames may overlap and
// finish out of order.
type Dispatcher struct {
	mu      sync.RWMutex // guards queue against Submit after Close
	queue   chan []byte
	closed  bool
	handle  func(frame []byte)
	workers int
	wg      sync.WaitGroup
	log     *zap.Logger
}

func NewDispatcher(workers, queueSize int, handle func(frame []byte), log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		queue:   make(chan []byte, queueSize),
		handle:  handle,
		workers: workers,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Submit queues frame for handling. It blocks while the queue is full, which
// pushes back on the read loop instead of dropping frames. Frames submitted
// after Close are discarded.
func (d *Dispatcher) Submit(frame []byte) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Debug("dispatcher closed, frame dropped", zap.Int("len", len(frame)))
		return
	}
	d.queue <- frame
}

// Close stops accepting frames, lets the workers finish what is queued and
// waits for them.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for frame := range d.queue {
		d.handle(frame)
	}
}
