package net

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestDispatcherSingleWorkerKeepsOrder(t *testing.T) {
	var got []byte
	d := NewDispatcher(1, 4, func(frame []byte) {
		got = append(got, frame[0])
	}, zaptest.NewLogger(t))
	d.Start()
	for i := 0; i < 100; i++ {
		d.Submit([]byte{byte(i)})
	}
	d.Close()

	if len(got) != 100 {
		t.Fatalf("handled %d frames, want 100", len(got))
	}
	for i, b := range got {
		if int(b) != i {
			t.Fatalf("frame %d handled as %d", i, b)
		}
	}
}

func TestDispatcherSlowHandlerDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	var fast atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)
	d := NewDispatcher(2, 8, func(frame []byte) {
		defer wg.Done()
		if frame[0] == 0 {
			<-release
			return
		}
		fast.Add(1)
	}, zaptest.NewLogger(t))
	d.Start()

	d.Submit([]byte{0})
	d.Submit([]byte{1})
	d.Submit([]byte{2})

	deadline := time.Now().Add(2 * time.Second)
	for fast.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fast.Load() != 2 {
		t.Errorf("fast frames handled = %d while a handler was blocked", fast.Load())
	}
	close(release)
	wg.Wait()
	d.Close()
}

func TestDispatcherSubmitAfterClose(t *testing.T) {
	var n atomic.Int32
	d := NewDispatcher(2, 1, func([]byte) { n.Add(1) }, zaptest.NewLogger(t))
	d.Start()
	d.Submit([]byte{1})
	d.Close()
	d.Close()
	d.Submit([]byte{2})

	if n.Load() != 1 {
		t.Errorf("handled %d frames, want 1", n.Load())
	}
}
