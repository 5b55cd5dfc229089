package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func collectFrames(t *testing.T, tr *MemoryTransport) (*sync.Mutex, *[][]byte) {
	t.Helper()

	var mu sync.Mutex
	var frames [][]byte

	tr.OnMessage(func(data []byte) {
		mu.Lock()
		frames = append(frames, data)
		mu.Unlock()
	})

	if err := tr.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	return &mu, &frames
}

func waitForFrames(t *testing.T, mu *sync.Mutex, frames *[][]byte, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(*frames)
		mu.Unlock()
		if n >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d frames", want)
}

func TestMemoryTransportSend(t *testing.T) {
	bus := NewBus()
	a := bus.Join("a")
	b := bus.Join("b")
	defer a.Close()
	defer b.Close()

	mu, frames := collectFrames(t, b)

	if err := a.Send(context.Background(), "b", []byte("hello")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	waitForFrames(t, mu, frames, 1)

	mu.Lock()
	defer mu.Unlock()
	if string((*frames)[0]) != "hello" {
		t.Errorf("Expected hello, got %s", (*frames)[0])
	}
}

func TestMemoryTransportSendUnknownPeer(t *testing.T) {
	bus := NewBus()
	a := bus.Join("a")
	defer a.Close()

	err := a.Send(context.Background(), "nobody", []byte("hello"))
	if err == nil {
		t.Fatal("Send to unknown peer should fail")
	}

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("Expected SendError, got %T", err)
	}
	if !errors.Is(err, ErrUnknownPeer) {
		t.Errorf("Expected ErrUnknownPeer, got %v", err)
	}
}

func TestMemoryTransportBroadcast(t *testing.T) {
	bus := NewBus()
	a := bus.Join("a")
	b := bus.Join("b")
	c := bus.Join("c")
	defer a.Close()
	defer b.Close()
	defer c.Close()

	muB, framesB := collectFrames(t, b)
	muC, framesC := collectFrames(t, c)

	if err := a.Broadcast(context.Background(), []byte("event")); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	waitForFrames(t, muB, framesB, 1)
	waitForFrames(t, muC, framesC, 1)
}

func TestMemoryTransportClosed(t *testing.T) {
	bus := NewBus()
	a := bus.Join("a")
	b := bus.Join("b")
	defer a.Close()

	b.Close()

	// b left the bus, so it is unknown now.
	if err := a.Send(context.Background(), "b", []byte("hello")); err == nil {
		t.Fatal("Send to departed peer should fail")
	}

	if err := b.Subscribe(context.Background()); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("Expected ErrTransportClosed, got %v", err)
	}
}

func TestMemoryTransportCloseIdempotent(t *testing.T) {
	bus := NewBus()
	a := bus.Join("a")

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
}
