package http

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"trivia-live-service/internal/domain"
)

func TestHubSendNeverBlocksOnUndrainedQueue(t *testing.T) {
	hub := NewHub()
	hub.Add("conn-a") // no writer ever drains this channel

	event := domain.ErrorEvent{Code: "INTERNAL", Message: "noise"}

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 500; j++ {
					hub.Send("conn-a", event)
					hub.Broadcast([]string{"conn-a"}, event)
				}
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("senders blocked on a full queue")
	}

	// Remove needs the write lock; a wedged sender would starve it.
	removed := make(chan struct{})
	go func() {
		hub.Remove("conn-a")
		close(removed)
	}()
	select {
	case <-removed:
	case <-time.After(time.Second):
		t.Fatal("remove blocked behind senders")
	}

	// Sends to a removed connection are no-ops.
	hub.Send("conn-a", event)
}

func TestHubDropsOldestForSlowReceiver(t *testing.T) {
	hub := NewHub()
	ch := hub.Add("conn-a")

	for i := 0; i < 20; i++ {
		hub.Send("conn-a", domain.ErrorEvent{Code: "INTERNAL", Message: fmt.Sprintf("m%d", i)})
	}

	// The queue holds 16; overflow evicts from the front, so the first
	// message read is no longer the first one sent.
	first := <-ch
	if msg := first.Payload.(domain.ErrorEvent).Message; msg == "m0" {
		t.Fatalf("expected oldest message evicted, got %s", msg)
	}
}
