package pubsub

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with buffer size 3, replay all
	pub.ConfigureTopic(TopicGraph, TopicConfig{
		BufferSize: 3,
		ReplayAll:  true,
	})

	// Publish 5 events
	for i := 1; i <= 5; i++ {
		err := pub.Publish(TopicGraph, EventSnapshot, map[string]int{"nodes": i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	// Subscribe and verify we get last 3 events
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGraph)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive last 3 events (3, 4, 5)
	receivedCount := 0
	for receivedCount < 3 {
		select {
		case event := <-sub.Events():
			receivedCount++
			t.Logf("Received replayed event version %d", event.Version)
			// Events should be 3, 4, 5 (last 3 of 5)
			expectedVersion := receivedCount + 2
			if event.Version != expectedVersion {
				t.Errorf("Expected version %d, got %d", expectedVersion, event.Version)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for event %d", receivedCount+1)
		}
	}

	if receivedCount != 3 {
		t.Errorf("Expected 3 replayed events, got %d", receivedCount)
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with buffer size 5, replay only last
	pub.ConfigureTopic(TopicGraph, TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	// Publish 3 events
	for i := 1; i <= 3; i++ {
		err := pub.Publish(TopicGraph, EventSnapshot, map[string]int{"nodes": i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	// Subscribe and verify we get only last event
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGraph)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive only last event (version 3)
	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
		t.Logf("Received last event version %d", event.Version)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}

	// Verify no more events are sent
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no extra events
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with no buffer
	pub.ConfigureTopic(TopicGraph, TopicConfig{
		BufferSize: 0,
		ReplayAll:  false,
	})

	// Publish events before subscribing
	for i := 1; i <= 3; i++ {
		err := pub.Publish(TopicGraph, EventSnapshot, map[string]int{"nodes": i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	// Subscribe - should not receive any replayed events
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicGraph)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Verify no events are received (because none were buffered)
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no events replayed
		t.Log("Correctly received no events (buffer disabled)")
	}

	// Now publish a new event - subscriber should receive it
	err = pub.Publish(TopicGraph, EventSnapshot, map[string]int{"nodes": 4})
	if err != nil {
		t.Fatalf("Failed to publish new event: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Version != 4 {
			t.Errorf("Expected version 4, got %d", event.Version)
		}
		t.Logf("Received new event version %d", event.Version)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for new event")
	}
}

func TestGraphPublisher_Topics(t *testing.T) {
	pub := NewGraphPublisher()
	defer pub.Close()

	_ = pub.Publish(TopicGraph, EventSnapshot, map[string]int{"nodes": 1})
	_ = pub.Publish(TopicGraph, EventDiff, map[string]int{"changes": 2})
	_ = pub.Publish(TopicSelection, EventSelected, map[string]string{"id": "A"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	graph, _ := pub.Subscribe(ctx, TopicGraph)
	select {
	case ev := <-graph.Events():
		if ev.Type != EventDiff || ev.Version != 2 {
			t.Errorf("Expected the latest graph event, got %s v%d", ev.Type, ev.Version)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for replayed graph event")
	}

	sel, _ := pub.Subscribe(ctx, TopicSelection)
	select {
	case ev := <-sel.Events():
		t.Errorf("Selections must not replay, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	if n := pub.SubscriberCount(TopicGraph); n != 1 {
		t.Errorf("Expected 1 graph subscriber, got %d", n)
	}
	cancel()
	deadline := time.Now().Add(time.Second)
	for pub.SubscriberCount(TopicGraph) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := pub.SubscriberCount(TopicGraph); n != 0 {
		t.Errorf("Expected cancelled subscription to be removed, got %d", n)
	}
}

func TestPublisher_Closed(t *testing.T) {
	pub := NewSSEPublisher()
	sub, _ := pub.Subscribe(context.Background(), TopicGraph)
	pub.Close()

	if _, ok := <-sub.Events(); ok {
		t.Error("Expected subscription channel closed")
	}
	if err := pub.Publish(TopicGraph, EventSnapshot, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if _, err := pub.Subscribe(context.Background(), TopicGraph); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSSE(&buf, Event{Topic: TopicSelection, Type: EventSelected, Data: []byte(`{"id":"A"}`), Version: 7})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "id: 7\nevent: selected\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("Unexpected framing %q", out)
	}
	if !strings.Contains(out, `"data":{"id":"A"}`) {
		t.Errorf("Expected raw payload in %q", out)
	}
}
