package events

import (
	"sync"
	"testing"
)

func TestInMemoryEventStore_AppendAssignsVersions(t *testing.T) {
	store := NewInMemoryEventStore()

	if err := store.AppendEvent("run-1", NewEvent("run_started", "run-1", "")); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := store.AppendEvent("run-1", NewEvent("candidate_evaluated", "run-1", "lots=2")); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}

	events, err := store.ReadEvents("run-1")
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for i, event := range events {
		if event.Version() != i+1 {
			t.Errorf("event %d: expected version %d, got %d", i, i+1, event.Version())
		}
	}
	if events[1].Type() != "candidate_evaluated" || events[1].Detail() != "lots=2" {
		t.Errorf("unexpected second event: %s %s", events[1].Type(), events[1].Detail())
	}
}

func TestInMemoryEventStore_StreamsAreIsolated(t *testing.T) {
	store := NewInMemoryEventStore()

	_ = store.AppendEvent("run-1", NewEvent("run_started", "run-1", ""))
	_ = store.AppendEvent("run-2", NewEvent("run_started", "run-2", ""))
	_ = store.AppendEvent("run-1", NewEvent("run_completed", "run-1", "feasible"))

	first, _ := store.ReadEvents("run-1")
	second, _ := store.ReadEvents("run-2")
	all, _ := store.ReadAllEvents()

	if len(first) != 2 || len(second) != 1 {
		t.Errorf("expected stream sizes 2 and 1, got %d and %d", len(first), len(second))
	}
	if len(all) != 3 {
		t.Errorf("expected 3 events in global order, got %d", len(all))
	}
	if second[0].Version() != 1 {
		t.Errorf("expected per-stream versioning, got %d", second[0].Version())
	}
}

func TestInMemoryEventStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryEventStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = store.AppendEvent("run-1", NewEvent("candidate_evaluated", "run-1", ""))
			}
		}()
	}
	wg.Wait()

	events, err := store.ReadEvents("run-1")
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 200 {
		t.Fatalf("expected 200 events, got %d", len(events))
	}
	for i, event := range events {
		if event.Version() != i+1 {
			t.Fatalf("event %d: expected version %d, got %d", i, i+1, event.Version())
		}
	}
}
