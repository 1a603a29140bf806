package events

import (
	"testing"
	"time"
)

func TestQueue_PushAndDrain(t *testing.T) {
	now := time.Now().UTC()
	q := NewQueue(5 * time.Minute)
	q.Push(Event{Kind: KindWorkspaceRemoved, Target: "@2", TS: now.Add(time.Second)})
	q.Push(Event{Kind: KindWorkspaceAdded, Target: "@3", TS: now})

	got := q.Drain(now.Add(time.Second))
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != KindWorkspaceAdded {
		t.Fatalf("expected oldest event first, got %s", got[0].Kind)
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after drain, got %d", q.Len())
	}
}

func TestQueue_CollapsesSameKindAndTarget(t *testing.T) {
	now := time.Now().UTC()
	q := NewQueue(5 * time.Minute)
	q.Push(Event{Kind: KindDamage, Target: "%1", TS: now})
	q.Push(Event{Kind: KindDamage, Target: "%1", TS: now.Add(2 * time.Second)})
	q.Push(Event{Kind: KindDamage, Target: "%1", TS: now.Add(1 * time.Second)})
	q.Push(Event{Kind: KindDamage, Target: "%2", TS: now})

	got := q.Drain(now.Add(2 * time.Second))
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, e := range got {
		if e.Target == "%1" && !e.TS.Equal(now.Add(2*time.Second)) {
			t.Fatalf("expected newest %%1 event to win, got %s", e.TS)
		}
	}
}

func TestQueue_ExpiresStaleEntries(t *testing.T) {
	now := time.Now().UTC()
	q := NewQueue(2 * time.Minute)
	q.Push(Event{Kind: KindDamage, TS: now})

	got := q.Drain(now.Add(3 * time.Minute))
	if len(got) != 0 {
		t.Fatalf("expected 0 events after ttl expiry, got %d", len(got))
	}
	if q.Len() != 0 {
		t.Fatalf("expected expired event to be removed, got %d", q.Len())
	}
}
