package events

import (
	"sort"
	"sync"
	"time"
)

// Queue buffers events between the collector goroutine and the UI loop.
// Repeated events with the same kind and target collapse into the newest.
type Queue struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[queueKey]Event
}

type queueKey struct{ kind, target string }

func NewQueue(ttl time.Duration) *Queue {
	return &Queue{ttl: ttl, data: make(map[queueKey]Event)}
}

func (q *Queue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	k := queueKey{e.Kind, e.Target}
	if old, ok := q.data[k]; ok && old.TS.After(e.TS) {
		return
	}
	q.data[k] = e
}

// Drain removes and returns every queued event in timestamp order. Events
// older than the TTL are dropped.
func (q *Queue) Drain(now time.Time) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]Event, 0, len(q.data))
	for k, e := range q.data {
		delete(q.data, k)
		if q.ttl > 0 && now.Sub(e.TS) > q.ttl {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TS.Equal(result[j].TS) {
			return result[i].Kind < result[j].Kind
		}
		return result[i].TS.Before(result[j].TS)
	})
	return result
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}
