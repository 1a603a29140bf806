package host

// Handler receives an event and reports whether it consumed it. A consumed
// input event is not forwarded to the rest of the host.
type Handler func(Event) (consumed bool)

// Subscription is returned by Subscribe. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Events is a source of host events.
type Events interface {
	Subscribe(h Handler) Subscription
}

// Bus is a single-threaded Events implementation. Handlers may subscribe or
// unsubscribe while an event is being dispatched.
type Bus struct {
	subs []*busSub
}

type busSub struct {
	bus    *Bus
	h      Handler
	active bool
}

func (s *busSub) Unsubscribe() {
	if !s.active {
		return
	}
	s.active = false
	subs := s.bus.subs[:0]
	for _, o := range s.bus.subs {
		if o != s {
			subs = append(subs, o)
		}
	}
	s.bus.subs = subs
}

// Subscribe registers h for every dispatched event.
func (b *Bus) Subscribe(h Handler) Subscription {
	s := &busSub{bus: b, h: h, active: true}
	b.subs = append(b.subs, s)
	return s
}

// Dispatch delivers e to every subscriber registered when the call started
// and still active when its turn comes. It reports whether any of them
// consumed the event.
func (b *Bus) Dispatch(e Event) bool {
	snapshot := make([]*busSub, len(b.subs))
	copy(snapshot, b.subs)
	consumed := false
	for _, s := range snapshot {
		if !s.active {
			continue
		}
		if s.h(e) {
			consumed = true
		}
	}
	return consumed
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int { return len(b.subs) }
