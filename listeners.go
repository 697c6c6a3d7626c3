package sapling

// subscription is one registered listener.
type subscription[F any] struct {
	id uint32
	fn F
}

// subscriptions is an ordered listener list with an explicit count. Owners
// derive their enabled/disabled booleans from len() right after add or
// remove, so the boolean never lags the list.
type subscriptions[F any] struct {
	entries []subscription[F]
	nextID  uint32
}

// add appends fn and returns its id.
func (s *subscriptions[F]) add(fn F) uint32 {
	s.nextID++
	s.entries = append(s.entries, subscription[F]{id: s.nextID, fn: fn})
	return s.nextID
}

// remove drops the listener with the given id. Reports whether it existed.
func (s *subscriptions[F]) remove(id uint32) bool {
	for i := range s.entries {
		if s.entries[i].id == id {
			copy(s.entries[i:], s.entries[i+1:])
			s.entries[len(s.entries)-1] = subscription[F]{}
			s.entries = s.entries[:len(s.entries)-1]
			return true
		}
	}
	return false
}

func (s *subscriptions[F]) len() int {
	return len(s.entries)
}

// snapshot returns the listeners in registration order. Listeners may add or
// remove subscriptions while the snapshot is being walked.
func (s *subscriptions[F]) snapshot() []F {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]F, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.fn
	}
	return out
}

// ListenerHandle removes a registered listener.
type ListenerHandle struct {
	remove func() bool
}

// Remove unregisters the listener. Removing twice, or removing the zero
// handle, is a no-op.
func (h ListenerHandle) Remove() {
	if h.remove == nil {
		return
	}
	h.remove()
}
