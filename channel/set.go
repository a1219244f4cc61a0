package channel

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Descriptor captures how a channel was registered, used both to build the
// live Channel/Receiver pair per peer and to feed the protocol hash in
// protocol.Registry.
type Descriptor struct {
	Name         string
	Mode         Mode
	BasePriority float32
}

// Set owns every registered channel's send-side state for one peer
// connection, keyed by ID in registration order.
type Set struct {
	mu       sync.Mutex
	order    []ID
	channels map[ID]*Channel
}

// NewSet builds send-side channels from descriptors, assigning ids in slice order.
func NewSet(descriptors []Descriptor) *Set {
	s := &Set{channels: make(map[ID]*Channel, len(descriptors))}
	for i, d := range descriptors {
		id := ID(i)
		s.channels[id] = New(id, d.Name, d.Mode, d.BasePriority)
		s.order = append(s.order, id)
	}
	return s
}

// Get returns the channel for the given id, or nil if unregistered.
func (s *Set) Get(id ID) *Channel {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[id]
}

// AccrueAll advances every channel's accumulated priority by one flush cycle.
func (s *Set) AccrueAll(priorityBias float32) {
	if s == nil {
		return
	}
	s.mu.Lock()
	ids := append([]ID(nil), s.order...)
	s.mu.Unlock()
	for _, id := range ids {
		if ch := s.Get(id); ch != nil {
			ch.Accrue(priorityBias)
		}
	}
}

// DetectLosses runs loss detection across every reliable channel.
func (s *Set) DetectLosses(now time.Time, rtt time.Duration) {
	if s == nil {
		return
	}
	s.mu.Lock()
	ids := append([]ID(nil), s.order...)
	s.mu.Unlock()
	for _, id := range ids {
		if ch := s.Get(id); ch != nil {
			ch.DetectLosses(now, rtt)
		}
	}
}

// ByPriority returns channel ids ordered by descending accumulated
// priority, the order the packet builder drains them in.
func (s *Set) ByPriority() []ID {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	ids := append([]ID(nil), s.order...)
	s.mu.Unlock()
	sort.SliceStable(ids, func(i, j int) bool {
		return s.Get(ids[i]).AccumulatedPriority() > s.Get(ids[j]).AccumulatedPriority()
	})
	return ids
}

// ReceiverSet owns the receive-side Receiver per channel for one peer connection.
type ReceiverSet struct {
	mu        sync.Mutex
	receivers map[ID]*Receiver
}

// NewReceiverSet builds receive-side state from the same descriptors used for Set.
func NewReceiverSet(descriptors []Descriptor) *ReceiverSet {
	rs := &ReceiverSet{receivers: make(map[ID]*Receiver, len(descriptors))}
	for i, d := range descriptors {
		rs.receivers[ID(i)] = NewReceiver(d.Mode)
	}
	return rs
}

// Get returns the receiver for the given channel id.
func (rs *ReceiverSet) Get(id ID) (*Receiver, error) {
	if rs == nil {
		return nil, fmt.Errorf("receiver set not initialised")
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	r, ok := rs.receivers[id]
	if !ok {
		return nil, fmt.Errorf("%w: channel id %d", ErrUnknownChannel, id)
	}
	return r, nil
}
