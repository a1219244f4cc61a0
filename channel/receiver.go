package channel

import "sync"

// Receiver is the receive-side counterpart to Channel: it applies the
// mode-specific ordering/dedup contract to inbound messages before handing
// reassembled payloads to the application.
type Receiver struct {
	mu sync.Mutex

	mode  Mode
	frags *Reassembler

	// UnreliableSequenced: highest sequence (message id) delivered so far.
	highestSeq MessageID
	sequenced  bool

	// ReliableOrdered: strictly increasing next-expected id plus a buffer of
	// arrivals that outran it.
	nextExpected MessageID
	ordered      bool
	buffered     map[MessageID][]byte

	// Deduplication for reliable modes: ids already delivered.
	delivered map[MessageID]struct{}
}

// NewReceiver constructs a receive-side channel state machine.
func NewReceiver(mode Mode) *Receiver {
	r := &Receiver{
		mode:  mode,
		frags: NewReassembler(),
	}
	if mode.Ordered() {
		r.ordered = true
		r.nextExpected = 1
		r.buffered = make(map[MessageID][]byte)
	}
	if mode.Reliable() {
		r.delivered = make(map[MessageID]struct{})
	}
	return r
}

// Receive ingests one wire message (already deframed from a packet) and
// returns, in order, the payloads now ready for the application.
func (r *Receiver) Receive(msg Message) [][]byte {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode.Reliable() {
		if _, dup := r.delivered[msg.ID]; dup {
			//1.- Duplicate packet containing an already-delivered message: idempotent no-op.
			return nil
		}
	} else if r.mode == UnreliableSequenced {
		if r.sequenced && msg.ID <= r.highestSeq {
			//1.- Drop messages older than the highest sequence number seen, return nil
			return nil
		}
	}

	payload, complete := r.frags.Add(msg)
	if !complete {
		return nil
	}

	switch {
	case r.mode == UnreliableUnordered:
		return [][]byte{payload}
	case r.mode == UnreliableSequenced:
		r.highestSeq = msg.ID
		r.sequenced = true
		return [][]byte{payload}
	case r.mode == ReliableUnordered:
		r.delivered[msg.ID] = struct{}{}
		return [][]byte{payload}
	case r.mode == ReliableOrdered:
		r.delivered[msg.ID] = struct{}{}
		return r.drainOrderedLocked(msg.ID, payload)
	default:
		return [][]byte{payload}
	}
}

func (r *Receiver) drainOrderedLocked(id MessageID, payload []byte) [][]byte {
	if id != r.nextExpected {
		//1.- Arrived ahead of the delivery cursor: buffer until the gap closes.
		r.buffered[id] = payload
		return nil
	}
	out := [][]byte{payload}
	r.nextExpected++
	for {
		next, ok := r.buffered[r.nextExpected]
		if !ok {
			break
		}
		delete(r.buffered, r.nextExpected)
		out = append(out, next)
		r.nextExpected++
	}
	return out
}
