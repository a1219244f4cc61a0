package packet

// ackWindow is how many packets behind last_ack_id the bitfield covers, per
// the normative header (`ack_bits:u32`, "the 32 packets preceding last-acked").
const ackWindow = 32

// ReceiveTracker maintains the receive side's view of which packet ids have
// arrived, producing the (last_ack_id, ack_bits) pair carried in this
// peer's own outgoing headers.
type ReceiveTracker struct {
	hasAny    bool
	highest   ID
	received  map[ID]struct{}
}

// NewReceiveTracker constructs an empty receive tracker.
func NewReceiveTracker() *ReceiveTracker {
	return &ReceiveTracker{received: make(map[ID]struct{})}
}

// Observe records an inbound packet id. It returns false if the packet is a
// duplicate or falls outside the ack window behind the current highest id,
// failure model ("duplicate packets are idempotent ...
// packets arriving more than the ack window behind last_ack_packet_id are
// discarded").
func (t *ReceiveTracker) Observe(id ID) bool {
	if !t.hasAny {
		t.hasAny = true
		t.highest = id
		t.received[id] = struct{}{}
		t.prune()
		return true
	}
	dist := id.Since(t.highest)
	if dist < -ackWindow {
		return false
	}
	if _, dup := t.received[id]; dup {
		return false
	}
	t.received[id] = struct{}{}
	if dist > 0 {
		t.highest = id
	}
	t.prune()
	return true
}

func (t *ReceiveTracker) prune() {
	for id := range t.received {
		if t.highest.Since(id) > ackWindow {
			delete(t.received, id)
		}
	}
}

// Ack builds the (last_ack_id, ack_bits) pair to embed in the next outgoing header.
func (t *ReceiveTracker) Ack() (ID, uint32) {
	if !t.hasAny {
		return 0, 0
	}
	var bits uint32
	for i := 0; i < ackWindow; i++ {
		candidate := t.highest.Add(-(i + 1))
		if _, ok := t.received[candidate]; ok {
			bits |= 1 << uint(i)
		}
	}
	return t.highest, bits
}

// Add returns id shifted by delta packets, wrapping at 65536, mirroring tick.Tick.Add.
func (id ID) Add(delta int) ID {
	return ID(uint16(int32(uint16(id)) + int32(delta)))
}

// AckedIDs expands a (last_ack_id, ack_bits) pair into the full set of
// packet ids the remote peer claims to have received.
func AckedIDs(lastAck ID, bits uint32) []ID {
	ids := []ID{lastAck}
	for i := 0; i < ackWindow; i++ {
		if bits&(1<<uint(i)) != 0 {
			ids = append(ids, lastAck.Add(-(i+1)))
		}
	}
	return ids
}

// sentRecord is what the SendTracker remembers about one outgoing packet.
type sentRecord struct {
	messages []sentMessageRef
}

type sentMessageRef struct {
	channel   uint16
	messageID uint32
}

// SendTracker remembers which (channel, message) pairs rode on which
// outgoing packet id, so that once the peer acknowledges the packet we can
// acknowledge the messages it carried back to the owning channel.Channel.
type SendTracker struct {
	sent map[ID]sentRecord
}

// NewSendTracker constructs an empty send tracker.
func NewSendTracker() *SendTracker {
	return &SendTracker{sent: make(map[ID]sentRecord)}
}

// Record associates an outgoing packet id with the messages it carries.
func (t *SendTracker) Record(id ID, refs []sentMessageRef) {
	t.sent[id] = sentRecord{messages: refs}
}

// Forget discards bookkeeping for a packet id no longer relevant to acking
// (e.g. pruned due to window expiry).
func (t *SendTracker) Forget(id ID) {
	delete(t.sent, id)
}

// Take returns and removes the message refs recorded for a packet id.
func (t *SendTracker) Take(id ID) ([]sentMessageRef, bool) {
	rec, ok := t.sent[id]
	if !ok {
		return nil, false
	}
	delete(t.sent, id)
	return rec.messages, ok
}
