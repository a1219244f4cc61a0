package channel

// MessageID identifies a message for acknowledgement purposes, unique per
// channel and monotonically increasing. IDs are compared as plain integers,
// so wraparound is not handled; 32 bits is ample headroom for a single
// session.
type MessageID uint32

// Message is an opaque payload framed for a single channel, optionally one
// fragment of a larger logical message.
type Message struct {
	Channel       ID
	ID            MessageID
	FragmentIndex uint16
	FragmentCount uint16
	Bytes         []byte
}

// IsFragment reports whether this message is part of a multi-fragment logical message.
func (m Message) IsFragment() bool {
	return m.FragmentCount > 1
}

// maxFragmentPayload bounds a single fragment body so that, framed inside a
// packet alongside the varint channel/len header, it still fits comfortably
// under common MTUs.
const maxFragmentPayload = 1100

// Fragment splits bytes into one or more fragments no larger than
// maxFragmentPayload, sharing the supplied message id.
func Fragment(chID ID, id MessageID, payload []byte) []Message {
	if len(payload) <= maxFragmentPayload {
		return []Message{{Channel: chID, ID: id, FragmentIndex: 0, FragmentCount: 1, Bytes: payload}}
	}
	count := (len(payload) + maxFragmentPayload - 1) / maxFragmentPayload
	fragments := make([]Message, 0, count)
	for i := 0; i < count; i++ {
		start := i * maxFragmentPayload
		end := start + maxFragmentPayload
		if end > len(payload) {
			end = len(payload)
		}
		fragments = append(fragments, Message{
			Channel:       chID,
			ID:            id,
			FragmentIndex: uint16(i),
			FragmentCount: uint16(count),
			Bytes:         payload[start:end],
		})
	}
	return fragments
}

// Reassembler collects fragments sharing a message id until all are present.
type Reassembler struct {
	pending map[MessageID]*partial
}

type partial struct {
	total   uint16
	have    int
	parts   [][]byte
	present []bool
}

// NewReassembler constructs an empty fragment reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[MessageID]*partial)}
}

// Add ingests one fragment and returns the reassembled payload once every
// fragment sharing its message id has arrived.
func (r *Reassembler) Add(msg Message) ([]byte, bool) {
	if !msg.IsFragment() {
		return msg.Bytes, true
	}
	p, ok := r.pending[msg.ID]
	if !ok {
		p = &partial{
			total:   msg.FragmentCount,
			parts:   make([][]byte, msg.FragmentCount),
			present: make([]bool, msg.FragmentCount),
		}
		r.pending[msg.ID] = p
	}
	if int(msg.FragmentIndex) >= len(p.parts) {
		return nil, false
	}
	if !p.present[msg.FragmentIndex] {
		p.present[msg.FragmentIndex] = true
		p.parts[msg.FragmentIndex] = msg.Bytes
		p.have++
	}
	if p.have < int(p.total) {
		return nil, false
	}
	delete(r.pending, msg.ID)
	total := 0
	for _, part := range p.parts {
		total += len(part)
	}
	out := make([]byte, 0, total)
	for _, part := range p.parts {
		out = append(out, part...)
	}
	return out, true
}

// Forget discards any partial reassembly state for a message id, used when a
// connection resets.
func (r *Reassembler) Forget(id MessageID) {
	delete(r.pending, id)
}
