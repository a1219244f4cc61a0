package packet

import (
	"time"

	"replicore/channel"
)

// Delivered is one fully-reassembled application payload handed up from a
// received packet, identified by the channel it arrived on.
type Delivered struct {
	Channel channel.ID
	Bytes   []byte
}

// Transceiver ties a channel.Set/ReceiverSet pair to the packet-level
// header and ack bookkeeping, implementing the write/flush/on-packet-received
// contract between channels and the wire.
type Transceiver struct {
	send     *channel.Set
	recv     *channel.ReceiverSet
	recvTick *ReceiveTracker
	sendTick *SendTracker

	nextPacketID ID
	frags        map[channel.ID]*channel.Reassembler
}

// NewTransceiver builds a transceiver over the given send/receive channel sets.
func NewTransceiver(send *channel.Set, recv *channel.ReceiverSet, descriptors []channel.Descriptor) *Transceiver {
	frags := make(map[channel.ID]*channel.Reassembler, len(descriptors))
	for i := range descriptors {
		frags[channel.ID(i)] = channel.NewReassembler()
	}
	return &Transceiver{
		send:     send,
		recv:     recv,
		recvTick: NewReceiveTracker(),
		sendTick: NewSendTracker(),
		frags:    frags,
	}
}

// Write enqueues bytes on the named channel for the next flush.
func (t *Transceiver) Write(chID channel.ID, bytes []byte, priorityBias float32) {
	if ch := t.send.Get(chID); ch != nil {
		ch.Write(bytes, priorityBias)
	}
}

// Flush packs every channel's pending messages, draining in descending
// accumulated-priority order, into MTU-bounded packets stamped with the
// given local tick. It returns the raw bytes ready to hand to a socket
// driver ( external socket boundary).
func (t *Transceiver) Flush(now time.Time, tick uint16) [][]byte {
	t.send.AccrueAll(1)

	var packets [][]byte
	for first := true; ; first = false {
		budget := DefaultMTU - HeaderSize
		var batch []channel.Message
		var refs []sentMessageRef

		for _, chID := range t.send.ByPriority() {
			ch := t.send.Get(chID)
			if ch == nil {
				continue
			}
			for budget > 0 {
				peeked, ok := ch.Peek()
				if !ok {
					break
				}
				size := EncodedSize(peeked)
				if size > budget {
					//1.- Doesn't fit in this packet; leave it queued for the next flush cycle.
					break
				}
				msg, ok := ch.DrainOne(now)
				if !ok {
					break
				}
				batch = append(batch, msg)
				refs = append(refs, sentMessageRef{channel: uint16(msg.Channel), messageID: uint32(msg.ID)})
				budget -= size
			}
		}
		//1.- Keep looping to pack further channels' backlog, but always emit at
		//    least one packet per flush so ack/tick state reaches the peer even
		//    with nothing queued to send.
		if len(batch) == 0 && !first {
			break
		}

		id := t.nextPacketID
		t.nextPacketID = t.nextPacketID.Add(1)
		lastAck, ackBits := t.recvTick.Ack()
		header := Header{
			PacketID:   id,
			LastAckID:  lastAck,
			AckBits:    ackBits,
			SenderTick: tick,
		}
		hdr := header.Encode()
		body := EncodeBody(batch)
		pkt := make([]byte, 0, len(hdr)+len(body))
		pkt = append(pkt, hdr[:]...)
		pkt = append(pkt, body...)
		packets = append(packets, pkt)

		t.sendTick.Record(id, refs)
	}
	return packets
}

// OnPacketReceived decodes an inbound packet, discarding duplicates and
// packets outside the ack window, reassembles complete messages per
// channel, and acknowledges any of our own outgoing reliable messages the
// peer has now confirmed.
func (t *Transceiver) OnPacketReceived(buf []byte) ([]Delivered, uint16, error) {
	header, body, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	if !t.recvTick.Observe(header.PacketID) {
		//1.- Duplicate or stale packet: ignore its body but still process acks below
		//    since the peer's ack state may have advanced independently.
		t.applyAcks(header)
		return nil, header.SenderTick, nil
	}

	messages, err := DecodeBody(body)
	if err != nil {
		return nil, 0, err
	}

	var delivered []Delivered
	for _, msg := range messages {
		receiver, err := t.recv.Get(msg.Channel)
		if err != nil {
			continue
		}
		frag, ok := t.frags[msg.Channel]
		if !ok {
			frag = channel.NewReassembler()
			t.frags[msg.Channel] = frag
		}
		payload, complete := frag.Add(msg)
		if !complete {
			continue
		}
		whole := msg
		whole.Bytes = payload
		whole.FragmentIndex = 0
		whole.FragmentCount = 1
		for _, out := range receiver.Receive(whole) {
			delivered = append(delivered, Delivered{Channel: msg.Channel, Bytes: out})
		}
	}

	t.applyAcks(header)
	return delivered, header.SenderTick, nil
}

// applyAcks reconciles the peer's (last_ack_id, ack_bits) pair against our
// own sent-packet bookkeeping, acknowledging a message as soon as any
// confirmed packet carried one of its fragments; packets carrying its other
// fragments are not awaited.
func (t *Transceiver) applyAcks(header Header) {
	for _, id := range AckedIDs(header.LastAckID, header.AckBits) {
		refs, ok := t.sendTick.Take(id)
		if !ok {
			continue
		}
		for _, ref := range refs {
			if ch := t.send.Get(channel.ID(ref.channel)); ch != nil {
				ch.Ack(channel.MessageID(ref.messageID))
			}
		}
	}
}
