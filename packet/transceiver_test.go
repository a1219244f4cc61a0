package packet

import (
	"testing"
	"time"

	"replicore/channel"
)

func newTestPair() (*Transceiver, *Transceiver) {
	descriptors := []channel.Descriptor{
		{Name: "reliable", Mode: channel.ReliableOrdered, BasePriority: 1},
		{Name: "updates", Mode: channel.UnreliableUnordered, BasePriority: 1},
	}
	a := NewTransceiver(channel.NewSet(descriptors), channel.NewReceiverSet(descriptors), descriptors)
	b := NewTransceiver(channel.NewSet(descriptors), channel.NewReceiverSet(descriptors), descriptors)
	return a, b
}

func TestTransceiverFlushAndDeliver(t *testing.T) {
	sender, receiver := newTestPair()
	sender.Write(0, []byte("hello"), 1)
	now := time.Now()
	packets := sender.Flush(now, 100)
	if len(packets) != 1 {
		t.Fatalf("expected one packet, got %d", len(packets))
	}
	delivered, tick, err := receiver.OnPacketReceived(packets[0])
	if err != nil {
		t.Fatalf("OnPacketReceived returned error: %v", err)
	}
	if tick != 100 {
		t.Fatalf("tick = %d, want 100", tick)
	}
	if len(delivered) != 1 || string(delivered[0].Bytes) != "hello" {
		t.Fatalf("unexpected delivery: %+v", delivered)
	}
}

func TestTransceiverAcksReliableMessage(t *testing.T) {
	sender, receiver := newTestPair()
	sender.Write(0, []byte("payload"), 1)
	now := time.Now()
	packets := sender.Flush(now, 1)
	if len(packets) != 1 {
		t.Fatalf("expected one packet, got %d", len(packets))
	}
	if _, _, err := receiver.OnPacketReceived(packets[0]); err != nil {
		t.Fatalf("receiver failed to process packet: %v", err)
	}
	if ch := sender.send.Get(0); ch.PendingInFlight() != 1 {
		t.Fatalf("expected sender's reliable message to be in-flight before the ack round trip")
	}

	ackPackets := receiver.Flush(now, 1)
	if len(ackPackets) == 0 {
		//1.- Receiver had nothing of its own to say; still must carry the ack header.
		t.Fatalf("receiver must flush at least an ack-carrying packet")
	}
	if _, _, err := sender.OnPacketReceived(ackPackets[0]); err != nil {
		t.Fatalf("sender failed to process ack packet: %v", err)
	}
	if ch := sender.send.Get(0); ch.PendingInFlight() != 0 {
		t.Fatalf("expected reliable message to be acked after round trip")
	}
}

func TestTransceiverDuplicatePacketIgnored(t *testing.T) {
	sender, receiver := newTestPair()
	sender.Write(1, []byte("x"), 1)
	packets := sender.Flush(time.Now(), 1)
	first, _, err := receiver.OnPacketReceived(packets[0])
	if err != nil || len(first) != 1 {
		t.Fatalf("expected first delivery to succeed, got %v, %v", first, err)
	}
	second, _, err := receiver.OnPacketReceived(packets[0])
	if err != nil {
		t.Fatalf("duplicate packet should not error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("duplicate packet must not redeliver, got %v", second)
	}
}
