package channel

import "testing"

func TestReceiverSequencedDropsStale(t *testing.T) {
	r := NewReceiver(UnreliableSequenced)
	out := r.Receive(Message{Channel: 0, ID: 5, FragmentCount: 1, Bytes: []byte("five")})
	if len(out) != 1 {
		t.Fatalf("expected delivery of first sample")
	}
	//1.- A message id older than the highest seen must be dropped.
	out = r.Receive(Message{Channel: 0, ID: 3, FragmentCount: 1, Bytes: []byte("three")})
	if len(out) != 0 {
		t.Fatalf("stale sequenced message should be dropped, got %v", out)
	}
	out = r.Receive(Message{Channel: 0, ID: 6, FragmentCount: 1, Bytes: []byte("six")})
	if len(out) != 1 {
		t.Fatalf("newer sequenced message should be delivered")
	}
}

func TestReceiverReliableOrderedBuffersOutOfOrder(t *testing.T) {
	r := NewReceiver(ReliableOrdered)
	//1.- Message 2 arrives before message 1 and must be buffered, not delivered.
	out := r.Receive(Message{Channel: 0, ID: 2, FragmentCount: 1, Bytes: []byte("two")})
	if len(out) != 0 {
		t.Fatalf("out of order message must be buffered, got %v", out)
	}
	out = r.Receive(Message{Channel: 0, ID: 1, FragmentCount: 1, Bytes: []byte("one")})
	if len(out) != 2 {
		t.Fatalf("closing the gap should flush both messages in order, got %d", len(out))
	}
	if string(out[0]) != "one" || string(out[1]) != "two" {
		t.Fatalf("messages delivered out of order: %v", out)
	}
}

func TestReceiverReliableUnorderedDeduplicates(t *testing.T) {
	r := NewReceiver(ReliableUnordered)
	msg := Message{Channel: 0, ID: 7, FragmentCount: 1, Bytes: []byte("payload")}
	first := r.Receive(msg)
	second := r.Receive(msg)
	if len(first) != 1 {
		t.Fatalf("first delivery should succeed")
	}
	if len(second) != 0 {
		t.Fatalf("duplicate packet must be idempotent, got %v", second)
	}
}
