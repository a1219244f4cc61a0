package packet

import "testing"

func TestReceiveTrackerBuildsAckBitfield(t *testing.T) {
	rt := NewReceiveTracker()
	for _, id := range []ID{0, 1, 2, 4} {
		if !rt.Observe(id) {
			t.Fatalf("expected id %d to be accepted", id)
		}
	}
	lastAck, bits := rt.Ack()
	if lastAck != 4 {
		t.Fatalf("lastAck = %d, want 4", lastAck)
	}
	//1.- Bit i represents packet (last_ack_id - 1 - i): id 3 missing, 2/1/0 present.
	want := uint32(0b1110)
	if bits != want {
		t.Fatalf("ack bits = %b, want %b", bits, want)
	}
}

func TestReceiveTrackerDuplicateAndStaleRejected(t *testing.T) {
	rt := NewReceiveTracker()
	rt.Observe(10)
	if rt.Observe(10) {
		t.Fatalf("duplicate packet id must be rejected")
	}
	//1.- More than ackWindow behind the highest id falls outside the tracked window.
	if rt.Observe(ID(10).Add(-ackWindow - 1)) {
		t.Fatalf("packet far behind the ack window must be discarded")
	}
}

func TestAckReconstructionAcrossWraparound(t *testing.T) {
	rt := NewReceiveTracker()
	ids := []ID{65533, 65534, 65535, 0, 1}
	for _, id := range ids {
		if !rt.Observe(id) {
			t.Fatalf("expected id %d to be accepted across wraparound", id)
		}
	}
	lastAck, bits := rt.Ack()
	if lastAck != 1 {
		t.Fatalf("lastAck = %d, want 1", lastAck)
	}
	acked := AckedIDs(lastAck, bits)
	seen := make(map[ID]bool, len(acked))
	for _, id := range acked {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Fatalf("expected %d to be reconstructed as acked, got %v", id, acked)
		}
	}
}

func TestSendTrackerRecordAndTake(t *testing.T) {
	st := NewSendTracker()
	refs := []sentMessageRef{{channel: 1, messageID: 9}}
	st.Record(5, refs)
	got, ok := st.Take(5)
	if !ok || len(got) != 1 || got[0] != refs[0] {
		t.Fatalf("Take returned %v, %v", got, ok)
	}
	if _, ok := st.Take(5); ok {
		t.Fatalf("Take should remove the record once consumed")
	}
}
