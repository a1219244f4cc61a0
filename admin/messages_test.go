package admin

import "testing"

func TestStatusResponseRoundTrip(t *testing.T) {
	want := StatusResponse{ProtocolHash: 0xdeadbeef, Tick: 42, Peers: []string{"alice", "bob"}}
	data, err := want.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got StatusResponse
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got.ProtocolHash != want.ProtocolHash || got.Tick != want.Tick {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if len(got.Peers) != 2 || got.Peers[0] != "alice" || got.Peers[1] != "bob" {
		t.Fatalf("expected peers round-tripped, got %v", got.Peers)
	}
}

func TestTimeSyncSampleRoundTrip(t *testing.T) {
	want := TimeSyncSample{ServerTick: 7, RTTMicros: 15000, JitterMicros: 500}
	data, err := want.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got TimeSyncSample
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
