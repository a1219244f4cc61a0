package trace

import (
	"testing"
	"time"
)

func TestWriterThenReaderRoundTripsEventsAndFrames(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }

	w, _, err := NewWriter(dir, "match one", 0xABCD, clock)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.AppendEvent(1, "connected", []byte("peer-a")); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if err := w.AppendFrame(1, []byte{1, 2, 3}); err != nil {
		t.Fatalf("AppendFrame: %v", err)
	}
	now = now.Add(time.Second)
	if err := w.AppendFrame(2, []byte{4, 5, 6, 7}); err != nil {
		t.Fatalf("AppendFrame: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := Open(w.Directory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reader.Header.ProtocolHash != 0xABCD {
		t.Fatalf("expected protocol hash 0xABCD, got %#x", reader.Header.ProtocolHash)
	}

	events, err := ReadEvents(w.Directory())
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 1 || events[0].Type != "connected" || string(events[0].Payload) != "peer-a" {
		t.Fatalf("unexpected events: %+v", events)
	}

	frames, err := ReadFrames(w.Directory())
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Tick != 1 || len(frames[0].Payload) != 3 {
		t.Fatalf("unexpected first frame: %+v", frames[0])
	}
	if frames[1].Tick != 2 || len(frames[1].Payload) != 4 {
		t.Fatalf("unexpected second frame: %+v", frames[1])
	}
}

func TestOpenFailsWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Fatalf("expected error opening directory without header.json")
	}
}
