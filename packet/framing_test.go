package packet

import (
	"bytes"
	"testing"

	"replicore/channel"
)

func TestEncodeDecodeBodyRoundTrip(t *testing.T) {
	msgs := []channel.Message{
		{Channel: 0, ID: 1, FragmentIndex: 0, FragmentCount: 1, Bytes: []byte("hello")},
		{Channel: 2, ID: 500, FragmentIndex: 1, FragmentCount: 3, Bytes: []byte("world!")},
	}
	body := EncodeBody(msgs)
	got, err := DecodeBody(body)
	if err != nil {
		t.Fatalf("DecodeBody returned error: %v", err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("decoded %d messages, want %d", len(got), len(msgs))
	}
	for i := range msgs {
		if got[i].Channel != msgs[i].Channel || got[i].ID != msgs[i].ID ||
			got[i].FragmentIndex != msgs[i].FragmentIndex || got[i].FragmentCount != msgs[i].FragmentCount ||
			!bytes.Equal(got[i].Bytes, msgs[i].Bytes) {
			t.Fatalf("message %d mismatch: got %+v want %+v", i, got[i], msgs[i])
		}
	}
}

func TestDecodeBodyTruncatedPayload(t *testing.T) {
	msgs := []channel.Message{{Channel: 0, ID: 1, FragmentCount: 1, Bytes: []byte("payload")}}
	body := EncodeBody(msgs)
	if _, err := DecodeBody(body[:len(body)-2]); err == nil {
		t.Fatalf("expected an error decoding a truncated body")
	}
}

func TestEncodedSizeMatchesEncodeBody(t *testing.T) {
	msg := channel.Message{Channel: 3, ID: 12345, FragmentIndex: 0, FragmentCount: 1, Bytes: []byte("abcdef")}
	if got, want := EncodedSize(msg), len(EncodeBody([]channel.Message{msg})); got != want {
		t.Fatalf("EncodedSize() = %d, want %d", got, want)
	}
}
