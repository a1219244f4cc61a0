package timesync

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType discriminates the payloads carried on the engine's internal
// control channel: Ping and Pong, given a wire presence here instead of
// being bookkept only locally by Exchange.
type MessageType byte

const (
	MessageTypePing MessageType = 1
	MessageTypePong MessageType = 2
)

// PeekType reports which message type a raw control-channel payload carries,
// letting the orchestrator dispatch without fully decoding twice.
func PeekType(buf []byte) (MessageType, bool) {
	if len(buf) < 1 {
		return 0, false
	}
	return MessageType(buf[0]), true
}

// EncodePing serializes a PING: type | sequence:varint | sent_at_unix_nanos:varint.
func EncodePing(sequence uint32, sentAt time.Time) []byte {
	out := []byte{byte(MessageTypePing)}
	out = protowire.AppendVarint(out, uint64(sequence))
	out = protowire.AppendVarint(out, uint64(sentAt.UnixNano()))
	return out
}

// DecodePing parses a PING payload produced by EncodePing.
func DecodePing(buf []byte) (sequence uint32, sentAt time.Time, err error) {
	if len(buf) < 1 || MessageType(buf[0]) != MessageTypePing {
		return 0, time.Time{}, fmt.Errorf("timesync: not a ping payload")
	}
	buf = buf[1:]
	seq, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, fmt.Errorf("timesync: malformed ping sequence")
	}
	buf = buf[n:]
	nanos, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, fmt.Errorf("timesync: malformed ping sent_at")
	}
	return uint32(seq), time.Unix(0, int64(nanos)), nil
}

// EncodePong serializes a PONG: type | sequence:varint | sent_at_unix_nanos:varint | remote_processing_nanos:varint.
// sentAt echoes the PING's own send time so the pinger can measure round trip
// without keeping server-side state.
func EncodePong(sequence uint32, sentAt time.Time, remoteProcessing time.Duration) []byte {
	out := []byte{byte(MessageTypePong)}
	out = protowire.AppendVarint(out, uint64(sequence))
	out = protowire.AppendVarint(out, uint64(sentAt.UnixNano()))
	out = protowire.AppendVarint(out, uint64(remoteProcessing.Nanoseconds()))
	return out
}

// DecodePong parses a PONG payload produced by EncodePong.
func DecodePong(buf []byte) (sequence uint32, sentAt time.Time, remoteProcessing time.Duration, err error) {
	if len(buf) < 1 || MessageType(buf[0]) != MessageTypePong {
		return 0, time.Time{}, 0, fmt.Errorf("timesync: not a pong payload")
	}
	buf = buf[1:]
	seq, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, 0, fmt.Errorf("timesync: malformed pong sequence")
	}
	buf = buf[n:]
	nanos, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, 0, fmt.Errorf("timesync: malformed pong sent_at")
	}
	buf = buf[n:]
	procNanos, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, 0, fmt.Errorf("timesync: malformed pong remote_processing")
	}
	return uint32(seq), time.Unix(0, int64(nanos)), time.Duration(procNanos), nil
}
