package input

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"replicore/tick"
)

// EncodeFrame serializes one input submission: peer-relative sequence_id,
// sent_at, and the redundancy window of trailing samples Buffer.Push
// returned, so a single dropped unreliable packet doesn't lose an input
// frame outright.
func EncodeFrame(sequenceID uint64, sentAt time.Time, window []Sample) []byte {
	out := protowire.AppendVarint(nil, sequenceID)
	out = protowire.AppendVarint(out, uint64(sentAt.UnixNano()))
	out = protowire.AppendVarint(out, uint64(len(window)))
	for _, s := range window {
		out = protowire.AppendVarint(out, uint64(s.Tick))
		out = protowire.AppendVarint(out, uint64(len(s.Data)))
		out = append(out, s.Data...)
	}
	return out
}

// DecodeFrame parses a frame produced by EncodeFrame.
func DecodeFrame(buf []byte) (sequenceID uint64, sentAt time.Time, window []Sample, err error) {
	sequenceID, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, nil, fmt.Errorf("input: malformed sequence_id varint")
	}
	buf = buf[n:]

	nanos, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, nil, fmt.Errorf("input: malformed sent_at varint")
	}
	buf = buf[n:]
	sentAt = time.Unix(0, int64(nanos))

	count, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, time.Time{}, nil, fmt.Errorf("input: malformed window count varint")
	}
	buf = buf[n:]

	window = make([]Sample, 0, count)
	for i := uint64(0); i < count; i++ {
		t, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return 0, time.Time{}, nil, fmt.Errorf("input: malformed sample tick varint")
		}
		buf = buf[n:]

		length, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return 0, time.Time{}, nil, fmt.Errorf("input: malformed sample length varint")
		}
		buf = buf[n:]

		if uint64(len(buf)) < length {
			return 0, time.Time{}, nil, fmt.Errorf("input: truncated sample, want %d have %d", length, len(buf))
		}
		data := append([]byte(nil), buf[:length]...)
		buf = buf[length:]

		window = append(window, Sample{Tick: tick.Tick(t), Data: data})
	}
	return sequenceID, sentAt, window, nil
}
