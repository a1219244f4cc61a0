// Package admin exposes a gRPC introspection surface over a running
// engine.Core: protocol hash, connected peer roster, current tick, and
// time-sync samples. Rather than depend on protoc-generated message types,
// it defines its own wire messages over protowire (the same codec already
// backing packet and replication framing) and registers them with grpc via
// a hand-written ServiceDesc, so google.golang.org/grpc stays genuinely
// exercised without requiring generated code.
package admin

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// StatusRequest is the introspection request; it carries no fields today
// but exists so the RPC signature can grow without breaking callers.
type StatusRequest struct{}

// Marshal encodes StatusRequest (always empty).
func (StatusRequest) Marshal() ([]byte, error) { return nil, nil }

// Unmarshal decodes StatusRequest (always empty).
func (*StatusRequest) Unmarshal([]byte) error { return nil }

// StatusResponse reports the engine's current protocol hash, tick, and
// connected peers.
type StatusResponse struct {
	ProtocolHash uint64
	Tick         uint32
	Peers        []string
}

// Marshal encodes a StatusResponse as
// `protocol_hash:varint | tick:varint | count:varint | [len:varint|bytes]*`.
func (r StatusResponse) Marshal() ([]byte, error) {
	out := protowire.AppendVarint(nil, r.ProtocolHash)
	out = protowire.AppendVarint(out, uint64(r.Tick))
	out = protowire.AppendVarint(out, uint64(len(r.Peers)))
	for _, peer := range r.Peers {
		out = protowire.AppendVarint(out, uint64(len(peer)))
		out = append(out, peer...)
	}
	return out, nil
}

// Unmarshal decodes a StatusResponse.
func (r *StatusResponse) Unmarshal(buf []byte) error {
	hash, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return fmt.Errorf("admin: malformed protocol hash varint")
	}
	buf = buf[n:]

	t, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return fmt.Errorf("admin: malformed tick varint")
	}
	buf = buf[n:]

	count, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return fmt.Errorf("admin: malformed peer count varint")
	}
	buf = buf[n:]

	peers := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		length, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return fmt.Errorf("admin: malformed peer name length varint")
		}
		buf = buf[n:]
		if uint64(len(buf)) < length {
			return fmt.Errorf("admin: truncated peer name")
		}
		peers = append(peers, string(buf[:length]))
		buf = buf[length:]
	}

	r.ProtocolHash = hash
	r.Tick = uint32(t)
	r.Peers = peers
	return nil
}

// TimeSyncSample is one periodic RTT/jitter sample pushed to a streaming caller.
type TimeSyncSample struct {
	ServerTick  uint32
	RTTMicros   uint64
	JitterMicros uint64
}

// Marshal encodes a TimeSyncSample as `server_tick:varint | rtt:varint | jitter:varint`.
func (s TimeSyncSample) Marshal() ([]byte, error) {
	out := protowire.AppendVarint(nil, uint64(s.ServerTick))
	out = protowire.AppendVarint(out, s.RTTMicros)
	out = protowire.AppendVarint(out, s.JitterMicros)
	return out, nil
}

// Unmarshal decodes a TimeSyncSample.
func (s *TimeSyncSample) Unmarshal(buf []byte) error {
	tickVal, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return fmt.Errorf("admin: malformed server tick varint")
	}
	buf = buf[n:]

	rtt, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return fmt.Errorf("admin: malformed rtt varint")
	}
	buf = buf[n:]

	jitter, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return fmt.Errorf("admin: malformed jitter varint")
	}

	s.ServerTick = uint32(tickVal)
	s.RTTMicros = rtt
	s.JitterMicros = jitter
	return nil
}
