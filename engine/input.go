package engine

import (
	"time"

	"replicore/channel"
	"replicore/input"
	"replicore/tick"
)

// WithInputChannel designates an already-registered channel as the input
// stream: the client flushes its locally-buffered redundancy window onto it
// each PostUpdate, and the server decodes, gates, and merges incoming frames
// from it each PreUpdate. Without this option input wiring
// is inactive and the host must move input payloads itself via RegisterChannel.
func WithInputChannel(id channel.ID) Option {
	return func(c *Core) {
		c.inputChannel = id
		c.hasInputChannel = true
	}
}

// WithInputGate overrides the default staleness/rate-limit configuration the
// server-side input gate enforces per peer.
func WithInputGate(cfg input.Config) Option {
	return func(c *Core) { c.inputGate = input.NewGate(cfg) }
}

// PushLocalInput records a locally-produced input sample for the current
// tick and returns the encoded frame (sequence, redundancy window) ready to
// hand to the host's own send path, or to let postUpdate flush automatically
// when WithInputChannel is configured.
func (c *Core) PushLocalInput(at tick.Tick, data []byte) []byte {
	window := c.localInputBuffer.Push(input.Sample{Tick: at, Data: data})
	c.localInputSeq++
	return input.EncodeFrame(c.localInputSeq, time.Now(), window)
}

// flushLocalInput writes the current local input window to the configured
// input channel, called from postUpdate once per tick when this Core is
// driving a client-side connection.
func (c *Core) flushLocalInput(p *peerState, at tick.Tick) {
	if !c.hasInputChannel {
		return
	}
	window := c.localInputBuffer.Push(input.Sample{Tick: at})
	if len(window) == 0 {
		return
	}
	c.localInputSeq++
	p.transceiver.Write(c.inputChannel, input.EncodeFrame(c.localInputSeq, time.Now(), window), 1)
}

// inputBufferFor returns (creating if necessary) a peer's server-side merge
// buffer, deduplicating redundant resent samples across frames.
func (c *Core) inputBufferFor(peer PeerID) *input.Buffer {
	b, ok := c.inputBuffers[peer]
	if !ok {
		b = input.NewBuffer(input.DefaultRedundancy)
		c.inputBuffers[peer] = b
	}
	return b
}

// handleInputMessage decodes an input-channel frame, validates it through the
// gate, merges its redundancy window against what this peer already sent,
// and emits one EventMessageReceived per fresh sample for the host
// simulation to apply.
func (c *Core) handleInputMessage(peer PeerID, payload []byte) {
	sequenceID, sentAt, window, err := input.DecodeFrame(payload)
	if err != nil {
		return
	}
	decision := c.inputGate.Evaluate(input.Frame{PeerID: string(peer), SequenceID: sequenceID, SentAt: sentAt})
	if !decision.Accepted {
		return
	}
	for _, sample := range c.inputBufferFor(peer).Merge(window) {
		c.sink.HandleEvent(Event{Kind: EventMessageReceived, Peer: peer, Channel: "input", Payload: sample.Data})
	}
}
