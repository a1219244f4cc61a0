package engine

import (
	"time"

	"replicore/channel"
	"replicore/replication"
	"replicore/tick"
	"replicore/timesync"
)

// controlChannelName never appears on the wire (it is not part of the
// handshake hash); it only labels the descriptor in logs.
const controlChannelName = "__replicore_control__"

// controlChannelDescriptor is appended after every registry-declared channel
// so Ping/Pong traffic rides the same packet/channel transport as
// replication, without host applications ever registering or seeing it
//.
func controlChannelDescriptor() channel.Descriptor {
	return channel.Descriptor{Name: controlChannelName, Mode: channel.UnreliableUnordered, BasePriority: 0.1}
}

// controlChannelID is the fixed id the control channel gets once appended
// after every peer's identical copy of the registry's channel list.
func (c *Core) controlChannelID() channel.ID {
	return channel.ID(len(c.registry.Channels))
}

// peerChannelDescriptors builds the descriptor list a peer's packet
// transceiver is constructed with: every registry channel, in order, plus
// the internal control channel.
func (c *Core) peerChannelDescriptors() []channel.Descriptor {
	out := make([]channel.Descriptor, len(c.registry.Channels)+1)
	copy(out, c.registry.Channels)
	out[len(c.registry.Channels)] = controlChannelDescriptor()
	return out
}

// sendPing emits a PING on the control channel if the configured interval
// has elapsed since the last one.
func (c *Core) sendPing(peer PeerID, p *peerState, now time.Time) {
	if now.Sub(p.lastPing) < c.pingInterval {
		return
	}
	p.lastPing = now
	p.pingSeq++
	p.exchange.Ping(p.pingSeq, now)
	p.transceiver.Write(c.controlChannelID(), timesync.EncodePing(p.pingSeq, now), 1)
}

// handleControlMessage dispatches a delivered control-channel payload: a
// PING is answered with an immediate PONG; a PONG resolves its Exchange and
// folds the round trip into the peer's RTT-driven resend threshold and the
// replication sender's RTT-to-ticks conversion.
func (c *Core) handleControlMessage(peer PeerID, p *peerState, payload []byte, now time.Time) {
	kind, ok := timesync.PeekType(payload)
	if !ok {
		return
	}
	switch kind {
	case timesync.MessageTypePing:
		sequence, sentAt, err := timesync.DecodePing(payload)
		if err != nil {
			return
		}
		p.transceiver.Write(c.controlChannelID(), timesync.EncodePong(sequence, sentAt, time.Since(now)), 1)
	case timesync.MessageTypePong:
		sequence, sentAt, remoteProcessing, err := timesync.DecodePong(payload)
		if err != nil {
			return
		}
		if err := p.exchange.Pong(sequence, now, remoteProcessing); err != nil {
			return
		}
		c.applyRTT(peer, p)
		_ = sentAt
	}
}

// applyRTT feeds a peer's latest RTT estimate into the replication sender's
// resend-on-loss threshold, converting the wall-clock estimate to ticks
// using the configured fixed-update step.
func (c *Core) applyRTT(peer PeerID, p *peerState) {
	if !p.exchange.Estimator().Ready() || c.tickDuration <= 0 {
		return
	}
	rtt := p.exchange.Estimator().RTT()
	rttTicks := int32(rtt / c.tickDuration)
	if rttTicks < 1 {
		rttTicks = 1
	}
	c.sender.SetPeerRTTTicks(string(peer), c.replicationPolicy, rttTicks)
}

// mutateTracker returns (creating if necessary) the ServerMutateTicks
// watermark tracker for a peer's Update stream.
func (c *Core) mutateTracker(peer PeerID) *replication.MutateTicks {
	t, ok := c.mutateTrackers[peer]
	if !ok {
		t = replication.NewMutateTicks(c.mutateStabilityK)
		c.mutateTrackers[peer] = t
	}
	return t
}

// applyClockSync compares the local tick against this peer's estimated live
// tick (advanced by network lead time and the configured input delay) and
// nudges the fixed-update time scale toward it, snapping via EventSyncEvent
// when the gap is too large to close smoothly.
func (c *Core) applyClockSync(peer PeerID, p *peerState, local tick.Tick) {
	estimate, ok := p.remote.Estimate()
	if !ok {
		return
	}
	rtt := p.exchange.Estimator().RTT()
	jitter := p.exchange.Estimator().Jitter()
	target := timesync.TargetTick(estimate, rtt, jitter, c.serverSendInterval, c.tickDuration, c.inputDelayTicks)

	timeScale, event := c.nudger.Evaluate(local, target)
	c.loop.SetTimeScale(timeScale)
	if event != nil {
		c.timeline.Rebase(event.NewTick)
		c.sink.HandleEvent(Event{Kind: EventSyncEvent, Peer: peer, Sync: *event})
	}
}
