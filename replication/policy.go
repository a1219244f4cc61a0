// Package replication walks world.World each tick and decides, per observer,
// which component values need to be (re)sent, serializes them through the
// registered protocol.Registry codecs, and reconstructs that state on the
// receiving peer.
package replication

import "replicore/tick"

// Policy decides whether a component's last change is stale enough to
// require a resend to a given observer.
type Policy int

const (
	// SinceLastAck resends a value every tick until the observer has
	// acknowledged the tick it changed on, so data already in flight may be
	// sent again. Costs more bandwidth.
	SinceLastAck Policy = iota
	// SinceLastSend sends a value once per change, comparing against the
	// last tick it was sent on; Group.ResendOnLoss rewinds that tick when a
	// send is presumed lost. Cheaper on bandwidth.
	SinceLastSend
)

// ShouldSend reports whether a component last changed at changedAt needs
// sending to an observer whose last confirmed/sent tick is reference.
func ShouldSend(policy Policy, changedAt, reference tick.Tick, hasReference bool) bool {
	if !hasReference {
		return true
	}
	return changedAt.Since(reference) > 0
}
