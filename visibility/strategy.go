// Package visibility decides which entities an observer's replication.Sender
// should even consider sending, before bandwidth budgeting and the resend
// policy run. Room/visibility managers beyond this interface contract are
// out of the core's scope; the contract and a reference strategy live here.
package visibility

import "replicore/world"

// Strategy decides whether an entity is currently of interest to an
// observer. The replication layer calls it once per entity per tick before
// applying Replicate.Target and the resend policy.
type Strategy interface {
	Visible(observer string, entity world.EntityID) bool
}

// AllVisible is the trivial strategy: every entity is visible to every
// observer, suitable for small sessions or a room with no spatial concept.
type AllVisible struct{}

// Visible always returns true.
func (AllVisible) Visible(observer string, entity world.EntityID) bool { return true }
