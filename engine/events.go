package engine

import (
	"replicore/timesync"
	"replicore/world"
)

// EventKind discriminates the Event union exposed to host applications.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventMessageReceived
	EventEntitySpawned
	EventComponentInserted
	EventRollback
	EventSyncEvent
)

// Event is a tagged union delivered to the host application's event
// handler. Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Peer PeerID

	// MessageReceived
	Channel string
	Payload []byte

	// EntitySpawned / ComponentInserted
	Entity    world.EntityID
	Component int

	// Rollback
	RollbackDepth int

	// SyncEvent
	Sync timesync.SyncEvent
}

// EventSink receives engine events. Host applications implement this to
// react to connection lifecycle, spawns, rollbacks, and resyncs.
type EventSink interface {
	HandleEvent(Event)
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(Event)

// HandleEvent implements EventSink.
func (f EventSinkFunc) HandleEvent(e Event) { f(e) }
