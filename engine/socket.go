package engine

// PeerID identifies one remote endpoint at the socket-driver boundary.
type PeerID string

// Inbound is one datagram received from a peer, as handed up by Socket.Poll.
type Inbound struct {
	Peer    PeerID
	Payload []byte
}

// Socket is the transport boundary the engine depends on: a non-blocking
// poll/send driver plus peer lifecycle events. transport/wsocket provides
// a gorilla/websocket-backed implementation; tests may provide an
// in-memory one.
type Socket interface {
	// Poll drains whatever inbound datagrams have arrived since the last
	// call without blocking.
	Poll() []Inbound
	// Send enqueues a non-blocking send to peer. A returned error is
	// treated as transient backpressure by the caller.
	Send(peer PeerID, payload []byte) error
	// Linked reports peers that completed their connection handshake
	// since the last call.
	Linked() []PeerID
	// Unlinked reports peers that disconnected since the last call.
	Unlinked() []PeerID
}
