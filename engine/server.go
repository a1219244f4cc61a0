package engine

import "replicore/protocol"

// Server is a replicore engine orchestrator configured for the
// authoritative side of a link. It wraps *Core with the same defaults as
// Client and replicates to every connected peer.
type Server struct {
	*Core
}

// NewServer constructs a server-role engine around registry and socket.
func NewServer(registry *protocol.Registry, socket Socket, opts ...Option) *Server {
	return &Server{Core: NewCore(registry, socket, opts...)}
}
