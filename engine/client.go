package engine

import "replicore/protocol"

// Client is a replicore engine orchestrator configured for the
// non-authoritative side of a link: it expects exactly one peer (the
// server) and typically replicates only its own locally-authoritative
// entities (e.g. input) back upstream.
type Client struct {
	*Core
	server PeerID
}

// NewClient constructs a client-role engine around registry and socket,
// naming the single peer representing the server.
func NewClient(registry *protocol.Registry, socket Socket, server PeerID, opts ...Option) *Client {
	return &Client{Core: NewCore(registry, socket, opts...), server: server}
}

// Server returns the peer id this client connects to.
func (c *Client) Server() PeerID { return c.server }
