// Package wsocket implements engine.Socket over gorilla/websocket using a
// read-pump/write-pump pattern: a deadline-extending pong handler, periodic
// ping, and a buffered send channel per connection. It exchanges opaque
// binary frames only; payload framing/decoding is engine/packet's job.
package wsocket

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"replicore/engine"
	"replicore/logging"
)

const (
	// DefaultWriteWait bounds how long a write may block before the
	// connection is considered dead.
	DefaultWriteWait = 10 * time.Second
	// DefaultPongWaitMultiplier sets the read deadline to PingInterval * this.
	DefaultPongWaitMultiplier = 2
	// DefaultPingInterval is the default keepalive cadence.
	DefaultPingInterval = 5 * time.Second
	// DefaultSendBuffer bounds the per-peer outbound queue depth.
	DefaultSendBuffer = 256
)

// ErrClosed is returned by Send once the peer connection has been removed.
var ErrClosed = errors.New("wsocket: connection closed")

type peerConn struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (p *peerConn) close() {
	p.once.Do(func() {
		close(p.send)
		_ = p.conn.Close()
	})
}

// Socket adapts a set of gorilla/websocket connections into engine.Socket.
// Connections are registered via Accept (server side) or Dial (client side);
// Poll/Linked/Unlinked drain buffered events for the engine's PreUpdate phase.
type Socket struct {
	mu       sync.Mutex
	peers    map[engine.PeerID]*peerConn
	linked   []engine.PeerID
	unlinked []engine.PeerID
	inbound  []engine.Inbound

	writeWait   time.Duration
	pongWait    time.Duration
	pingInterval time.Duration
	sendBuffer  int
	logger      *logging.Logger
}

// Option configures a Socket.
type Option func(*Socket)

// WithPingInterval overrides the keepalive ping cadence.
func WithPingInterval(d time.Duration) Option {
	return func(s *Socket) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithLogger attaches a logger used for connection lifecycle diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(s *Socket) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs an empty Socket.
func New(opts ...Option) *Socket {
	s := &Socket{
		peers:        make(map[engine.PeerID]*peerConn),
		writeWait:    DefaultWriteWait,
		pingInterval: DefaultPingInterval,
		sendBuffer:   DefaultSendBuffer,
		logger:       logging.L(),
	}
	s.pongWait = time.Duration(DefaultPongWaitMultiplier) * s.pingInterval
	for _, opt := range opts {
		opt(s)
	}
	s.pongWait = time.Duration(DefaultPongWaitMultiplier) * s.pingInterval
	return s
}

// Adopt registers an already-upgraded websocket connection under peer and
// starts its read/write pumps. Use this after http.Server + Upgrader.Upgrade
// on the server side, or websocket.Dialer.Dial on the client side.
func (s *Socket) Adopt(peer engine.PeerID, conn *websocket.Conn) {
	pc := &peerConn{conn: conn, send: make(chan []byte, s.sendBuffer)}

	s.mu.Lock()
	if existing, ok := s.peers[peer]; ok {
		existing.close()
	}
	s.peers[peer] = pc
	s.linked = append(s.linked, peer)
	s.mu.Unlock()

	deadline := time.Now().Add(s.pongWait)
	_ = conn.SetReadDeadline(deadline)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	go s.readPump(peer, pc)
	go s.writePump(peer, pc)
}

// Remove forcibly drops peer, marking it unlinked on the next Poll.
func (s *Socket) Remove(peer engine.PeerID) {
	s.mu.Lock()
	pc, ok := s.peers[peer]
	if ok {
		delete(s.peers, peer)
	}
	s.mu.Unlock()
	if ok {
		pc.close()
	}
}

func (s *Socket) readPump(peer engine.PeerID, pc *peerConn) {
	defer s.markUnlinked(peer, pc)
	for {
		messageType, payload, err := pc.conn.ReadMessage()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.logger.Warn("wsocket read deadline exceeded", logging.String("peer", string(peer)))
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("wsocket read error", logging.String("peer", string(peer)), logging.Error(err))
			}
			return
		}
		if err := pc.conn.SetReadDeadline(time.Now().Add(s.pongWait)); err != nil {
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		clone := append([]byte(nil), payload...)
		s.mu.Lock()
		s.inbound = append(s.inbound, engine.Inbound{Peer: peer, Payload: clone})
		s.mu.Unlock()
	}
}

func (s *Socket) writePump(peer engine.PeerID, pc *peerConn) {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		pc.close()
	}()
	for {
		select {
		case payload, ok := <-pc.send:
			if !ok {
				return
			}
			if err := pc.conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
				return
			}
			if err := pc.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				s.logger.Warn("wsocket write error", logging.String("peer", string(peer)), logging.Error(err))
				return
			}
		case <-ticker.C:
			if err := pc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Socket) markUnlinked(peer engine.PeerID, pc *peerConn) {
	s.mu.Lock()
	if current, ok := s.peers[peer]; ok && current == pc {
		delete(s.peers, peer)
		s.unlinked = append(s.unlinked, peer)
	}
	s.mu.Unlock()
}

// Poll implements engine.Socket, draining buffered inbound frames.
func (s *Socket) Poll() []engine.Inbound {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbound) == 0 {
		return nil
	}
	out := s.inbound
	s.inbound = nil
	return out
}

// Send implements engine.Socket, queueing payload for peer's write pump.
func (s *Socket) Send(peer engine.PeerID, payload []byte) error {
	s.mu.Lock()
	pc, ok := s.peers[peer]
	s.mu.Unlock()
	if !ok {
		return ErrClosed
	}
	select {
	case pc.send <- payload:
		return nil
	default:
		return errors.New("wsocket: send buffer full for peer " + string(peer))
	}
}

// Linked implements engine.Socket, draining newly connected peers.
func (s *Socket) Linked() []engine.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.linked) == 0 {
		return nil
	}
	out := s.linked
	s.linked = nil
	return out
}

// Unlinked implements engine.Socket, draining peers whose connection dropped.
func (s *Socket) Unlinked() []engine.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.unlinked) == 0 {
		return nil
	}
	out := s.unlinked
	s.unlinked = nil
	return out
}

// Upgrader builds an http.Handler that authenticates incoming requests via
// auth, then upgrades accepted ones and adopts the resulting connection
// under the peer ID auth resolved.
func Upgrader(s *Socket, upgrader websocket.Upgrader, auth Authenticator) http.HandlerFunc {
	if auth == nil {
		auth = AllowAll{}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		peer, err := auth.Authenticate(r)
		if err != nil || peer == "" {
			s.logger.Warn("wsocket handshake rejected", logging.Error(err))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("wsocket upgrade failed", logging.Error(err))
			return
		}
		s.Adopt(engine.PeerID(peer), conn)
	}
}
