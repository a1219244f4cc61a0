package timesync

import (
	"errors"
	"sync"
	"time"
)

// ErrUnknownPing is returned when a PONG references a ping sequence the
// Exchange never sent or already resolved.
var ErrUnknownPing = errors.New("timesync: unknown ping sequence")

// Exchange tracks outstanding pings so the matching pong can be paired with
// its send time, feeding RTT samples into an Estimator. One Exchange
// tracks one peer.
type Exchange struct {
	mu        sync.Mutex
	estimator *Estimator
	pending   map[uint32]time.Time
}

// NewExchange constructs an exchange backed by a fresh Estimator.
func NewExchange() *Exchange {
	return &Exchange{estimator: NewEstimator(), pending: make(map[uint32]time.Time)}
}

// Ping records that a PING with the given sequence was just sent.
func (e *Exchange) Ping(sequence uint32, sentAt time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[sequence] = sentAt
}

// Pong resolves a PONG echoing sequence, folding the round trip into the
// estimator. remoteProcessing is the time the peer spent between receipt
// and reply.
func (e *Exchange) Pong(sequence uint32, receivedAt time.Time, remoteProcessing time.Duration) error {
	e.mu.Lock()
	sentAt, ok := e.pending[sequence]
	if ok {
		delete(e.pending, sequence)
	}
	e.mu.Unlock()
	if !ok {
		return ErrUnknownPing
	}
	e.estimator.Observe(Sample{Sent: sentAt, Received: receivedAt, RemoteProcessing: remoteProcessing})
	return nil
}

// Estimator returns the underlying RTT/jitter estimator.
func (e *Exchange) Estimator() *Estimator {
	return e.estimator
}

// Forget discards a pending ping without resolving it, e.g. on disconnect.
func (e *Exchange) Forget(sequence uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, sequence)
}
