// Package networking regulates how much of each tick's replication traffic
// actually reaches a peer: a per-peer token-bucket throughput cap and a
// per-tick byte budget that prioritizes higher-tier entities when the two
// conflict.
package networking

import (
	"sync"
	"time"
)

// DefaultBandwidthLimitBytesPerSecond caps per-peer throughput at 48 kbps (decimal).
const DefaultBandwidthLimitBytesPerSecond = 48000.0 / 8.0

type bandwidthBucket struct {
	tokens float64
	last   time.Time
}

// BandwidthRegulator enforces a token-bucket budget per peer so sustained
// sessions stay within a configured throughput target.
type BandwidthRegulator struct {
	mu       sync.Mutex
	buckets  map[string]*bandwidthBucket
	capacity float64
	refill   float64
	now      func() time.Time
}

// NewBandwidthRegulator constructs a regulator enforcing the given byte rate.
func NewBandwidthRegulator(targetBytesPerSecond float64, clock func() time.Time) *BandwidthRegulator {
	if targetBytesPerSecond <= 0 {
		targetBytesPerSecond = DefaultBandwidthLimitBytesPerSecond
	}
	if clock == nil {
		clock = time.Now
	}
	return &BandwidthRegulator{
		buckets:  make(map[string]*bandwidthBucket),
		capacity: targetBytesPerSecond,
		refill:   targetBytesPerSecond,
		now:      clock,
	}
}

func (r *BandwidthRegulator) replenish(bucket *bandwidthBucket, now time.Time) {
	if now.Before(bucket.last) {
		return
	}
	elapsed := now.Sub(bucket.last).Seconds()
	if elapsed <= 0 {
		bucket.last = now
		return
	}
	bucket.tokens += elapsed * r.refill
	if bucket.tokens > r.capacity {
		bucket.tokens = r.capacity
	}
	bucket.last = now
}

// Allow charges payloadBytes against the peer's budget, returning false if
// it would exceed the bucket's available tokens.
func (r *BandwidthRegulator) Allow(peer string, payloadBytes int) bool {
	if peer == "" || payloadBytes <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.buckets[peer]
	now := r.now()
	if !ok {
		bucket = &bandwidthBucket{tokens: r.capacity, last: now}
		r.buckets[peer] = bucket
	}
	r.replenish(bucket, now)

	if bucket.tokens < float64(payloadBytes) {
		return false
	}
	bucket.tokens -= float64(payloadBytes)
	return true
}

// Forget drops bookkeeping for a disconnected peer.
func (r *BandwidthRegulator) Forget(peer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets, peer)
}
