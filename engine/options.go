package engine

import (
	"time"

	"replicore/logging"
	"replicore/networking"
	"replicore/replication"
	"replicore/visibility"
)

// Option configures a Core at construction time.
type Option func(*Core)

// WithTickDuration overrides the fixed-update step length.
func WithTickDuration(d time.Duration) Option {
	return func(c *Core) {
		if d > 0 {
			c.tickDuration = d
		}
	}
}

// WithPingInterval overrides the RTT-measurement cadence.
func WithPingInterval(d time.Duration) Option {
	return func(c *Core) {
		if d > 0 {
			c.pingInterval = d
		}
	}
}

// WithReplicationPolicy overrides the default resend policy new peer
// groups are created with.
func WithReplicationPolicy(p replication.Policy) Option {
	return func(c *Core) { c.replicationPolicy = p }
}

// WithBandwidthCap installs a per-peer token-bucket bandwidth regulator.
func WithBandwidthCap(bytesPerSecond float64) Option {
	return func(c *Core) {
		if bytesPerSecond > 0 {
			c.bandwidth = networking.NewBandwidthRegulator(bytesPerSecond, nil)
		}
	}
}

// WithBudget installs a per-tick byte-budget planner.
func WithBudget(maxBytes int) Option {
	return func(c *Core) { c.budget = networking.NewBudgetPlanner(maxBytes) }
}

// WithVisibilityStrategy overrides the default AllVisible strategy.
func WithVisibilityStrategy(s visibility.Strategy) Option {
	return func(c *Core) {
		if s != nil {
			c.visible = s
		}
	}
}

// WithEventSink installs the host application's event handler.
func WithEventSink(sink EventSink) Option {
	return func(c *Core) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}
