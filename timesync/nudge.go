package timesync

import "replicore/tick"

// DefaultSyncThreshold is the tick distance beyond which smooth nudging
// gives up and a SyncEvent snaps the local tick.
const DefaultSyncThreshold = 30

// DefaultMaxTimeScaleDeviation bounds how far the fixed-update schedule's
// time scale may drift from 1.0 while nudging.
const DefaultMaxTimeScaleDeviation = 0.05

// SyncEvent records a discontinuous tick rebase from OldTick to NewTick.
type SyncEvent struct {
	OldTick tick.Tick
	NewTick tick.Tick
}

// Nudger computes the fixed-update time scale that smoothly closes the gap
// between a local and target tick, snapping via SyncEvent when the gap
// exceeds Threshold.
type Nudger struct {
	Threshold          int32
	MaxTimeScaleDeviation float64
}

// NewNudger constructs a nudger using the package defaults.
func NewNudger() *Nudger {
	return &Nudger{Threshold: DefaultSyncThreshold, MaxTimeScaleDeviation: DefaultMaxTimeScaleDeviation}
}

// Evaluate compares local against target and returns the time scale the
// fixed-update schedule should run at this step, plus a SyncEvent when the
// gap is too large to nudge smoothly.
func (n *Nudger) Evaluate(local, target tick.Tick) (timeScale float64, event *SyncEvent) {
	gap := target.Since(local)
	if gap > n.Threshold || gap < -n.Threshold {
		return 1.0, &SyncEvent{OldTick: local, NewTick: target}
	}
	switch {
	case gap > 0:
		return 1.0 + n.MaxTimeScaleDeviation, nil
	case gap < 0:
		return 1.0 - n.MaxTimeScaleDeviation, nil
	default:
		return 1.0, nil
	}
}
