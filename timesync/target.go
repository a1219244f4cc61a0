package timesync

import (
	"time"

	"replicore/tick"
)

// TargetTick computes the client's target tick:
// serverTickEstimate + ceil((rtt + jitterMargin + serverSendInterval) / tickDuration) + inputDelayTicks.
func TargetTick(serverTickEstimate tick.Tick, rtt, jitterMargin, serverSendInterval, tickDuration time.Duration, inputDelayTicks int) tick.Tick {
	if tickDuration <= 0 {
		return serverTickEstimate
	}
	margin := rtt + jitterMargin + serverSendInterval
	lead := int(ceilDiv(margin, tickDuration)) + inputDelayTicks
	return serverTickEstimate.Add(lead)
}

func ceilDiv(a, b time.Duration) int64 {
	if a <= 0 {
		return 0
	}
	n := int64(a) / int64(b)
	if int64(a)%int64(b) != 0 {
		n++
	}
	return n
}
