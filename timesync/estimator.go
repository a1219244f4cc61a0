// Package timesync implements the ping/pong RTT and jitter estimation,
// target-tick computation, and clock nudging that keep a client's local
// simulation tick aligned with the server's, driven by a plain estimator
// any transport can feed.
package timesync

import "time"

// ewmaAlpha weights newly observed samples against history: a single-pole
// exponential smoothing constant for RTT and jitter.
const ewmaAlpha = 0.2

// Sample is one completed ping/pong round trip.
type Sample struct {
	// Sent is the local time the PING carrying SentAt was emitted.
	Sent time.Time
	// Received is the local time the matching PONG arrived.
	Received time.Time
	// RemoteProcessing is the time the remote side spent between
	// receiving the PING and emitting the PONG (server_process_end -
	// server_process_start).
	RemoteProcessing time.Duration
}

// RTT derives the round trip estimate with remote processing time
// subtracted, rtt_est formula.
func (s Sample) RTT() time.Duration {
	rtt := s.Received.Sub(s.Sent) - s.RemoteProcessing
	if rtt < 0 {
		rtt = 0
	}
	return rtt
}

// Estimator accumulates an exponentially-weighted mean RTT and jitter
// (mean absolute deviation) from a stream of ping/pong samples.
type Estimator struct {
	hasEstimate bool
	meanRTT     time.Duration
	jitter      time.Duration
}

// NewEstimator constructs an empty RTT/jitter estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Observe folds one completed round trip into the running estimate.
func (e *Estimator) Observe(s Sample) {
	rtt := s.RTT()
	if !e.hasEstimate {
		e.meanRTT = rtt
		e.jitter = 0
		e.hasEstimate = true
		return
	}
	deviation := rtt - e.meanRTT
	if deviation < 0 {
		deviation = -deviation
	}
	e.meanRTT = ewmaDuration(e.meanRTT, rtt)
	e.jitter = ewmaDuration(e.jitter, deviation)
}

// RTT returns the current mean RTT estimate.
func (e *Estimator) RTT() time.Duration {
	return e.meanRTT
}

// Jitter returns the current jitter (mean absolute RTT deviation) estimate.
func (e *Estimator) Jitter() time.Duration {
	return e.jitter
}

// Ready reports whether at least one sample has been observed.
func (e *Estimator) Ready() bool {
	return e.hasEstimate
}

func ewmaDuration(prev, sample time.Duration) time.Duration {
	return time.Duration(float64(prev)*(1-ewmaAlpha) + float64(sample)*ewmaAlpha)
}
