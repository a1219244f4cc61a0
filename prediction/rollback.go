package prediction

import "replicore/tick"

// Simulate re-derives a predicted value for tick t+1 by applying the input
// recorded for that tick on top of the previous tick's value. Supplied by
// the host application, which resimulates forward using its own
// locally-buffered inputs.
type Simulate[C any] func(prev C, t tick.Tick) C

// Equal reports whether a predicted and confirmed value agree closely
// enough that no correction is needed (e.g. within floating point epsilon).
type Equal[C any] func(predicted, confirmed C) bool

// Reconcile compares the server's confirmed value at tick t against what was
// predicted for that same tick. On mismatch it overwrites history with the
// confirmed value and resimulates every later tick up to current, returning
// the corrected latest value. On match it leaves the existing prediction in
// place and returns it unchanged: resimulation only runs when prediction
// actually diverged from the server.
func Reconcile[C any](h *History[C], confirmed C, confirmedTick, current tick.Tick, eq Equal[C], sim Simulate[C]) (C, bool) {
	slot := h.Get(confirmedTick)
	h.SetConfirmed(confirmedTick, confirmed)

	if slot.Kind == Predicted && eq(slot.Value, confirmed) {
		//1.- Prediction already matched; nothing downstream needs resimulating.
		return latestOrZero(h, current), false
	}

	value := confirmed
	for t := confirmedTick.Add(1); t.Since(current) <= 0; t = t.Add(1) {
		value = sim(value, t)
		h.SetPredicted(t, value)
	}
	return value, true
}

func latestOrZero[C any](h *History[C], current tick.Tick) C {
	slot := h.Get(current)
	return slot.Value
}
