package replication

// Diffable lets a component type supply its own delta encoding against the
// last value actually acknowledged, instead of sending the full value every
// time. Components that don't implement it are always sent in full.
type Diffable interface {
	// Diff returns a smaller encoding of the receiver relative to prev (a
	// value of the same concrete type, or nil if the observer has never
	// seen this component), and whether that encoding is safe to apply
	// on top of prev.
	Diff(prev any) (delta any, ok bool)
	// ApplyDiff reconstructs the full value by applying delta on top of the
	// receiver, used on the receiving side's last-known value.
	ApplyDiff(delta any) (next any, ok bool)
}

// AlreadyDiff marks a value as already being in delta form (e.g. an input
// redundancy frame), telling the sender not to attempt further diffing.
type AlreadyDiff interface {
	IsDiff() bool
}
