package protocol

import "hash/fnv"

// Hash returns a deterministic fingerprint of the registry's shape: channel
// modes, component names/modes, and input names, in registration order.
// Peers exchange this at handshake time and refuse the session on mismatch,
// guarding against silent schema drift between peer builds.
func (r *Registry) Hash() uint64 {
	h := fnv.New64a()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	writeByte := func(b byte) {
		_, _ = h.Write([]byte{b})
	}

	for _, ch := range r.Channels {
		write(ch.Name)
		writeByte(byte(ch.Mode))
	}
	for _, c := range r.Components {
		write(c.Name)
		writeByte(byte(c.Prediction))
		writeByte(byte(c.Interpolation))
	}
	for _, in := range r.Inputs {
		write(in.Name)
	}
	return h.Sum64()
}
