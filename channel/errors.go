package channel

import "errors"

// ErrUnknownChannel is returned when a message references a channel id the
// receiver never registered. This is a protocol-mismatch condition: the
// caller should emit a protocol-mismatch event and disconnect the peer.
var ErrUnknownChannel = errors.New("channel: unknown channel id")
