package admin

import "fmt"

// wireMessage is the minimal contract admin's hand-rolled protowire
// messages satisfy, standing in for proto.Message since this module has
// no generated pb package to implement it against.
type wireMessage interface {
	Marshal() ([]byte, error)
}

type wireUnmarshaler interface {
	Unmarshal([]byte) error
}

// codec implements grpc/encoding.Codec over admin's protowire messages.
// Registered under a name distinct from "proto" so it never shadows a
// real protobuf codec elsewhere in the process.
type codec struct{}

const codecName = "replicore-admin-wire"

// Name implements encoding.Codec.
func (codec) Name() string { return codecName }

// Marshal implements encoding.Codec.
func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("admin: %T does not implement wireMessage", v)
	}
	return m.Marshal()
}

// Unmarshal implements encoding.Codec.
func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireUnmarshaler)
	if !ok {
		return fmt.Errorf("admin: %T does not implement wireUnmarshaler", v)
	}
	return m.Unmarshal(data)
}
