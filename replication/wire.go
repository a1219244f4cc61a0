package replication

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"replicore/entitymap"
)

// actionOp enumerates the entity/component lifecycle events carried on the
// Actions stream: spawn and despawn of a whole entity, and
// insertion/removal of a single component on an already-known entity.
// Updates (componentUpdate below) only ever carry value changes for
// components an Action has already introduced.
type actionOp byte

const (
	actionSpawn actionOp = iota
	actionDespawn
	actionInsert
	actionRemove
)

// actionMappedFlag marks that the sender believes the receiver already
// knows this NetworkID (packet.FlagMapped's replication-layer counterpart),
// so the receiver can skip re-confirming a mapping it already has.
const actionMappedFlag byte = 1 << 3

// actionOpMask isolates the 3-bit op from a combined flags byte.
const actionOpMask byte = 0x07

// actionRecord is one Actions-stream entry: `entity:varint | group_id:varint
// | tick:varint | flags:u8 (op | mapped_flag<<3) | component:varint
// (Insert/Remove only)`.
type actionRecord struct {
	Entity    entitymap.NetworkID
	Op        actionOp
	Component int
	GroupID   uint32
	Tick      uint16
	Mapped    bool
}

func encodeActions(actions []actionRecord) []byte {
	out := protowire.AppendVarint(nil, uint64(len(actions)))
	for _, a := range actions {
		out = protowire.AppendVarint(out, uint64(a.Entity))
		out = protowire.AppendVarint(out, uint64(a.GroupID))
		out = protowire.AppendVarint(out, uint64(a.Tick))
		flags := byte(a.Op) & actionOpMask
		if a.Mapped {
			flags |= actionMappedFlag
		}
		out = append(out, flags)
		if a.Op == actionInsert || a.Op == actionRemove {
			out = protowire.AppendVarint(out, uint64(a.Component))
		}
	}
	return out
}

func decodeActions(buf []byte) ([]actionRecord, []byte, error) {
	count, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return nil, nil, fmt.Errorf("replication: malformed action count varint")
	}
	buf = buf[n:]

	out := make([]actionRecord, 0, count)
	for i := uint64(0); i < count; i++ {
		entity, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, nil, fmt.Errorf("replication: malformed action entity varint")
		}
		buf = buf[n:]

		groupID, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, nil, fmt.Errorf("replication: malformed action group_id varint")
		}
		buf = buf[n:]

		msgTick, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, nil, fmt.Errorf("replication: malformed action tick varint")
		}
		buf = buf[n:]

		if len(buf) < 1 {
			return nil, nil, fmt.Errorf("replication: truncated action flags")
		}
		flags := buf[0]
		buf = buf[1:]

		rec := actionRecord{
			Entity:  entitymap.NetworkID(entity),
			Op:      actionOp(flags & actionOpMask),
			GroupID: uint32(groupID),
			Tick:    uint16(msgTick),
			Mapped:  flags&actionMappedFlag != 0,
		}
		if rec.Op == actionInsert || rec.Op == actionRemove {
			component, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, nil, fmt.Errorf("replication: malformed action component varint")
			}
			buf = buf[n:]
			rec.Component = int(component)
		}
		out = append(out, rec)
	}
	return out, buf, nil
}

// updateMappedFlag marks that the sender believes the receiver already
// knows this entity's NetworkID.
const updateMappedFlag byte = 1 << 0

// updateDeltaFlag marks that Payload is a Diffable delta relative to the
// observer's last-acknowledged value rather than a full encoding
// ( delta compression).
const updateDeltaFlag byte = 1 << 1

// componentUpdate is one entity/component value change ready to serialize
// onto the Updates stream: `entity:varint | component:varint |
// group_id:varint | tick:varint | flags:u8 | len:varint | payload`.
// Removal and spawn/despawn are Actions, not Updates.
type componentUpdate struct {
	Entity    entitymap.NetworkID
	Component int
	GroupID   uint32
	Tick      uint16
	Mapped    bool
	Delta     bool
	Payload   []byte
}

func encodeUpdates(updates []componentUpdate) []byte {
	out := protowire.AppendVarint(nil, uint64(len(updates)))
	for _, u := range updates {
		out = protowire.AppendVarint(out, uint64(u.Entity))
		out = protowire.AppendVarint(out, uint64(u.Component))
		out = protowire.AppendVarint(out, uint64(u.GroupID))
		out = protowire.AppendVarint(out, uint64(u.Tick))
		var flags byte
		if u.Mapped {
			flags |= updateMappedFlag
		}
		if u.Delta {
			flags |= updateDeltaFlag
		}
		out = append(out, flags)
		out = protowire.AppendVarint(out, uint64(len(u.Payload)))
		out = append(out, u.Payload...)
	}
	return out
}

func decodeUpdates(buf []byte) ([]componentUpdate, error) {
	count, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return nil, fmt.Errorf("replication: malformed update count varint")
	}
	buf = buf[n:]

	out := make([]componentUpdate, 0, count)
	for i := uint64(0); i < count; i++ {
		entity, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("replication: malformed entity id varint")
		}
		buf = buf[n:]

		component, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("replication: malformed component index varint")
		}
		buf = buf[n:]

		groupID, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("replication: malformed update group_id varint")
		}
		buf = buf[n:]

		msgTick, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("replication: malformed update tick varint")
		}
		buf = buf[n:]

		if len(buf) < 1 {
			return nil, fmt.Errorf("replication: truncated update flags")
		}
		flags := buf[0]
		buf = buf[1:]

		length, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return nil, fmt.Errorf("replication: malformed payload length varint")
		}
		buf = buf[n:]

		if uint64(len(buf)) < length {
			return nil, fmt.Errorf("replication: truncated payload, want %d have %d", length, len(buf))
		}
		payload := append([]byte(nil), buf[:length]...)
		buf = buf[length:]

		out = append(out, componentUpdate{
			Entity:    entitymap.NetworkID(entity),
			Component: int(component),
			GroupID:   uint32(groupID),
			Tick:      uint16(msgTick),
			Mapped:    flags&updateMappedFlag != 0,
			Delta:     flags&updateDeltaFlag != 0,
			Payload:   payload,
		})
	}
	return out, nil
}

// encodeTick combines one tick's Actions and Updates streams into the single
// payload Core hands to the transceiver: `actions_len:varint | actions |
// updates`. Actions must be applied before Updates on the receiving side,
// pending-spawn waitlist.
func encodeTick(actions []actionRecord, updates []componentUpdate) []byte {
	encodedActions := encodeActions(actions)
	encodedUpdates := encodeUpdates(updates)

	out := protowire.AppendVarint(nil, uint64(len(encodedActions)))
	out = append(out, encodedActions...)
	out = append(out, encodedUpdates...)
	return out
}

// decodeTick splits a tick payload back into its Actions and Updates streams.
func decodeTick(buf []byte) ([]actionRecord, []componentUpdate, error) {
	actionsLen, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return nil, nil, fmt.Errorf("replication: malformed actions length varint")
	}
	buf = buf[n:]

	if uint64(len(buf)) < actionsLen {
		return nil, nil, fmt.Errorf("replication: truncated actions stream, want %d have %d", actionsLen, len(buf))
	}
	actionsBuf := buf[:actionsLen]
	updatesBuf := buf[actionsLen:]

	actions, rest, err := decodeActions(actionsBuf)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("replication: %d unconsumed bytes after actions stream", len(rest))
	}

	updates, err := decodeUpdates(updatesBuf)
	if err != nil {
		return nil, nil, err
	}
	return actions, updates, nil
}
