package packet

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"replicore/channel"
)

// DefaultMTU bounds the total encoded size of a packet, header included.
const DefaultMTU = 1200

// EncodeBody packs a sequence of channel messages into a varint-framed
// body layout: `channel_id:varint | message_id:varint |
// fragment_index:varint | fragment_count:varint | len:varint | payload`
// repeated.
// protowire supplies the varint codec so the wire format stays compact
// without requiring full protobuf message definitions.
func EncodeBody(messages []channel.Message) []byte {
	var body []byte
	for _, msg := range messages {
		body = protowire.AppendVarint(body, uint64(msg.Channel))
		body = protowire.AppendVarint(body, uint64(msg.ID))
		body = protowire.AppendVarint(body, uint64(msg.FragmentIndex))
		body = protowire.AppendVarint(body, uint64(msg.FragmentCount))
		body = protowire.AppendVarint(body, uint64(len(msg.Bytes)))
		body = append(body, msg.Bytes...)
	}
	return body
}

// DecodeBody unpacks a packet body into the channel messages it carries.
func DecodeBody(body []byte) ([]channel.Message, error) {
	var out []channel.Message
	for len(body) > 0 {
		chID, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, fmt.Errorf("packet: malformed channel id varint")
		}
		body = body[n:]

		msgID, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, fmt.Errorf("packet: malformed message id varint")
		}
		body = body[n:]

		fragIdx, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, fmt.Errorf("packet: malformed fragment index varint")
		}
		body = body[n:]

		fragCount, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, fmt.Errorf("packet: malformed fragment count varint")
		}
		body = body[n:]

		length, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, fmt.Errorf("packet: malformed length varint")
		}
		body = body[n:]

		if uint64(len(body)) < length {
			return nil, fmt.Errorf("packet: truncated payload, want %d have %d", length, len(body))
		}
		payload := append([]byte(nil), body[:length]...)
		body = body[length:]

		out = append(out, channel.Message{
			Channel:       channel.ID(chID),
			ID:            channel.MessageID(msgID),
			FragmentIndex: uint16(fragIdx),
			FragmentCount: uint16(fragCount),
			Bytes:         payload,
		})
	}
	return out, nil
}

// EncodedSize reports how many bytes a message contributes once framed,
// used by the packet builder to respect the MTU.
func EncodedSize(msg channel.Message) int {
	size := protowire.SizeVarint(uint64(msg.Channel))
	size += protowire.SizeVarint(uint64(msg.ID))
	size += protowire.SizeVarint(uint64(msg.FragmentIndex))
	size += protowire.SizeVarint(uint64(msg.FragmentCount))
	size += protowire.SizeVarint(uint64(len(msg.Bytes)))
	size += len(msg.Bytes)
	return size
}
