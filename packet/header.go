// Package packet frames channel messages into MTU-bounded packets and
// reconstructs per-message acknowledgement from the packet-level ack
// bitfield.
package packet

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed on-wire size of Header in bytes:
// packet_id:u16 | last_ack_id:u16 | ack_bits:u32 | tick:u16 | flags:u8.
const HeaderSize = 2 + 2 + 4 + 2 + 1

// Flag bits carried in the packet header.
const (
	// FlagMapped marks that entity references in this packet's Updates were
	// already remapped by the sender, so the receiver must not re-map them.
	FlagMapped uint8 = 1 << 0
)

// ID is a wrapping 16-bit packet sequence number.
type ID uint16

// Since returns the signed distance from other to id, mirroring tick.Tick's
// wraparound-safe comparison ( : "Packet id wraparound").
func (id ID) Since(other ID) int32 {
	diff := int32(uint16(id)) - int32(uint16(other))
	switch {
	case diff > 32767:
		diff -= 65536
	case diff < -32768:
		diff += 65536
	}
	return diff
}

// Header is the fixed-size packet header.
type Header struct {
	PacketID   ID
	LastAckID  ID
	AckBits    uint32
	SenderTick uint16
	Flags      uint8
}

// Encode serializes the header into its canonical 11-byte wire form.
func (h Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.BigEndian.PutUint16(buf[0:2], uint16(h.PacketID))
	binary.BigEndian.PutUint16(buf[2:4], uint16(h.LastAckID))
	binary.BigEndian.PutUint32(buf[4:8], h.AckBits)
	binary.BigEndian.PutUint16(buf[8:10], h.SenderTick)
	buf[10] = h.Flags
	return buf
}

// DecodeHeader parses a Header from the front of buf, returning the
// remaining bytes (the packet body). Malformed headers return an error
// without killing the session, failure model.
func DecodeHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, fmt.Errorf("packet: short header, got %d bytes want %d", len(buf), HeaderSize)
	}
	h := Header{
		PacketID:   ID(binary.BigEndian.Uint16(buf[0:2])),
		LastAckID:  ID(binary.BigEndian.Uint16(buf[2:4])),
		AckBits:    binary.BigEndian.Uint32(buf[4:8]),
		SenderTick: binary.BigEndian.Uint16(buf[8:10]),
		Flags:      buf[10],
	}
	return h, buf[HeaderSize:], nil
}
