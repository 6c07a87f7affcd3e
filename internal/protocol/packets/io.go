package packets

import (
	"bytes"
	"fmt"

	"github.com/wardenproxy/warden/internal/protocol/wire"
)

// Encode serializes p into a frame body: a VarInt packet ID followed by its
// fields. The returned bytes are what an Encoder.Append call expects.
func Encode(p Packet) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarInt(&buf, int32(p.PacketID())); err != nil {
		return nil, fmt.Errorf("packets: write packet id: %w", err)
	}
	if err := p.Encode(&buf); err != nil {
		return nil, fmt.Errorf("packets: encode %T: %w", p, err)
	}
	return buf.Bytes(), nil
}

// PeekID reads just the leading VarInt packet ID from body, for callers
// that must dispatch on ID before knowing which concrete type to decode
// into (e.g. a backend login reply that may arrive as either
// SetCompression or LoginSuccess, per the protocol's own ambiguity).
func PeekID(body []byte) (ID, error) {
	r := bytes.NewReader(body)
	id, err := wire.ReadVarInt(r)
	if err != nil {
		return 0, fmt.Errorf("packets: read packet id: %w", err)
	}
	return ID(id), nil
}

// Decode parses a frame body into p. It fails if the body's packet ID
// doesn't match p's, or if bytes remain unconsumed after p.Decode returns.
func Decode(body []byte, p Packet) error {
	r := bytes.NewReader(body)
	id, err := wire.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("packets: read packet id: %w", err)
	}
	if ID(id) != p.PacketID() {
		return fmt.Errorf("packets: unexpected packet id 0x%02x, want 0x%02x", id, p.PacketID())
	}
	if err := p.Decode(r); err != nil {
		return fmt.Errorf("packets: decode %T: %w", p, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("packets: %d bytes left over after decoding %T", r.Len(), p)
	}
	return nil
}
