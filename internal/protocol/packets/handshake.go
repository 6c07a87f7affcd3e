package packets

import (
	"io"

	"github.com/wardenproxy/warden/internal/protocol/wire"
)

// maxServerAddressLen bounds Handshake.ServerAddress. Vanilla clients send
// at most 255 bytes here, but the BungeeCord IP-forwarding convention packs
// the client IP, UUID, and the full properties JSON (skin textures run over
// a kilobyte base64) into this same field on the backend leg, so the limit
// must leave room for that payload.
const maxServerAddressLen = 3072

// Handshake is the first packet a client sends, declaring its intent.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (p *Handshake) PacketID() ID { return IDHandshake }

func (p *Handshake) Encode(w io.Writer) error {
	if err := wire.WriteVarInt(w, p.ProtocolVersion); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.ServerAddress, maxServerAddressLen); err != nil {
		return err
	}
	if err := wire.WriteUint16(w, p.ServerPort); err != nil {
		return err
	}
	return wire.WriteVarInt(w, p.NextState)
}

func (p *Handshake) Decode(r io.Reader) error {
	var err error
	if p.ProtocolVersion, err = wire.ReadVarInt(r); err != nil {
		return err
	}
	if p.ServerAddress, err = wire.ReadString(r, maxServerAddressLen); err != nil {
		return err
	}
	if p.ServerPort, err = wire.ReadUint16(r); err != nil {
		return err
	}
	p.NextState, err = wire.ReadVarInt(r)
	return err
}

// NextStateStatus and NextStateLogin are the only legal Handshake.NextState
// values; anything else is a fatal framing error.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)
