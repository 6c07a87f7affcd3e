package packets

import (
	"io"

	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/protocol/wire"
)

// LoginStart is the client's request to begin authentication.
type LoginStart struct {
	Username string
	UUID     uuid.UUID
}

func (p *LoginStart) PacketID() ID { return IDLoginStart }

func (p *LoginStart) Encode(w io.Writer) error {
	if err := wire.WriteString(w, p.Username, 16); err != nil {
		return err
	}
	return wire.WriteUUID(w, p.UUID)
}

func (p *LoginStart) Decode(r io.Reader) error {
	var err error
	if p.Username, err = wire.ReadString(r, 16); err != nil {
		return err
	}
	p.UUID, err = wire.ReadUUID(r)
	return err
}

// maxVerifyTokenLen and maxKeyDERLen bound the opaque byte arrays in the
// encryption handshake; both are well under these limits in practice (a
// 1024-bit RSA SPKI is around 160 bytes, the verify token 4-16 bytes).
const (
	maxKeyDERLen      = 4096
	maxVerifyTokenLen = 256
	maxCiphertextLen  = 4096
)

// EncryptionRequest is sent by the server to start the online-mode
// handshake. ServerID is always empty on the wire but kept as
// a field for symmetry with the digest computation.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func (p *EncryptionRequest) PacketID() ID { return IDEncryptionRequest }

func (p *EncryptionRequest) Encode(w io.Writer) error {
	if err := wire.WriteString(w, p.ServerID, 20); err != nil {
		return err
	}
	if err := wire.WriteByteArray(w, p.PublicKey); err != nil {
		return err
	}
	return wire.WriteByteArray(w, p.VerifyToken)
}

func (p *EncryptionRequest) Decode(r io.Reader) error {
	var err error
	if p.ServerID, err = wire.ReadString(r, 20); err != nil {
		return err
	}
	if p.PublicKey, err = wire.ReadByteArray(r, maxKeyDERLen); err != nil {
		return err
	}
	p.VerifyToken, err = wire.ReadByteArray(r, maxVerifyTokenLen)
	return err
}

// EncryptionResponse carries the client's RSA-encrypted shared secret and
// verify token.
type EncryptionResponse struct {
	SharedSecretCiphertext []byte
	VerifyTokenCiphertext  []byte
}

func (p *EncryptionResponse) PacketID() ID { return IDEncryptionResponse }

func (p *EncryptionResponse) Encode(w io.Writer) error {
	if err := wire.WriteByteArray(w, p.SharedSecretCiphertext); err != nil {
		return err
	}
	return wire.WriteByteArray(w, p.VerifyTokenCiphertext)
}

func (p *EncryptionResponse) Decode(r io.Reader) error {
	var err error
	if p.SharedSecretCiphertext, err = wire.ReadByteArray(r, maxCiphertextLen); err != nil {
		return err
	}
	p.VerifyTokenCiphertext, err = wire.ReadByteArray(r, maxCiphertextLen)
	return err
}

// Property is one signed (or unsigned) profile property, e.g. "textures".
type Property struct {
	Name      string
	Value     string
	Signature string
}

// LoginSuccess finalizes authentication and hands the client its resolved
// identity.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []Property
}

func (p *LoginSuccess) PacketID() ID { return IDLoginSuccess }

func (p *LoginSuccess) Encode(w io.Writer) error {
	if err := wire.WriteUUID(w, p.UUID); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Username, 16); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, int32(len(p.Properties))); err != nil {
		return err
	}
	for _, prop := range p.Properties {
		if err := wire.WriteString(w, prop.Name, 32767); err != nil {
			return err
		}
		if err := wire.WriteString(w, prop.Value, 32767); err != nil {
			return err
		}
		hasSig := prop.Signature != ""
		if err := wire.WriteBool(w, hasSig); err != nil {
			return err
		}
		if hasSig {
			if err := wire.WriteString(w, prop.Signature, 32767); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *LoginSuccess) Decode(r io.Reader) error {
	var err error
	if p.UUID, err = wire.ReadUUID(r); err != nil {
		return err
	}
	if p.Username, err = wire.ReadString(r, 16); err != nil {
		return err
	}
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return err
	}
	p.Properties = make([]Property, count)
	for i := range p.Properties {
		prop := &p.Properties[i]
		if prop.Name, err = wire.ReadString(r, 32767); err != nil {
			return err
		}
		if prop.Value, err = wire.ReadString(r, 32767); err != nil {
			return err
		}
		hasSig, err := wire.ReadBool(r)
		if err != nil {
			return err
		}
		if hasSig {
			if prop.Signature, err = wire.ReadString(r, 32767); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetCompression is sent once, right before compression is enabled locally,
// telling the peer the threshold below which packets stay uncompressed.
type SetCompression struct {
	Threshold int32
}

func (p *SetCompression) PacketID() ID { return IDSetCompression }

func (p *SetCompression) Encode(w io.Writer) error {
	return wire.WriteVarInt(w, p.Threshold)
}

func (p *SetCompression) Decode(r io.Reader) error {
	v, err := wire.ReadVarInt(r)
	p.Threshold = v
	return err
}

// DisconnectLogin ends a session during the login phase with a chat-JSON
// reason.
type DisconnectLogin struct {
	Reason string
}

func (p *DisconnectLogin) PacketID() ID { return IDDisconnectLogin }

func (p *DisconnectLogin) Encode(w io.Writer) error { return writeLongString(w, p.Reason) }

func (p *DisconnectLogin) Decode(r io.Reader) error {
	s, err := readLongString(r)
	p.Reason = s
	return err
}

// DisconnectPlay ends a session during the play phase with a chat-JSON
// reason (sent by the gateway when no backend can be resolved or dialed).
type DisconnectPlay struct {
	Reason string
}

func (p *DisconnectPlay) PacketID() ID { return IDDisconnectPlay }

func (p *DisconnectPlay) Encode(w io.Writer) error { return writeLongString(w, p.Reason) }

func (p *DisconnectPlay) Decode(r io.Reader) error {
	s, err := readLongString(r)
	p.Reason = s
	return err
}
