// Package packets holds the typed handshake, status, and login packet
// bodies the connection state machine parses and emits. Play-phase
// packets are never decoded here: once a session reaches play, frames pass
// through as opaque bytes.
package packets

import "io"

// ID identifies a packet within whatever state it was read in. IDs are only
// unique within a single network phase, same as the wire protocol itself.
type ID int32

const (
	IDHandshake ID = 0x00

	IDStatusRequest  ID = 0x00
	IDStatusResponse ID = 0x00
	IDPingRequest    ID = 0x01
	IDPongResponse   ID = 0x01

	IDLoginStart         ID = 0x00
	IDEncryptionRequest  ID = 0x01
	IDLoginSuccess       ID = 0x02
	IDSetCompression     ID = 0x03
	IDEncryptionResponse ID = 0x01
	IDDisconnectLogin    ID = 0x00
	IDDisconnectPlay     ID = 0x1B
)

// Packet is the common shape of every handshake/status/login packet: it
// knows its own ID and can serialize itself to or from a body reader. Encode
// must be idempotent on a fresh writer; Decode must consume the reader
// exactly, leaving nothing unread on a well-formed body.
type Packet interface {
	PacketID() ID
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}
