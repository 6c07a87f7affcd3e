// Package clientinfo defines the identity record login produces and play
// consumes.
package clientinfo

import (
	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/protocol/packets"
)

// ClientInfo is the resolved identity of a logged-in client: who they are
// (from Mojang in online mode, derived locally in offline mode) and which
// handshake they arrived with.
type ClientInfo struct {
	Username        string
	UUID            uuid.UUID
	IP              string
	Properties      []packets.Property
	ProtocolVersion int32
	Hostname        string
}
