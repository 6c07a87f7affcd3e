package gateway

import (
	"encoding/binary"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/conn"
	"github.com/wardenproxy/warden/internal/protocol/packets"
)

// sampleUUID is the fixed placeholder player-sample entry: the integer
// 12345 stored in the low bytes of a uuid.
var sampleUUID = func() uuid.UUID {
	var b [16]byte
	binary.BigEndian.PutUint16(b[14:], 12345)
	return uuid.UUID(b)
}()

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type statusPlayers struct {
	Online int            `json:"online"`
	Max    int32          `json:"max"`
	Sample []statusSample `json:"sample"`
}

type statusDescription struct {
	Text string `json:"text"`
}

type statusBlob struct {
	Version     statusVersion     `json:"version"`
	Players     statusPlayers     `json:"players"`
	Description statusDescription `json:"description"`
	Favicon     string            `json:"favicon,omitempty"`
}

// buildStatusJSON renders the status-response JSON blob, using the
// already-loaded favicon data URI (empty if none) and the protocol version
// the client itself declared in its Handshake.
func (s *Server) buildStatusJSON(protocolVersion int32) (string, error) {
	blob := statusBlob{
		Version: statusVersion{Name: "Lure", Protocol: protocolVersion},
		Players: statusPlayers{
			Online: 0,
			Max:    s.cfg.Proxy.MaxPlayers,
			Sample: []statusSample{{Name: "foobar", ID: sampleUUID.String()}},
		},
		Description: statusDescription{Text: s.cfg.Proxy.MOTD},
		Favicon:     s.favicon,
	}

	b, err := json.Marshal(blob)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Server) handleStatus(c *conn.Connection, hs *packets.Handshake) error {
	var req packets.StatusRequest
	if err := c.Recv(&req); err != nil {
		return err
	}

	blob, err := s.buildStatusJSON(hs.ProtocolVersion)
	if err != nil {
		return err
	}
	if err := c.Send(&packets.StatusResponse{JSON: blob}); err != nil {
		return err
	}
	s.metrics.StatusPinged()

	var ping packets.PingRequest
	if err := c.Recv(&ping); err != nil {
		// A status checker that disconnects right after the response
		// (no ping) is normal behavior, not an error worth surfacing.
		return nil
	}
	return c.Send(&packets.PongResponse{Payload: ping.Payload})
}
