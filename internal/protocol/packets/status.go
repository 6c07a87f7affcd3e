package packets

import "io"

// StatusRequest is the empty "ping me" packet a client sends first in the
// status branch.
type StatusRequest struct{}

func (p *StatusRequest) PacketID() ID         { return IDStatusRequest }
func (p *StatusRequest) Encode(w io.Writer) error { return nil }
func (p *StatusRequest) Decode(r io.Reader) error { return nil }

// StatusResponse carries the pre-rendered JSON status blob.
type StatusResponse struct {
	JSON string
}

func (p *StatusResponse) PacketID() ID { return IDStatusResponse }

func (p *StatusResponse) Encode(w io.Writer) error {
	return writeLongString(w, p.JSON)
}

func (p *StatusResponse) Decode(r io.Reader) error {
	s, err := readLongString(r)
	p.JSON = s
	return err
}

// PingRequest and PongResponse carry an opaque round-trip payload the
// client uses to measure latency.
type PingRequest struct {
	Payload int64
}

func (p *PingRequest) PacketID() ID { return IDPingRequest }

func (p *PingRequest) Encode(w io.Writer) error {
	return writeInt64(w, p.Payload)
}

func (p *PingRequest) Decode(r io.Reader) error {
	v, err := readInt64(r)
	p.Payload = v
	return err
}

type PongResponse struct {
	Payload int64
}

func (p *PongResponse) PacketID() ID { return IDPongResponse }

func (p *PongResponse) Encode(w io.Writer) error {
	return writeInt64(w, p.Payload)
}

func (p *PongResponse) Decode(r io.Reader) error {
	v, err := readInt64(r)
	p.Payload = v
	return err
}
