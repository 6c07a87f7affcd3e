// Package conn implements the Connection object: a TCP socket bound to one
// framer pair, exposing typed recv/send for the pre-play handshake and a raw
// pipe fast path for play-phase frames.
package conn

import (
	"fmt"
	"net"
	"time"

	"github.com/wardenproxy/warden/common/bufpool"
	commnet "github.com/wardenproxy/warden/common/net"
	"github.com/wardenproxy/warden/internal/admission"
	"github.com/wardenproxy/warden/internal/mccrypto"
	"github.com/wardenproxy/warden/internal/protocol/packet"
	"github.com/wardenproxy/warden/internal/protocol/packets"
)

// readChunkSize is how much we ask the kernel for per read(2) call while
// filling the decoder.
const readChunkSize = 4096

// writeTimeout bounds how long Send will wait for a write to land before
// treating the peer as dead.
const writeTimeout = 5 * time.Second

// Connection binds one TCP socket to one encoder/decoder pair and,
// optionally, the admission permit that must be released when it closes.
type Connection struct {
	addr   net.Addr
	sock   net.Conn
	enc    *packet.Encoder
	dec    *packet.Decoder
	permit *admission.Permit
}

// New wraps an accepted client socket, applying its admission permit.
func New(sock net.Conn, permit *admission.Permit) *Connection {
	optimizeTCP(sock)
	return &Connection{
		addr:   sock.RemoteAddr(),
		sock:   sock,
		enc:    packet.NewEncoder(),
		dec:    packet.NewDecoder(),
		permit: permit,
	}
}

// NewUnmanaged wraps a socket with no admission permit, for the backend leg
// of a session: backend sockets are not rate-limited by the client
// semaphore.
func NewUnmanaged(sock net.Conn) *Connection {
	optimizeTCP(sock)
	return &Connection{
		addr: sock.RemoteAddr(),
		sock: sock,
		enc:  packet.NewEncoder(),
		dec:  packet.NewDecoder(),
	}
}

func optimizeTCP(sock net.Conn) {
	_ = commnet.OptimizeTCPConn(sock)
}

// Addr returns the remote address of the underlying socket.
func (c *Connection) Addr() net.Addr { return c.addr }

// Close releases the admission permit (if any) and closes the socket.
func (c *Connection) Close() error {
	if c.permit != nil {
		c.permit.Release()
	}
	return c.sock.Close()
}

// fill reads one chunk from the socket into the decoder, returning
// io.ErrUnexpectedEOF-style failure via a plain error if the peer closed.
func (c *Connection) fill() error {
	buf := bufpool.Get(readChunkSize)
	defer bufpool.Put(buf)

	n, err := c.sock.Read(buf)
	if n == 0 && err == nil {
		return fmt.Errorf("conn: zero-byte read from %s", c.addr)
	}
	if n > 0 {
		c.dec.Queue(buf[:n])
	}
	if err != nil {
		return fmt.Errorf("conn: read from %s: %w", c.addr, err)
	}
	return nil
}

// Recv loops reading until the decoder holds one full frame, then decodes
// it into p.
func (c *Connection) Recv(p packets.Packet) error {
	for {
		has, err := c.dec.HasNext()
		if err != nil {
			return fmt.Errorf("conn: recv: %w", err)
		}
		if has {
			break
		}
		if err := c.fill(); err != nil {
			return err
		}
	}
	body, err := c.dec.TryNext()
	if err != nil {
		return fmt.Errorf("conn: recv: %w", err)
	}
	return packets.Decode(body, p)
}

// RecvRaw loops reading until the decoder holds one full frame, then
// returns its decoded-but-unparsed body, for callers that must inspect the
// packet ID before choosing which concrete type to decode into.
func (c *Connection) RecvRaw() ([]byte, error) {
	for {
		has, err := c.dec.HasNext()
		if err != nil {
			return nil, fmt.Errorf("conn: recv: %w", err)
		}
		if has {
			break
		}
		if err := c.fill(); err != nil {
			return nil, err
		}
	}
	body, err := c.dec.TryNext()
	if err != nil {
		return nil, fmt.Errorf("conn: recv: %w", err)
	}
	return body, nil
}

// Send encodes p, frames it, and writes the result with a 5-second timeout.
func (c *Connection) Send(p packets.Packet) error {
	body, err := packets.Encode(p)
	if err != nil {
		return fmt.Errorf("conn: send: %w", err)
	}
	if err := c.enc.Append(body); err != nil {
		return fmt.Errorf("conn: send: %w", err)
	}
	wire := c.enc.Take()

	if err := c.sock.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("conn: set write deadline: %w", err)
	}
	if _, err := c.sock.Write(wire); err != nil {
		return fmt.Errorf("conn: send to %s: %w", c.addr, err)
	}
	return nil
}

// SetCompression sends a SetCompression packet, then enables compression on
// both the local decoder and encoder.
func (c *Connection) SetCompression(threshold int32) error {
	if err := c.Send(&packets.SetCompression{Threshold: threshold}); err != nil {
		return err
	}
	c.ApplyCompression(threshold)
	return nil
}

// ApplyCompression enables compression on the local decoder/encoder without
// sending a SetCompression packet, for the backend leg of a session: the
// backend sends SetCompression to us, so we only need to start honoring it.
func (c *Connection) ApplyCompression(threshold int32) {
	c.dec.SetCompression(true)
	c.enc.SetCompression(int(threshold))
}

// EnableEncryption installs a fresh AES-128/CFB8 stream pair on both
// framers, keyed and IV'd by sharedSecret.
func (c *Connection) EnableEncryption(sharedSecret []byte) error {
	pair, err := mccrypto.NewStreamPair(sharedSecret)
	if err != nil {
		return fmt.Errorf("conn: enable encryption: %w", err)
	}
	c.enc.EnableEncryption(pair.Encrypt)
	c.dec.EnableEncryption(pair.Decrypt)
	return nil
}

// PipeOnce reads one full play-phase frame from c and re-frames it onto
// dst's encoder before writing it out, returning the number of wire bytes
// written to dst. The frame's contents are never decoded into a concrete
// packet type: once play begins, frames are opaque bytes to the proxy core,
// so re-framing (not raw byte splicing) is only needed to retarget
// compression between legs with different thresholds.
func (c *Connection) PipeOnce(dst *Connection) (int, error) {
	for {
		has, err := c.dec.HasNext()
		if err != nil {
			return 0, fmt.Errorf("conn: pipe: %w", err)
		}
		if has {
			break
		}
		if err := c.fill(); err != nil {
			return 0, err
		}
	}
	body, err := c.dec.TryNext()
	if err != nil {
		return 0, fmt.Errorf("conn: pipe: %w", err)
	}
	if err := dst.enc.Append(body); err != nil {
		return 0, fmt.Errorf("conn: pipe: %w", err)
	}
	wire := dst.enc.Take()
	if err := dst.sock.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return 0, fmt.Errorf("conn: set write deadline: %w", err)
	}
	n, err := dst.sock.Write(wire)
	if err != nil {
		return n, fmt.Errorf("conn: pipe write to %s: %w", dst.addr, err)
	}
	return n, nil
}
