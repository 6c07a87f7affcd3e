package packet

import (
	"bytes"
	"compress/zlib"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	"github.com/wardenproxy/warden/internal/varint"
)

// ErrNoPacketYet is returned by TryNext when the buffer does not yet contain
// one full frame. It is not an error condition for the caller: it means
// "read more bytes and try again".
var ErrNoPacketYet = errors.New("packet: no packet yet")

// Decoder buffers bytes read off the wire and extracts complete frames from
// them, reversing whatever compression and encryption the peer applied.
//
// Invariant: bytes in [0, cursor) have already been delivered to a caller;
// bytes in [cursor, len(buf)) are queued and unconsumed. The cursor is
// reclaimed lazily, at the start of the next TryNext call.
type Decoder struct {
	buf                []byte
	cursor             int
	compressionEnabled bool
	cipherStream       cipher.Stream
}

// NewDecoder returns a Decoder with compression and encryption disabled.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Queue appends newly read bytes to the input buffer. If a cipher is
// installed, only this newly appended range is decrypted in place.
func (d *Decoder) Queue(b []byte) {
	start := len(d.buf)
	d.buf = append(d.buf, b...)
	if d.cipherStream != nil {
		d.cipherStream.XORKeyStream(d.buf[start:], d.buf[start:])
	}
}

// SetCompression turns compression on or off for future frames.
func (d *Decoder) SetCompression(enabled bool) {
	d.compressionEnabled = enabled
}

// EnableEncryption installs the stream cipher and immediately decrypts any
// bytes already queued from the cursor onward, so activation mid-stream is
// safe as long as the peer hasn't pre-buffered already-encrypted bytes.
func (d *Decoder) EnableEncryption(stream cipher.Stream) {
	if d.cipherStream != nil {
		panic("packet: encryption already enabled")
	}
	d.cipherStream = stream
	stream.XORKeyStream(d.buf[d.cursor:], d.buf[d.cursor:])
}

// reclaim drops already-delivered bytes from the front of the buffer.
func (d *Decoder) reclaim() {
	if d.cursor == 0 {
		return
	}
	d.buf = append(d.buf[:0], d.buf[d.cursor:]...)
	d.cursor = 0
}

// HasNext is a non-destructive predicate: does the buffer already contain
// one full frame past the cursor? Used to drive a read loop without
// attempting a parse on every iteration.
func (d *Decoder) HasNext() (bool, error) {
	r := d.buf[d.cursor:]
	packetLen, n, err := varint.DecodePartial(r)
	if errors.Is(err, varint.ErrIncomplete) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("packet: malformed packet length varint: %w", err)
	}
	if packetLen < 0 || packetLen > MaxPacketSize {
		return false, fmt.Errorf("packet: packet length %d is out of bounds", packetLen)
	}
	return len(r)-n >= int(packetLen), nil
}

// TryNext attempts to extract one frame's body. It returns ErrNoPacketYet
// (not a real error) when the buffer doesn't yet hold a complete frame.
func (d *Decoder) TryNext() ([]byte, error) {
	d.reclaim()

	r := d.buf
	packetLen, n, err := varint.DecodePartial(r)
	if errors.Is(err, varint.ErrIncomplete) {
		return nil, ErrNoPacketYet
	}
	if err != nil {
		return nil, fmt.Errorf("packet: malformed packet length varint: %w", err)
	}
	if packetLen < 0 || packetLen > MaxPacketSize {
		return nil, fmt.Errorf("packet: packet length %d is out of bounds", packetLen)
	}

	r = r[n:]
	if len(r) < int(packetLen) {
		return nil, ErrNoPacketYet
	}
	frame := r[:packetLen]

	body, err := d.extractBody(frame)
	if err != nil {
		return nil, err
	}

	d.cursor = n + int(packetLen)
	return body, nil
}

// extractBody reverses compression (if enabled) on one frame's contents.
func (d *Decoder) extractBody(frame []byte) ([]byte, error) {
	if !d.compressionEnabled {
		return frame, nil
	}

	dataLen, n, err := varint.DecodePartial(frame)
	if err != nil {
		return nil, fmt.Errorf("packet: malformed data length varint: %w", err)
	}
	rest := frame[n:]

	if dataLen == 0 {
		return rest, nil
	}
	if dataLen < 0 || dataLen >= MaxPacketSize {
		return nil, fmt.Errorf("packet: decompressed packet length %d is out of bounds", dataLen)
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("packet: new zlib reader: %w", err)
	}
	defer zr.Close()

	out := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("packet: decompressing packet: %w", err)
	}
	return out, nil
}
