// Package packet implements the length-prefixed, optionally compressed,
// optionally AES/CFB8-encrypted framing layer of the Minecraft Java Edition
// protocol: an Encoder that turns packet bodies into wire frames, and
// a Decoder that turns a stream of bytes back into them.
package packet

import (
	"bytes"
	"compress/zlib"
	"crypto/cipher"
	"fmt"

	"github.com/wardenproxy/warden/internal/varint"
)

// MaxPacketSize is the largest value a frame's packet_len varint may encode.
// A 5-byte varint could represent more, but the protocol caps frames at
// 2^21-1 bytes; anything over that is a fatal framing error.
const MaxPacketSize = 1<<21 - 1

// compressionLevel is the fixed zlib level vanilla servers use when
// compression is active. Not configurable.
const compressionLevel = 4

// Encoder accumulates encoded packet bodies into an output buffer, framing,
// compressing, and encrypting them as configured. It is created fresh per
// connection and lives for the connection's lifetime.
type Encoder struct {
	buf           bytes.Buffer
	compressBuf   bytes.Buffer
	threshold     int
	compressionOn bool
	cipherStream  cipher.Stream
}

// NewEncoder returns an Encoder with compression and encryption disabled.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Append frames one packet body and adds it to the pending output buffer.
// The whole operation is atomic: on error the encoder's buffer is left
// exactly as it was before the call.
func (e *Encoder) Append(body []byte) error {
	dataLen := len(body)

	if !e.compressionOn {
		return e.appendUncompressed(body, dataLen)
	}

	if dataLen > e.threshold {
		return e.appendCompressed(body, dataLen)
	}

	return e.appendCompressionDisabledMarker(body, dataLen)
}

func (e *Encoder) appendUncompressed(body []byte, dataLen int) error {
	if dataLen > MaxPacketSize {
		return fmt.Errorf("packet: body of %d bytes exceeds maximum packet size", dataLen)
	}
	var hdr [varint.MaxLen]byte
	e.buf.Write(varint.Encode(hdr[:0], int32(dataLen)))
	e.buf.Write(body)
	return nil
}

// appendCompressed deflates body into the packet. Layout:
// varint(packet_len) varint(data_len) deflated-bytes.
func (e *Encoder) appendCompressed(body []byte, dataLen int) error {
	e.compressBuf.Reset()
	zw, err := zlib.NewWriterLevel(&e.compressBuf, compressionLevel)
	if err != nil {
		return fmt.Errorf("packet: new zlib writer: %w", err)
	}
	if _, err := zw.Write(body); err != nil {
		return fmt.Errorf("packet: zlib compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("packet: zlib close: %w", err)
	}

	dataLenSize := varint.Size(int32(dataLen))
	packetLen := dataLenSize + e.compressBuf.Len()
	if packetLen > MaxPacketSize {
		return fmt.Errorf("packet: compressed body of %d bytes exceeds maximum packet size", packetLen)
	}

	var hdr [varint.MaxLen]byte
	e.buf.Write(varint.Encode(hdr[:0], int32(packetLen)))
	hdr = [varint.MaxLen]byte{}
	e.buf.Write(varint.Encode(hdr[:0], int32(dataLen)))
	e.buf.Write(e.compressBuf.Bytes())
	return nil
}

// appendCompressionDisabledMarker emits the body uncompressed but under a
// compression-enabled connection: a leading zero-valued data_len varint
// marks "no compression applied to this packet".
func (e *Encoder) appendCompressionDisabledMarker(body []byte, dataLen int) error {
	packetLen := 1 + dataLen
	if packetLen > MaxPacketSize {
		return fmt.Errorf("packet: body of %d bytes exceeds maximum packet size", dataLen)
	}
	var hdr [varint.MaxLen]byte
	e.buf.Write(varint.Encode(hdr[:0], int32(packetLen)))
	e.buf.WriteByte(0)
	e.buf.Write(body)
	return nil
}

// Take applies the stream cipher (if installed) to everything accumulated
// so far and detaches it, leaving the encoder's buffer empty. Subsequent
// packets accumulate fresh and are encrypted the next time Take is called.
func (e *Encoder) Take() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	e.buf.Reset()
	if e.cipherStream != nil {
		e.cipherStream.XORKeyStream(out, out)
	}
	return out
}

// SetCompression turns compression on with the given threshold. A threshold
// of 0 still enables compression (every packet above 0 bytes compresses);
// the caller decides whether to call this at all.
func (e *Encoder) SetCompression(threshold int) {
	e.compressionOn = true
	e.threshold = threshold
}

// EnableEncryption installs the stream cipher used for every future Take.
// Must not be called twice.
func (e *Encoder) EnableEncryption(stream cipher.Stream) {
	if e.cipherStream != nil {
		panic("packet: encryption already enabled")
	}
	e.cipherStream = stream
}
