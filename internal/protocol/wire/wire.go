// Package wire provides the byte-level read/write primitives typed packet
// bodies are built from: strings, UUIDs, and the fixed-width numeric fields
// the handshake/status/login packets use.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/varint"
)

// ReadVarInt reads one VarInt a byte at a time from r.
func ReadVarInt(r io.Reader) (int32, error) {
	var value int32
	var shift uint
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		value |= int32(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, varint.ErrTooLarge
		}
	}
}

// WriteVarInt writes one VarInt to w.
func WriteVarInt(w io.Writer, v int32) error {
	var buf [varint.MaxLen]byte
	_, err := w.Write(varint.Encode(buf[:0], v))
	return err
}

// ReadString reads a VarInt-prefixed UTF-8 string, rejecting a declared
// length over maxLen encoded bytes.
func ReadString(r io.Reader, maxLen int) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("wire: read string length: %w", err)
	}
	if n < 0 || int(n) > maxLen {
		return "", fmt.Errorf("wire: string length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("wire: read string body: %w", err)
	}
	return string(buf), nil
}

// WriteString writes a VarInt-prefixed UTF-8 string.
func WriteString(w io.Writer, s string, maxLen int) error {
	if len(s) > maxLen {
		return fmt.Errorf("wire: string of %d bytes exceeds max %d", len(s), maxLen)
	}
	if err := WriteVarInt(w, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadUUID reads a 16-byte UUID.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.UUID{}, err
	}
	return uuid.FromBytes(buf[:])
}

// WriteUUID writes a 16-byte UUID.
func WriteUUID(w io.Writer, u uuid.UUID) error {
	b, err := u.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadUint16 reads a big-endian unsigned short (used for the port field).
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// WriteUint16 writes a big-endian unsigned short.
func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadInt64 reads a big-endian signed long.
func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// WriteInt64 writes a big-endian signed long.
func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

// ReadBool reads a single boolean byte.
func ReadBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

// WriteBool writes a single boolean byte.
func WriteBool(w io.Writer, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

// ReadByteArray reads a VarInt-prefixed opaque byte array (used for the
// RSA-encrypted fields in the encryption handshake).
func ReadByteArray(r io.Reader, maxLen int) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read byte array length: %w", err)
	}
	if n < 0 || int(n) > maxLen {
		return nil, fmt.Errorf("wire: byte array length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("wire: read byte array body: %w", err)
	}
	return buf, nil
}

// WriteByteArray writes a VarInt-prefixed opaque byte array.
func WriteByteArray(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
