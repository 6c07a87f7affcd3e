package packet_test

import (
	"bytes"
	"crypto/aes"
	"testing"

	"github.com/wardenproxy/warden/internal/mccrypto"
	"github.com/wardenproxy/warden/internal/protocol/packet"
)

func roundTrip(t *testing.T, body []byte, threshold int, encrypt bool) {
	t.Helper()

	enc := packet.NewEncoder()
	dec := packet.NewDecoder()

	if threshold >= 0 {
		enc.SetCompression(threshold)
		dec.SetCompression(true)
	}

	if encrypt {
		secret := []byte("0123456789abcdef")
		block, err := aes.NewCipher(secret)
		if err != nil {
			t.Fatalf("new cipher: %v", err)
		}
		enc.EnableEncryption(mccrypto.NewEncryptStream(block, secret))
		dec.EnableEncryption(mccrypto.NewDecryptStream(block, secret))
	}

	if err := enc.Append(body); err != nil {
		t.Fatalf("Append: %v", err)
	}
	wire := enc.Take()

	dec.Queue(wire)

	has, err := dec.HasNext()
	if err != nil {
		t.Fatalf("HasNext: %v", err)
	}
	if !has {
		t.Fatal("expected a full frame to be ready")
	}

	got, err := dec.TryNext()
	if err != nil {
		t.Fatalf("TryNext: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("decoded body = %x, want %x", got, body)
	}
}

func TestFramingRoundTrip(t *testing.T) {
	bodies := [][]byte{
		{},
		{0x01},
		bytes.Repeat([]byte{0xAB}, 64),
		bytes.Repeat([]byte{0xCD}, 512),
	}

	for _, body := range bodies {
		for _, threshold := range []int{-1, 0, 256} {
			for _, encrypt := range []bool{false, true} {
				roundTrip(t, body, threshold, encrypt)
			}
		}
	}
}

func TestTryNextReturnsNoPacketYetOnPartialFrame(t *testing.T) {
	enc := packet.NewEncoder()
	if err := enc.Append([]byte("hello")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	wire := enc.Take()

	dec := packet.NewDecoder()
	dec.Queue(wire[:len(wire)-1])

	if _, err := dec.TryNext(); err != packet.ErrNoPacketYet {
		t.Fatalf("TryNext = %v, want ErrNoPacketYet", err)
	}

	dec.Queue(wire[len(wire)-1:])
	got, err := dec.TryNext()
	if err != nil {
		t.Fatalf("TryNext after completing frame: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestAppendRejectsPacketOverMaxSize(t *testing.T) {
	enc := packet.NewEncoder()
	err := enc.Append(make([]byte, packet.MaxPacketSize+1))
	if err == nil {
		t.Fatal("expected an error for an oversized packet")
	}
}

func TestCompressionBelowThresholdUsesZeroMarker(t *testing.T) {
	enc := packet.NewEncoder()
	enc.SetCompression(256)

	body := []byte("short")
	if err := enc.Append(body); err != nil {
		t.Fatalf("Append: %v", err)
	}
	wire := enc.Take()

	// packet_len=6, data_len=0 (one byte each), then the raw body.
	if wire[1] != 0x00 {
		t.Fatalf("expected a zero data_len marker, got %x", wire[1])
	}

	dec := packet.NewDecoder()
	dec.SetCompression(true)
	dec.Queue(wire)

	got, err := dec.TryNext()
	if err != nil {
		t.Fatalf("TryNext: %v", err)
	}
	if string(got) != "short" {
		t.Fatalf("got %q, want %q", got, "short")
	}
}

func TestCompressionThresholdBoundary(t *testing.T) {
	const threshold = 64

	// A body of exactly threshold bytes stays uncompressed (zero marker);
	// one byte more and it must be deflated.
	atThreshold := bytes.Repeat([]byte{0x11}, threshold)
	overThreshold := bytes.Repeat([]byte{0x11}, threshold+1)

	enc := packet.NewEncoder()
	enc.SetCompression(threshold)
	if err := enc.Append(atThreshold); err != nil {
		t.Fatalf("Append at threshold: %v", err)
	}
	wire := enc.Take()
	if wire[1] != 0x00 {
		t.Fatalf("body of exactly threshold bytes: data_len marker = %x, want 0", wire[1])
	}

	if err := enc.Append(overThreshold); err != nil {
		t.Fatalf("Append over threshold: %v", err)
	}
	wire = enc.Take()
	if wire[1] == 0x00 {
		t.Fatal("body of threshold+1 bytes was sent with the uncompressed marker")
	}

	dec := packet.NewDecoder()
	dec.SetCompression(true)
	dec.Queue(wire)
	got, err := dec.TryNext()
	if err != nil {
		t.Fatalf("TryNext: %v", err)
	}
	if !bytes.Equal(got, overThreshold) {
		t.Fatal("compressed body did not round-trip")
	}
}

func TestQueueAcrossMultipleReads(t *testing.T) {
	enc := packet.NewEncoder()
	for _, s := range []string{"one", "two", "three"} {
		if err := enc.Append([]byte(s)); err != nil {
			t.Fatalf("Append(%q): %v", s, err)
		}
	}
	wire := enc.Take()

	dec := packet.NewDecoder()
	// Feed it in small, arbitrary chunks to simulate partial TCP reads.
	for i := 0; i < len(wire); i += 3 {
		end := i + 3
		if end > len(wire) {
			end = len(wire)
		}
		dec.Queue(wire[i:end])
	}

	var got []string
	for {
		has, err := dec.HasNext()
		if err != nil {
			t.Fatalf("HasNext: %v", err)
		}
		if !has {
			break
		}
		body, err := dec.TryNext()
		if err != nil {
			t.Fatalf("TryNext: %v", err)
		}
		got = append(got, string(body))
	}

	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %v packets, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("packet %d = %q, want %q", i, got[i], want[i])
		}
	}
}
