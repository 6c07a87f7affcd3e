package varint_test

import (
	"bytes"
	"testing"

	"github.com/wardenproxy/warden/internal/varint"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		val  int32
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"127", 127, []byte{0x7f}},
		{"128", 128, []byte{0x80, 0x01}},
		{"255", 255, []byte{0xff, 0x01}},
		{"25565", 25565, []byte{0xdd, 0xc7, 0x01}},
		{"max", 2147483647, []byte{0xff, 0xff, 0xff, 0xff, 0x07}},
		{"min", -2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
		{"minus one", -1, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := varint.Encode(nil, tt.val)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("Encode(%d) = %x, want %x", tt.val, got, tt.want)
			}
			if size := varint.Size(tt.val); size != len(tt.want) {
				t.Fatalf("Size(%d) = %d, want %d", tt.val, size, len(tt.want))
			}

			value, n, err := varint.DecodePartial(got)
			if err != nil {
				t.Fatalf("DecodePartial() error = %v", err)
			}
			if n != len(got) {
				t.Fatalf("DecodePartial() consumed %d bytes, want %d", n, len(got))
			}
			if value != tt.val {
				t.Fatalf("DecodePartial() = %d, want %d", value, tt.val)
			}
		})
	}
}

func TestDecodePartialIncomplete(t *testing.T) {
	_, _, err := varint.DecodePartial([]byte{0x80, 0x80})
	if err != varint.ErrIncomplete {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}
}

func TestDecodePartialTooLarge(t *testing.T) {
	_, _, err := varint.DecodePartial([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if err != varint.ErrTooLarge {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestDecodePartialIgnoresTrailingBytes(t *testing.T) {
	buf := append(varint.Encode(nil, 300), 0xAA, 0xBB)
	value, n, err := varint.DecodePartial(buf)
	if err != nil {
		t.Fatalf("DecodePartial() error = %v", err)
	}
	if value != 300 || n != 2 {
		t.Fatalf("DecodePartial() = (%d, %d), want (300, 2)", value, n)
	}
}
