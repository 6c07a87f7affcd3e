package gateway

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/clientinfo"
	"github.com/wardenproxy/warden/internal/protocol/packets"
)

func TestBungeeCordAddressFormat(t *testing.T) {
	id := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	info := &clientinfo.ClientInfo{
		Username: "Notch",
		UUID:     id,
		IP:       "203.0.113.5",
		Properties: []packets.Property{
			{Name: "textures", Value: "abc=="},
		},
	}

	got, err := bungeeCordAddress("10.0.0.9:25565", info)
	if err != nil {
		t.Fatalf("bungeeCordAddress: %v", err)
	}

	parts := strings.Split(got, "\x00")
	if len(parts) != 4 {
		t.Fatalf("forwarding string has %d null-separated parts, want 4: %q", len(parts), got)
	}
	if parts[0] != "10.0.0.9" {
		t.Fatalf("backend ip = %q, want %q", parts[0], "10.0.0.9")
	}
	if parts[1] != "203.0.113.5" {
		t.Fatalf("client ip = %q, want %q", parts[1], "203.0.113.5")
	}
	if parts[2] != "069a79f444e94726a5befca90e38aaf5" {
		t.Fatalf("uuid without hyphens = %q", parts[2])
	}
	if !strings.Contains(parts[3], `"textures"`) {
		t.Fatalf("properties JSON missing textures property: %q", parts[3])
	}
}
