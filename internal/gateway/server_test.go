package gateway_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/config"
	"github.com/wardenproxy/warden/internal/conn"
	"github.com/wardenproxy/warden/internal/gateway"
	"github.com/wardenproxy/warden/internal/mccrypto"
	"github.com/wardenproxy/warden/internal/protocol/packets"
)

// startFakeBackend accepts one connection, replays the upstream login
// sequence (set compression, then login success) with compression left
// disabled, then echoes whatever play-phase bytes it receives back verbatim.
func startFakeBackend(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		sock, err := ln.Accept()
		if err != nil {
			return
		}
		defer sock.Close()
		c := conn.NewUnmanaged(sock)

		var hs packets.Handshake
		if err := c.Recv(&hs); err != nil {
			return
		}
		var start packets.LoginStart
		if err := c.Recv(&start); err != nil {
			return
		}
		if err := c.Send(&packets.SetCompression{Threshold: 0}); err != nil {
			return
		}
		if err := c.Send(&packets.LoginSuccess{UUID: start.UUID, Username: start.Username}); err != nil {
			return
		}
		io.Copy(sock, sock)
	}()

	return ln.Addr().String()
}

func TestGatewayOfflineLoginAndPipe(t *testing.T) {
	backendAddr := startFakeBackend(t)

	cfg := config.Default()
	cfg.Listener.Bind = "127.0.0.1:0"
	cfg.Proxy.OnlineMode = false
	cfg.Proxy.CompressionThreshold = 0
	cfg.Servers["lobby"] = backendAddr

	keys, err := mccrypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	srv := gateway.New(cfg, keys)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg.Listener.Bind = ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe(ctx) }()

	addr := waitForListener(t, cfg.Listener.Bind)

	sock, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial gateway: %v", err)
	}
	defer sock.Close()
	client := conn.NewUnmanaged(sock)

	if err := client.Send(&packets.Handshake{
		ProtocolVersion: 47,
		ServerAddress:   "play.example.com",
		ServerPort:      25577,
		NextState:       packets.NextStateLogin,
	}); err != nil {
		t.Fatalf("send handshake: %v", err)
	}
	if err := client.Send(&packets.LoginStart{Username: "Notch", UUID: uuid.Nil}); err != nil {
		t.Fatalf("send login start: %v", err)
	}

	var success packets.LoginSuccess
	if err := client.Recv(&success); err != nil {
		t.Fatalf("recv login success: %v", err)
	}
	if success.Username != "Notch" {
		t.Fatalf("LoginSuccess.Username = %q, want %q", success.Username, "Notch")
	}

	// Now in play: send one opaque frame and expect the backend's echo to
	// come back through the pipe unchanged.
	if err := sock.SetDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	if _, err := sock.Write([]byte{0x03, 0xAA, 0xBB, 0xCC}); err != nil {
		t.Fatalf("write play frame: %v", err)
	}

	got := make([]byte, 4)
	if _, err := io.ReadFull(sock, got); err != nil {
		t.Fatalf("read echoed frame: %v", err)
	}
	want := []byte{0x03, 0xAA, 0xBB, 0xCC}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("echoed frame = %x, want %x", got, want)
		}
	}
}

func waitForListener(t *testing.T, addr string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			c.Close()
			return addr
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("gateway never started listening on %s", addr)
	return ""
}
