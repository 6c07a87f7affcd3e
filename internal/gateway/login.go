package gateway

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/wardenproxy/warden/internal/auth"
	"github.com/wardenproxy/warden/internal/clientinfo"
	"github.com/wardenproxy/warden/internal/conn"
	"github.com/wardenproxy/warden/internal/protocol/packets"
	"github.com/wardenproxy/warden/internal/router"
	"github.com/wardenproxy/warden/internal/session"
)

// handleLogin drives the login branch of the handshake: authentication,
// compression negotiation, login success, then handoff to play. It returns
// handedOff=true once a PipeSession has taken ownership of
// closing c (and, on success, the backend connection) — the caller must not
// close c itself in that case.
func (s *Server) handleLogin(c *conn.Connection, hs *packets.Handshake) (handedOff bool, err error) {
	var start packets.LoginStart
	if err := c.Recv(&start); err != nil {
		return false, err
	}

	clientIP, _, err := net.SplitHostPort(c.Addr().String())
	if err != nil {
		clientIP = c.Addr().String()
	}

	profile, err := s.authenticate(c, start.Username, clientIP)
	if err != nil {
		if errors.Is(err, auth.ErrUnverified) {
			_ = c.Send(&packets.DisconnectLogin{Reason: chatTranslate("multiplayer.disconnect.unverified_username")})
			return false, nil
		}
		s.metrics.AuthFailed()
		_ = c.Send(&packets.DisconnectLogin{Reason: chatText(err.Error())})
		return false, fmt.Errorf("gateway: authenticate %s: %w", start.Username, err)
	}
	if s.cfg.Proxy.OnlineMode {
		s.metrics.EncryptionEnabled()
	}

	threshold := s.cfg.Proxy.CompressionThreshold
	if threshold > 0 {
		if err := c.SetCompression(threshold); err != nil {
			return false, fmt.Errorf("gateway: set compression: %w", err)
		}
		s.metrics.CompressionEnabled()
	}

	if err := c.Send(&packets.LoginSuccess{
		UUID:       profile.UUID,
		Username:   profile.Username,
		Properties: profile.Properties,
	}); err != nil {
		return false, fmt.Errorf("gateway: send login success: %w", err)
	}
	s.metrics.LoggedIn(s.cfg.Proxy.OnlineMode)

	info := clientinfo.ClientInfo{
		Username:        profile.Username,
		UUID:            profile.UUID,
		IP:              clientIP,
		Properties:      profile.Properties,
		ProtocolVersion: hs.ProtocolVersion,
		Hostname:        hs.ServerAddress,
	}

	return s.enterPlay(c, &info)
}

func (s *Server) authenticate(c *conn.Connection, username, clientIP string) (*auth.Profile, error) {
	if s.cfg.Proxy.OnlineMode {
		return auth.Online(c, s.keys, username, clientIP, s.cfg.Proxy.PreventProxyConnections)
	}
	return auth.Offline(username), nil
}

// enterPlay resolves info's backend, dials it, replays the login handshake
// upstream, and hands off to a bidirectional pipe session. Once a
// PipeSession is constructed it owns closing both connections, so enterPlay
// reports handedOff=true from that point on regardless of how the session
// later ends.
func (s *Server) enterPlay(c *conn.Connection, info *clientinfo.ClientInfo) (handedOff bool, err error) {
	res, err := s.routes.Resolve(info.Hostname)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, router.ErrNoHostFound) {
			reason = "No host found"
		}
		_ = c.Send(&packets.DisconnectPlay{Reason: chatTextColor(reason, "red")})
		return false, nil
	}

	backend, err := s.dialBackend(res.Address, info)
	if err != nil {
		s.metrics.BackendDialFailed()
		_ = c.Send(&packets.DisconnectPlay{Reason: chatTextColor(err.Error(), "red")})
		return false, nil
	}

	ps := &session.PipeSession{Client: c, Backend: backend}
	return true, ps.Run()
}

// dialBackend opens the backend leg and replays the handshake, login start,
// compression, and login success sequence, leaving the backend connection
// ready for play.
func (s *Server) dialBackend(address string, info *clientinfo.ClientInfo) (*conn.Connection, error) {
	sock, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial backend %s: %w", address, err)
	}
	backend := conn.NewUnmanaged(sock)

	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("backend address %q: %w", address, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("backend port %q: %w", portStr, err)
	}

	serverAddress := address
	if s.cfg.Proxy.PlayerForwardMode == "bungeecord" {
		forwarded, err := bungeeCordAddress(address, info)
		if err != nil {
			backend.Close()
			return nil, err
		}
		serverAddress = forwarded
	}

	if err := backend.Send(&packets.Handshake{
		ProtocolVersion: info.ProtocolVersion,
		ServerAddress:   serverAddress,
		ServerPort:      uint16(port),
		NextState:       packets.NextStateLogin,
	}); err != nil {
		backend.Close()
		return nil, fmt.Errorf("send backend handshake: %w", err)
	}

	if err := backend.Send(&packets.LoginStart{Username: info.Username, UUID: info.UUID}); err != nil {
		backend.Close()
		return nil, fmt.Errorf("send backend login start: %w", err)
	}

	// The backend may reply with SetCompression followed by LoginSuccess,
	// or LoginSuccess alone if its own compression threshold is 0 — accept
	// either ordering by peeking the packet ID before deciding how to
	// decode it.
	body, err := backend.RecvRaw()
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("recv backend login reply: %w", err)
	}
	id, err := packets.PeekID(body)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("peek backend login reply: %w", err)
	}

	if id == packets.IDSetCompression {
		var setCompression packets.SetCompression
		if err := packets.Decode(body, &setCompression); err != nil {
			backend.Close()
			return nil, fmt.Errorf("decode backend set compression: %w", err)
		}
		if setCompression.Threshold > 0 {
			backend.ApplyCompression(setCompression.Threshold)
		}
		body, err = backend.RecvRaw()
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("recv backend login success: %w", err)
		}
	}

	var loginSuccess packets.LoginSuccess
	if err := packets.Decode(body, &loginSuccess); err != nil {
		backend.Close()
		return nil, fmt.Errorf("decode backend login success: %w", err)
	}

	return backend, nil
}

// bungeeCordAddress builds the null-separated IP-forwarding handshake
// address the BungeeCord convention expects.
func bungeeCordAddress(backendAddr string, info *clientinfo.ClientInfo) (string, error) {
	props := make([]forwardedProperty, len(info.Properties))
	for i, p := range info.Properties {
		props[i] = forwardedProperty{Name: p.Name, Value: p.Value, Signature: p.Signature}
	}
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("marshal forwarded properties: %w", err)
	}

	backendIP, _, err := net.SplitHostPort(backendAddr)
	if err != nil {
		backendIP = backendAddr
	}

	uuidNoHyphens := hex.EncodeToString(info.UUID[:])
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", backendIP, info.IP, uuidNoHyphens, propsJSON), nil
}

type forwardedProperty struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}
