// Package auth implements the online-mode authentication handshake: RSA key
// exchange with the client, the signed session digest, and the Mojang
// session-server verification call. Offline-mode identity derivation lives
// here too since it's the other branch of the same decision.
package auth

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/wardenproxy/warden/internal/conn"
	"github.com/wardenproxy/warden/internal/mccrypto"
	"github.com/wardenproxy/warden/internal/protocol/packets"
)

// sessionServerTimeout bounds the Mojang HTTP call; 30s matches vanilla
// server behavior.
const sessionServerTimeout = 30 * time.Second

const sessionServerURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// verifyTokenSize is the length of the random challenge sent in
// EncryptionRequest.
const verifyTokenSize = 16

// ErrUnverified means Mojang's session server returned HTTP 204: the
// client never actually joined this server ID. The caller should disconnect
// with a user-visible, translated reason rather than a raw error.
var ErrUnverified = fmt.Errorf("auth: session server returned unverified (204)")

// Profile is the authenticated identity Mojang returned.
type Profile struct {
	UUID       uuid.UUID
	Username   string
	Properties []packets.Property
}

// Online runs the full RSA/Mojang handshake against the client connection c.
// clientIP is appended as &ip=... to the session-server request when
// preventProxyConns is set.
func Online(c *conn.Connection, keys *mccrypto.KeyPair, username, clientIP string, preventProxyConns bool) (*Profile, error) {
	verifyToken := make([]byte, verifyTokenSize)
	if _, err := rand.Read(verifyToken); err != nil {
		return nil, fmt.Errorf("auth: generate verify token: %w", err)
	}

	if err := c.Send(&packets.EncryptionRequest{
		ServerID:    "",
		PublicKey:   keys.PublicDER,
		VerifyToken: verifyToken,
	}); err != nil {
		return nil, fmt.Errorf("auth: send encryption request: %w", err)
	}

	var resp packets.EncryptionResponse
	if err := c.Recv(&resp); err != nil {
		return nil, fmt.Errorf("auth: recv encryption response: %w", err)
	}

	verifyTokenPlain, err := keys.Decrypt(resp.VerifyTokenCiphertext)
	if err != nil {
		return nil, fmt.Errorf("auth: decrypt verify token: %w", err)
	}
	if !bytes.Equal(verifyTokenPlain, verifyToken) {
		return nil, fmt.Errorf("auth: verify token mismatch")
	}

	sharedSecret, err := keys.Decrypt(resp.SharedSecretCiphertext)
	if err != nil {
		return nil, fmt.Errorf("auth: decrypt shared secret: %w", err)
	}
	if len(sharedSecret) != 16 {
		return nil, fmt.Errorf("auth: shared secret must be 16 bytes, got %d", len(sharedSecret))
	}

	if err := c.EnableEncryption(sharedSecret); err != nil {
		return nil, fmt.Errorf("auth: enable encryption: %w", err)
	}

	digest := mccrypto.SessionDigest("", sharedSecret, keys.PublicDER)

	return verifySession(username, digest, clientIP, preventProxyConns)
}

func verifySession(username, digest, clientIP string, preventProxyConns bool) (*Profile, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("serverId", digest)
	if preventProxyConns {
		q.Set("ip", clientIP)
	}

	reqURL := sessionServerURL + "?" + q.Encode()
	httpClient := &http.Client{Timeout: sessionServerTimeout}

	resp, err := httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("auth: session server request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeProfile(resp.Body, username)
	case http.StatusNoContent:
		return nil, ErrUnverified
	default:
		return nil, fmt.Errorf("auth: session server returned status %d", resp.StatusCode)
	}
}

type sessionResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Properties []struct {
		Name      string `json:"name"`
		Value     string `json:"value"`
		Signature string `json:"signature,omitempty"`
	} `json:"properties"`
}

func decodeProfile(body io.Reader, expectedUsername string) (*Profile, error) {
	var sr sessionResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("auth: decode session response: %w", err)
	}
	if sr.Name != expectedUsername {
		return nil, fmt.Errorf("auth: session server name %q does not match %q", sr.Name, expectedUsername)
	}

	id, err := uuid.Parse(sr.ID)
	if err != nil {
		return nil, fmt.Errorf("auth: parse profile uuid %q: %w", sr.ID, err)
	}

	props := make([]packets.Property, len(sr.Properties))
	for i, p := range sr.Properties {
		props[i] = packets.Property{Name: p.Name, Value: p.Value, Signature: p.Signature}
	}

	return &Profile{UUID: id, Username: sr.Name, Properties: props}, nil
}

// Offline derives a deterministic identity with no Mojang round trip: the
// UUID is the first 16 bytes of SHA-256(username), and the profile carries
// no properties.
func Offline(username string) *Profile {
	sum := sha256.Sum256([]byte(username))
	id, _ := uuid.FromBytes(sum[:16])
	return &Profile{UUID: id, Username: username}
}
