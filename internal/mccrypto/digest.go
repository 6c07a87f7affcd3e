package mccrypto

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SessionDigest computes the signed session hash Mojang's session server
// expects in the `hasJoined` query string: SHA-1 over the server ID (empty
// in the login handshake), the shared secret, and the server's
// DER-encoded public key, rendered as a two's-complement signed hex string
// rather than the usual unsigned digest.
//
// Original implementation: https://gist.github.com/toqueteos/5372776
func SessionDigest(serverID string, sharedSecret, publicDER []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicDER)
	sum := h.Sum(nil)

	negative := sum[0]&0x80 == 0x80
	if negative {
		sum = twosComplement(sum)
	}

	res := strings.TrimLeft(hex.EncodeToString(sum), "0")
	if res == "" {
		res = "0"
	}
	if negative {
		res = "-" + res
	}
	return res
}

// twosComplement negates p as a big-endian two's-complement integer in
// place, used when the leading digest byte has its sign bit set.
func twosComplement(p []byte) []byte {
	carry := true
	for i := len(p) - 1; i >= 0; i-- {
		p[i] = ^p[i]
		if carry {
			carry = p[i] == 0xff
			p[i]++
		}
	}
	return p
}
