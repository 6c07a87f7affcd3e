package mccrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// StreamPair holds the independent encrypt and decrypt streams installed on
// one connection once encryption is enabled. Both are keyed and IV'd with
// the same 16-byte shared secret but maintain separate running state.
type StreamPair struct {
	Encrypt cipher.Stream
	Decrypt cipher.Stream
}

// NewStreamPair builds the encrypt/decrypt stream pair for a 16-byte shared
// secret, as produced by the encryption-response RSA decryption.
func NewStreamPair(sharedSecret []byte) (*StreamPair, error) {
	if len(sharedSecret) != 16 {
		return nil, fmt.Errorf("mccrypto: shared secret must be 16 bytes, got %d", len(sharedSecret))
	}
	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, fmt.Errorf("mccrypto: new AES cipher: %w", err)
	}
	return &StreamPair{
		Encrypt: NewEncryptStream(block, sharedSecret),
		Decrypt: NewDecryptStream(block, sharedSecret),
	}, nil
}
