package mccrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// rsaKeyBits is the key size the vanilla Minecraft protocol has always used
// for the login encryption-request public key.
const rsaKeyBits = 1024

// KeyPair is the process-wide RSA keypair used to bootstrap the online-mode
// encryption handshake. It is generated once at startup and shared
// immutably by every session: the private key decrypts each client's
// encryption response, and the DER-encoded public key is both sent to the
// client and folded into the Mojang session digest.
type KeyPair struct {
	Private   *rsa.PrivateKey
	PublicDER []byte
}

// GenerateKeyPair creates a fresh 1024-bit RSA keypair and DER-encodes its
// public key as a SubjectPublicKeyInfo, matching what vanilla clients expect
// in the EncryptionRequest packet.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("mccrypto: generate RSA key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("mccrypto: marshal public key: %w", err)
	}
	return &KeyPair{Private: priv, PublicDER: der}, nil
}

// Decrypt reverses an RSA/PKCS#1 v1.5 ciphertext produced by the client
// against our public key (the shared secret and verify token in
// EncryptionResponse are both encrypted this way).
func (k *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	return rsa.DecryptPKCS1v15(rand.Reader, k.Private, ciphertext)
}
