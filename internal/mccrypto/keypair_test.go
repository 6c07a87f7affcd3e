package mccrypto_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/wardenproxy/warden/internal/mccrypto"
)

func TestGenerateKeyPairRoundTrip(t *testing.T) {
	kp, err := mccrypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if len(kp.PublicDER) == 0 {
		t.Fatal("expected a non-empty DER-encoded public key")
	}

	secret := []byte("0123456789abcdef")
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, &kp.Private.PublicKey, secret)
	if err != nil {
		t.Fatalf("EncryptPKCS1v15: %v", err)
	}

	decrypted, err := kp.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(decrypted) != string(secret) {
		t.Fatalf("decrypted = %q, want %q", decrypted, secret)
	}
}
