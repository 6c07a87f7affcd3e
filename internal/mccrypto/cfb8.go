// Package mccrypto implements the cryptographic primitives of the Minecraft
// Java Edition login handshake: the AES-128/CFB8 stream cipher, the RSA
// keypair generated once per process, and the signed session digest used to
// verify a login with Mojang's session server.
package mccrypto

import "crypto/cipher"

// cfb8 implements AES-128 in CFB8 mode: each output byte depends on
// encrypting the current 16-byte shift register and XORing its first byte
// with the next plaintext byte, then shifting the register left by one byte.
// Encrypt and decrypt differ only in which byte (output or input) is fed
// back into the shift register.
type cfb8 struct {
	block     cipher.Block
	blockSize int
	shift     []byte
	tmp       []byte
	decrypt   bool
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	shift := make([]byte, len(iv))
	copy(shift, iv)
	return &cfb8{
		block:     block,
		blockSize: block.BlockSize(),
		shift:     shift,
		tmp:       make([]byte, block.BlockSize()),
		decrypt:   decrypt,
	}
}

// NewEncryptStream returns a cipher.Stream that encrypts in CFB8 mode over
// block, starting from iv (on a connection, both come from the 16-byte
// shared secret).
func NewEncryptStream(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

// NewDecryptStream returns a cipher.Stream that decrypts with AES-128/CFB8.
func NewDecryptStream(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func (c *cfb8) XORKeyStream(dst, src []byte) {
	for i := range src {
		copy(c.tmp, c.shift)
		c.block.Encrypt(c.shift, c.shift)
		keystreamByte := c.shift[0]

		in := src[i]
		out := in ^ keystreamByte
		dst[i] = out

		copy(c.shift, c.tmp[1:])
		if c.decrypt {
			c.shift[c.blockSize-1] = in
		} else {
			c.shift[c.blockSize-1] = out
		}
	}
}
