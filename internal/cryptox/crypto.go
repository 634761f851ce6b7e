// Package cryptox seals small JSON values (the persisted session) with
// AES-GCM under a key derived from a local secret with argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

var ErrEmptySecret = errors.New("empty secret")

// DeriveKey stretches secret with argon2id into a KeySize key.
func DeriveKey(secret []byte, salt []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize), nil
}

// Seal serializes v to JSON and encrypts it with AES-GCM. A fresh nonce is
// generated per call and returned separately.
func Seal(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(plaintext)

	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open reverses Seal and unmarshals the plaintext into v.
func Open(ciphertext, nonce, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
