// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto implements risu's end-to-end encryption primitives:
// Argon2id key derivation, ChaCha20-Poly1305 authenticated encryption, and
// salt generation. Parameters are fixed by the wire protocol (§6): any
// deviation breaks compatibility with notes encrypted by another device.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // KiB
	argonThreads uint8  = 4
	keyLen       uint32 = 32

	// SaltLen is the length in bytes of a freshly generated salt.
	SaltLen = 16

	// ValidatorSentinel is encrypted under a candidate key during unlock;
	// successful decryption to this exact string proves the passphrase.
	ValidatorSentinel = "RISU-VALID"
)

// Sentinel error kinds, matching §7's error-kind taxonomy. Callers use
// errors.Is rather than inspecting transport or message text.
var (
	// ErrInvalidInput is returned when a salt, key, or ciphertext payload
	// cannot be decoded or used.
	ErrInvalidInput = errors.New("crypto: invalid input")

	// ErrPayloadTooShort is returned when a ciphertext payload decodes to
	// fewer bytes than the nonce size.
	ErrPayloadTooShort = errors.New("crypto: payload too short")

	// ErrIntegrityFailure is returned when AEAD authentication fails —
	// either the key is wrong or the ciphertext was tampered with; the two
	// cases are indistinguishable by design.
	ErrIntegrityFailure = errors.New("crypto: integrity failure")

	// ErrEncoding is returned when decrypted plaintext is not valid UTF-8.
	ErrEncoding = errors.New("crypto: invalid encoding")
)

// DeriveKey derives a 32-byte symmetric key from passphrase and the raw
// salt bytes using Argon2id with m=65536 KiB, t=3, p=4. salt must be the
// raw decoded bytes, not a PHC string.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrInvalidInput)
	}
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLen)
	return key, nil
}

// DeriveKeyAsync runs DeriveKey on a dedicated goroutine so that callers on
// a UI-owning goroutine never block on the ~hundreds-of-milliseconds Argon2id
// computation. The result or error is delivered on the returned channel
// exactly once.
func DeriveKeyAsync(passphrase string, salt []byte) <-chan DeriveResult {
	out := make(chan DeriveResult, 1)
	go func() {
		key, err := DeriveKey(passphrase, salt)
		out <- DeriveResult{Key: key, Err: err}
	}()
	return out
}

// DeriveResult carries the outcome of an asynchronous key derivation.
type DeriveResult struct {
	Key []byte
	Err error
}

// GenerateSalt returns base64(16 random bytes), for first-time E2E enable.
func GenerateSalt() (string, error) {
	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("crypto: generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DecodeSalt decodes a base64 salt as stored by the Repository or returned
// by the remote service back into the raw bytes DeriveKey expects.
func DecodeSalt(saltB64 string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return salt, nil
}

// Encrypt seals plaintext under key with a fresh 96-bit nonce from a
// cryptographic RNG, and returns base64(nonce ‖ ciphertext). A fresh nonce
// is generated on every call; callers must never reuse a nonce.
func Encrypt(plaintext []byte, key []byte) (string, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	wire := append(nonce, sealed...)
	return base64.StdEncoding.EncodeToString(wire), nil
}

// EncryptString is a convenience wrapper around Encrypt for UTF-8 text.
func EncryptString(plaintext string, key []byte) (string, error) {
	return Encrypt([]byte(plaintext), key)
}

// Decrypt opens a base64(nonce ‖ ciphertext) payload produced by Encrypt
// and returns the plaintext UTF-8 bytes.
func Decrypt(payloadB64 string, key []byte) ([]byte, error) {
	wire, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(wire) < chacha20poly1305.NonceSize {
		return nil, ErrPayloadTooShort
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	nonce, ciphertext := wire[:chacha20poly1305.NonceSize], wire[chacha20poly1305.NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrIntegrityFailure
	}

	if !utf8.Valid(plaintext) {
		return nil, ErrEncoding
	}
	return plaintext, nil
}

// DecryptString is a convenience wrapper around Decrypt returning a string.
func DecryptString(payloadB64 string, key []byte) (string, error) {
	plaintext, err := Decrypt(payloadB64, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
