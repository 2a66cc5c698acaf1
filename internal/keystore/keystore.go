// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package keystore holds the process-wide, single-slot derived encryption
// key in memory. It is empty at startup, populated by a successful unlock,
// and cleared on logout or on detection of a downgrade to the free plan.
//
// Go has no direct equivalent of Rust's zeroize crate, and none of the
// reference pack's dependencies provide one either; KeyStore instead wipes
// its held bytes explicitly before releasing them, which is the idiomatic
// manual substitute (see DESIGN.md).
package keystore

import "sync"

// KeyStore is a mutex-guarded holder for the current 32-byte encryption
// key. All accesses are synchronized; critical sections only copy bytes in
// or out, never hold the lock across I/O.
type KeyStore struct {
	mu  sync.Mutex
	key []byte
}

// New returns an empty KeyStore.
func New() *KeyStore {
	return &KeyStore{}
}

// Set copies key into the holder, replacing and wiping any previously held
// key.
func (k *KeyStore) Set(key []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	wipe(k.key)
	k.key = append([]byte(nil), key...)
}

// Get returns a copy of the held key and whether one is set. Callers that
// no longer need the copy should wipe it themselves once done.
func (k *KeyStore) Get() ([]byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key == nil {
		return nil, false
	}
	return append([]byte(nil), k.key...), true
}

// IsSet reports whether a key is currently held, without copying it.
func (k *KeyStore) IsSet() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.key != nil
}

// Clear wipes and releases the held key, if any.
func (k *KeyStore) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()

	wipe(k.key)
	k.key = nil
}

// wipe overwrites b's bytes with zero in place.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
