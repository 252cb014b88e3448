// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package account holds the small, comparable value types shared by the
// transaction and mempool packages: account public keys and content
// digests.
package account

import "encoding/hex"

// PublicKey identifies a transaction's issuer. It is comparable, so it can
// be used directly as a map key for the mempool's per-account index.
type PublicKey [32]byte

// String returns the hex encoding of the key.
func (p PublicKey) String() string {
	return hex.EncodeToString(p[:])
}

// Digest is the 32-byte content hash of a transaction, serving as its
// globally unique identifier in the mempool's primary index.
type Digest [32]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
