// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package transaction defines the transaction shape the mempool stores.
// Signature scheme and payload semantics belong to the caller; the mempool
// only cares about Public, Nonce and Digest.
package transaction

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"

	"github.com/commonwarexyz/battleware/pkg/core/data/account"
)

// Transaction carries an issuer's public key, a per-account nonce, an
// opaque payload, and the signature binding them together.
type Transaction struct {
	Public    account.PublicKey
	Nonce     uint64
	Payload   []byte
	Signature [64]byte
}

// Sign builds and signs a transaction for the given private key, nonce and
// payload.
func Sign(priv ed25519.PrivateKey, nonce uint64, payload []byte) Transaction {
	var pub account.PublicKey
	copy(pub[:], priv.Public().(ed25519.PublicKey))

	tx := Transaction{
		Public:  pub,
		Nonce:   nonce,
		Payload: append([]byte(nil), payload...),
	}
	sig := ed25519.Sign(priv, signingBody(pub, nonce, tx.Payload))
	copy(tx.Signature[:], sig)
	return tx
}

// Verify reports whether the transaction's signature matches its own
// Public, Nonce and Payload fields.
func (t Transaction) Verify() bool {
	return ed25519.Verify(t.Public[:], signingBody(t.Public, t.Nonce, t.Payload), t.Signature[:])
}

// Digest returns the transaction's content digest. Two transactions that
// differ only in Payload, for the same Public and Nonce, have distinct
// digests.
func (t Transaction) Digest() account.Digest {
	sum := sha256.Sum256(signingBody(t.Public, t.Nonce, t.Payload))
	var d account.Digest
	copy(d[:], sum[:])
	return d
}

func signingBody(pub account.PublicKey, nonce uint64, payload []byte) []byte {
	buf := make([]byte, 0, len(pub)+8+len(payload))
	buf = append(buf, pub[:]...)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	buf = append(buf, nonceBytes[:]...)
	buf = append(buf, payload...)
	return buf
}
