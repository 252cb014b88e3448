// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package events defines the three consensus event shapes the client
// stream decodes from the node's websocket feed: a per-round randomness
// beacon (Seed), a batch of confirmed events (Events), and a tagged union
// of the two plus a filtered variant (Update).
package events

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/commonwarexyz/battleware/pkg/client/stream"
)

// Identity is the consensus group's verification key, known to the
// client a priori.
type Identity = stream.Identity

// namespace is the fixed byte-string domain separator mixed into every
// Seed's signed message, so a Seed signature cannot be replayed as a
// signature over some other namespace's message. It must match the
// producer's build-time constant exactly.
var namespace = []byte("battleware_seed")

// ParseIdentity decodes a hex-encoded identity, as accepted on the
// cmd/client command line.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errBadIdentityLength
	}
	copy(id[:], raw)
	return id, nil
}

// Seed is the per-round randomness beacon.
type Seed struct {
	Round     uint64
	Value     [32]byte
	Signature [64]byte
}

// Verify checks the Seed's signature against namespace and identity.
func (s Seed) Verify(identity Identity) bool {
	msg := append(append([]byte{}, namespace...), encodeSeedBody(s)...)
	return ed25519.Verify(identity[:], msg, s.Signature[:])
}

// Events is a batch of consensus-confirmed events.
type Events struct {
	Round     uint64
	Items     [][]byte
	Signature [64]byte
}

// Verify checks the Events batch's signature directly against identity
// (no namespace, unlike Seed).
func (e Events) Verify(identity Identity) bool {
	return ed25519.Verify(identity[:], encodeEventsBody(e), e.Signature[:])
}

// UpdateKind tags which variant an Update carries.
type UpdateKind uint8

const (
	UpdateSeed UpdateKind = iota
	UpdateEvents
	UpdateFilteredEvents
)

// Update is a tagged union over the three live-feed payloads the node
// pushes down the stream. Only the field matching Kind is populated.
type Update struct {
	Kind           UpdateKind
	Seed           Seed
	Events         Events
	FilteredEvents Events
}

// Verify dispatches verification to the active variant.
func (u Update) Verify(identity Identity) bool {
	switch u.Kind {
	case UpdateSeed:
		return u.Seed.Verify(identity)
	case UpdateEvents:
		return u.Events.Verify(identity)
	case UpdateFilteredEvents:
		return u.FilteredEvents.Verify(identity)
	default:
		return false
	}
}
