// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package events

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentity(t *testing.T) (Identity, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	var id Identity
	copy(id[:], pub)
	return id, priv
}

func signedSeed(t *testing.T, priv ed25519.PrivateKey, round uint64) Seed {
	t.Helper()
	s := Seed{Round: round, Value: [32]byte{1, 2, 3}}
	msg := append(append([]byte{}, namespace...), encodeSeedBody(s)...)
	copy(s.Signature[:], ed25519.Sign(priv, msg))
	return s
}

func signedEvents(t *testing.T, priv ed25519.PrivateKey, round uint64, items [][]byte) Events {
	t.Helper()
	e := Events{Round: round, Items: items}
	copy(e.Signature[:], ed25519.Sign(priv, encodeEventsBody(e)))
	return e
}

func TestSeedVerify(t *testing.T) {
	identity, priv := newIdentity(t)
	seed := signedSeed(t, priv, 7)

	assert.True(t, seed.Verify(identity))

	tampered := seed
	tampered.Round = 8
	assert.False(t, tampered.Verify(identity))
}

func TestEventsVerify(t *testing.T) {
	identity, priv := newIdentity(t)
	ev := signedEvents(t, priv, 3, [][]byte{[]byte("a"), []byte("bb")})

	assert.True(t, ev.Verify(identity))

	tampered := ev
	tampered.Items = [][]byte{[]byte("a"), []byte("cc")}
	assert.False(t, tampered.Verify(identity))
}

func TestUpdateVerifyDispatch(t *testing.T) {
	identity, priv := newIdentity(t)
	seed := signedSeed(t, priv, 1)
	ev := signedEvents(t, priv, 1, nil)

	seedUpdate := Update{Kind: UpdateSeed, Seed: seed}
	assert.True(t, seedUpdate.Verify(identity))

	eventsUpdate := Update{Kind: UpdateEvents, Events: ev}
	assert.True(t, eventsUpdate.Verify(identity))

	filteredUpdate := Update{Kind: UpdateFilteredEvents, FilteredEvents: ev}
	assert.True(t, filteredUpdate.Verify(identity))

	other, _ := newIdentity(t)
	assert.False(t, seedUpdate.Verify(other))
}

func TestDecodeSeedRoundTrip(t *testing.T) {
	_, priv := newIdentity(t)
	seed := signedSeed(t, priv, 42)

	payload := append(encodeSeedBody(seed), seed.Signature[:]...)
	decoded, err := DecodeSeed(payload)
	require.NoError(t, err)
	assert.Equal(t, seed, decoded)
}

func TestDecodeSeedTruncated(t *testing.T) {
	_, err := DecodeSeed([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeEventsRoundTrip(t *testing.T) {
	_, priv := newIdentity(t)
	ev := signedEvents(t, priv, 9, [][]byte{[]byte("x"), []byte("yz")})

	payload := append(encodeEventsBody(ev), ev.Signature[:]...)
	decoded, err := DecodeEvents(payload)
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)
}

func TestDecodeUpdateDispatchesByTag(t *testing.T) {
	_, priv := newIdentity(t)
	seed := signedSeed(t, priv, 5)

	seedPayload := append([]byte{byte(UpdateSeed)}, append(encodeSeedBody(seed), seed.Signature[:]...)...)
	decoded, err := DecodeUpdate(seedPayload)
	require.NoError(t, err)
	assert.Equal(t, UpdateSeed, decoded.Kind)
	assert.Equal(t, seed, decoded.Seed)
}

func TestDecodeUpdateUnknownKind(t *testing.T) {
	_, err := DecodeUpdate([]byte{99})
	assert.Error(t, err)
}

func TestParseIdentity(t *testing.T) {
	identity, _ := newIdentity(t)
	encoded := make([]byte, len(identity)*2)
	hexEncode(encoded, identity[:])

	parsed, err := ParseIdentity(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, identity, parsed)

	_, err = ParseIdentity("not-hex")
	assert.Error(t, err)

	_, err = ParseIdentity("ab")
	assert.Error(t, err)
}

func hexEncode(dst, src []byte) {
	const hexDigits = "0123456789abcdef"
	for i, b := range src {
		dst[i*2] = hexDigits[b>>4]
		dst[i*2+1] = hexDigits[b&0x0f]
	}
}
