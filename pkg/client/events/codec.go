// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package events

import (
	"encoding/binary"
	"errors"
)

var errBadIdentityLength = errors.New("events: identity must be 32 bytes")
var errTruncatedFrame = errors.New("events: truncated frame")
var errUnknownUpdateKind = errors.New("events: unknown update kind")

// Wire layout below is a concrete stand-in for the node's real binary
// codec: fixed-width fields, a length-prefixed byte slice for
// Events.Items, and a one-byte tag for Update.
// Signing bodies reuse the wire encoding of everything but the Signature
// field, so the signed message is exactly what a verifier reconstructs
// from the frame.

func encodeSeedBody(s Seed) []byte {
	buf := make([]byte, 8+32)
	binary.BigEndian.PutUint64(buf[:8], s.Round)
	copy(buf[8:], s.Value[:])
	return buf
}

// DecodeSeed decodes a Seed from a contiguous byte slice: 8 bytes round,
// 32 bytes value, 64 bytes signature.
func DecodeSeed(payload []byte) (Seed, error) {
	const size = 8 + 32 + 64
	if len(payload) < size {
		return Seed{}, errTruncatedFrame
	}
	var s Seed
	s.Round = binary.BigEndian.Uint64(payload[:8])
	copy(s.Value[:], payload[8:40])
	copy(s.Signature[:], payload[40:104])
	return s, nil
}

func encodeEventsBody(e Events) []byte {
	buf := make([]byte, 8, 8+len(e.Items)*4)
	binary.BigEndian.PutUint64(buf[:8], e.Round)
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(e.Items)))
	buf = append(buf, count[:]...)
	for _, item := range e.Items {
		var itemLen [4]byte
		binary.BigEndian.PutUint32(itemLen[:], uint32(len(item)))
		buf = append(buf, itemLen[:]...)
		buf = append(buf, item...)
	}
	return buf
}

// DecodeEvents decodes an Events batch: 8 bytes round, 4 bytes item
// count, then for each item a 4-byte length prefix and its bytes,
// finally 64 bytes signature.
func DecodeEvents(payload []byte) (Events, error) {
	if len(payload) < 12 {
		return Events{}, errTruncatedFrame
	}
	var e Events
	e.Round = binary.BigEndian.Uint64(payload[:8])
	count := binary.BigEndian.Uint32(payload[8:12])
	offset := 12
	e.Items = make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(payload) {
			return Events{}, errTruncatedFrame
		}
		itemLen := binary.BigEndian.Uint32(payload[offset : offset+4])
		offset += 4
		if offset+int(itemLen) > len(payload) {
			return Events{}, errTruncatedFrame
		}
		item := append([]byte(nil), payload[offset:offset+int(itemLen)]...)
		e.Items = append(e.Items, item)
		offset += int(itemLen)
	}
	if offset+64 > len(payload) {
		return Events{}, errTruncatedFrame
	}
	copy(e.Signature[:], payload[offset:offset+64])
	return e, nil
}

// DecodeUpdate decodes a tagged Update: 1-byte kind tag followed by the
// matching variant's own wire encoding.
func DecodeUpdate(payload []byte) (Update, error) {
	if len(payload) < 1 {
		return Update{}, errTruncatedFrame
	}
	kind := UpdateKind(payload[0])
	rest := payload[1:]

	switch kind {
	case UpdateSeed:
		seed, err := DecodeSeed(rest)
		if err != nil {
			return Update{}, err
		}
		return Update{Kind: UpdateSeed, Seed: seed}, nil
	case UpdateEvents:
		ev, err := DecodeEvents(rest)
		if err != nil {
			return Update{}, err
		}
		return Update{Kind: UpdateEvents, Events: ev}, nil
	case UpdateFilteredEvents:
		ev, err := DecodeEvents(rest)
		if err != nil {
			return Update{}, err
		}
		return Update{Kind: UpdateFilteredEvents, FilteredEvents: ev}, nil
	default:
		return Update{}, errUnknownUpdateKind
	}
}
