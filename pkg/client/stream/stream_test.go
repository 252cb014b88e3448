// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport replays a fixed sequence of frames, then blocks forever
// (simulating an idle connection) unless the sequence ends in an error or
// a close frame.
type fakeTransport struct {
	mu      sync.Mutex
	frames  []Frame
	errAt   error
	idx     int
	closed  bool
	closeCh chan struct{}
}

func newFakeTransport(frames []Frame, errAt error) *fakeTransport {
	return &fakeTransport{frames: frames, errAt: errAt, closeCh: make(chan struct{})}
}

func (f *fakeTransport) ReadFrame() (Frame, error) {
	f.mu.Lock()
	if f.idx < len(f.frames) {
		fr := f.frames[f.idx]
		f.idx++
		f.mu.Unlock()
		return fr, nil
	}
	if f.errAt != nil {
		err := f.errAt
		f.errAt = nil
		f.mu.Unlock()
		return Frame{}, err
	}
	f.mu.Unlock()
	<-f.closeCh
	return Frame{}, errors.New("fakeTransport: closed")
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.closeCh)
	}
	return nil
}

// u64 is a trivial decodable event: an 8-byte big-endian counter, with an
// optional embedded ok flag used to simulate verification failure.
type u64 struct {
	value uint64
	valid bool
}

func (e u64) Verify(Identity) bool { return e.valid }

func decodeU64(payload []byte) (u64, error) {
	if len(payload) != 9 {
		return u64{}, errors.New("bad length")
	}
	return u64{value: binary.BigEndian.Uint64(payload[:8]), valid: payload[8] == 1}, nil
}

func binaryFrame(value uint64, valid bool) Frame {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[:8], value)
	if valid {
		buf[8] = 1
	}
	return Frame{Kind: FrameBinary, Payload: buf}
}

func TestStreamOrdering(t *testing.T) {
	transport := newFakeTransport([]Frame{
		binaryFrame(1, true),
		binaryFrame(2, true),
		binaryFrame(3, true),
	}, nil)

	s := New[u64](transport, decodeU64)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for expected := uint64(1); expected <= 3; expected++ {
		val, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, expected, val.value)
	}
}

func TestStreamDecodeIsolation(t *testing.T) {
	transport := newFakeTransport([]Frame{
		binaryFrame(1, true),
		{Kind: FrameBinary, Payload: []byte("short")},
		binaryFrame(2, true),
	}, nil)

	s := New[u64](transport, decodeU64)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v1, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v1.value)

	_, err = s.Next(ctx)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InvalidData, serr.Kind)
	assert.False(t, serr.Terminal())

	v2, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v2.value)
}

func TestStreamVerificationIsolation(t *testing.T) {
	transport := newFakeTransport([]Frame{
		binaryFrame(1, true),
		binaryFrame(2, false),
		binaryFrame(3, true),
	}, nil)

	var identity Identity
	s := NewWithVerifier[u64](transport, decodeU64, identity)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v1, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v1.value)

	_, err = s.Next(ctx)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InvalidSignature, serr.Kind)
	assert.False(t, serr.Terminal())

	v3, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v3.value)
}

func TestStreamTerminalClose(t *testing.T) {
	transport := newFakeTransport([]Frame{
		binaryFrame(1, true),
		{Kind: FrameClose},
	}, nil)

	s := New[u64](transport, decodeU64)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.Next(ctx)
	require.NoError(t, err)

	_, err = s.Next(ctx)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ConnectionClosed, serr.Kind)
	assert.True(t, serr.Terminal())

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	// None forever after.
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStreamTerminalTransportError(t *testing.T) {
	transport := newFakeTransport(nil, errors.New("connection reset"))

	s := New[u64](transport, decodeU64)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.Next(ctx)
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, Transport, serr.Kind)
	assert.True(t, serr.Terminal())

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStreamOtherFramesIgnored(t *testing.T) {
	transport := newFakeTransport([]Frame{
		{Kind: FrameOther},
		binaryFrame(42, true),
	}, nil)

	s := New[u64](transport, decodeU64)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v.value)
}

// infiniteTransport keeps yielding binary frames until Close is called,
// simulating a live connection the reader is still actively polling.
type infiniteTransport struct {
	mu     sync.Mutex
	closed bool
}

func (f *infiniteTransport) ReadFrame() (Frame, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return Frame{}, errors.New("infiniteTransport: closed")
	}
	time.Sleep(time.Millisecond)
	return binaryFrame(1, true), nil
}

func (f *infiniteTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *infiniteTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestStreamCloseReleasesTransport(t *testing.T) {
	transport := &infiniteTransport{}
	s := New[u64](transport, decodeU64)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := s.Next(ctx)
	require.NoError(t, err)

	// Dropping the handle: subsequent reader push attempts observe the
	// consumer is gone and the reader exits, releasing the transport.
	s.Close()
	s.Close() // idempotent

	require.Eventually(t, transport.isClosed, time.Second, 5*time.Millisecond)
}
