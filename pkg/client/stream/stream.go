// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package stream consumes a live feed of events over a framed
// bidirectional transport: a detached reader goroutine decodes (and,
// optionally, verifies) each binary frame and hands the result to a
// single consumer through an unbounded queue, so a slow consumer never
// stalls verification of later frames or the detection of a close frame.
package stream

import (
	"context"

	logger "github.com/sirupsen/logrus"
)

var log = logger.WithFields(logger.Fields{"prefix": "stream"})

// FrameKind classifies an inbound transport frame. Only Binary and Close
// carry semantic weight; everything else is ignored.
type FrameKind int

const (
	// FrameBinary carries one encoded event.
	FrameBinary FrameKind = iota
	// FrameClose terminates the connection.
	FrameClose
	// FrameOther is text/ping/pong/control: ignored, no item produced.
	FrameOther
)

// Frame is one message read from the transport.
type Frame struct {
	Kind    FrameKind
	Payload []byte
}

// Transport is the bidirectional framed connection the stream reads from.
// It is read-only from the stream's perspective: the stream never writes
// back. Handshake, TLS and upgrade negotiation are the caller's concern;
// Transport is handed over already connected.
type Transport interface {
	// ReadFrame blocks for the next frame. A non-nil error is always
	// terminal and ends the reader loop.
	ReadFrame() (Frame, error)
	// Close releases the underlying connection.
	Close() error
}

// Decoder reconstructs a T from a frame's full payload. Trailing bytes
// left unconsumed are decoder-defined and not enforced by the stream.
type Decoder[T any] func(payload []byte) (T, error)

// Identity is the out-of-band trust anchor events are verified against.
type Identity [32]byte

// Verifiable is the capability an event type exposes when it wants its
// authenticity checked against an Identity before delivery.
type Verifiable interface {
	Verify(identity Identity) bool
}

type item[T any] struct {
	val T
	err error
}

// Stream delivers decoded events from a Transport to a single consumer.
// Construct with New (unverified) or NewWithVerifier (verified); consume
// with Next.
type Stream[T any] struct {
	queue *unboundedQueue[item[T]]
}

// New constructs a Stream in unverified mode: events are decoded but
// never checked for authenticity.
func New[T any](transport Transport, decode Decoder[T]) *Stream[T] {
	return newStream(transport, decode, nil)
}

// NewWithVerifier constructs a Stream in verified mode: every decoded
// event is passed through its Verifiable capability against identity
// before delivery. A false result yields an InvalidSignature item and the
// reader continues to the next frame.
func NewWithVerifier[T Verifiable](transport Transport, decode Decoder[T], identity Identity) *Stream[T] {
	verify := func(v T) bool { return v.Verify(identity) }
	return newStream(transport, decode, verify)
}

func newStream[T any](transport Transport, decode Decoder[T], verify func(T) bool) *Stream[T] {
	s := &Stream[T]{queue: newUnboundedQueue[item[T]]()}
	go s.run(transport, decode, verify)
	return s
}

func (s *Stream[T]) run(transport Transport, decode Decoder[T], verify func(T) bool) {
	defer func() {
		if err := transport.Close(); err != nil {
			log.WithError(err).Debug("error closing transport after reader exit")
		}
	}()
	defer s.queue.closeProducer()

	for {
		frame, err := transport.ReadFrame()
		if err != nil {
			log.WithError(err).Error("transport error")
			s.queue.push(item[T]{err: &Error{Kind: Transport, Cause: err}})
			return
		}

		switch frame.Kind {
		case FrameBinary:
			log.WithField("bytes", len(frame.Payload)).Trace("received binary frame")

			val, derr := decode(frame.Payload)
			if derr != nil {
				log.WithError(derr).Debug("failed to decode event")
				if !s.queue.push(item[T]{err: &Error{Kind: InvalidData, Cause: derr}}) {
					return
				}
				continue
			}

			if verify != nil && !verify(val) {
				log.Warn("failed to verify event signature")
				if !s.queue.push(item[T]{err: &Error{Kind: InvalidSignature}}) {
					return
				}
				continue
			}

			if !s.queue.push(item[T]{val: val}) {
				return
			}

		case FrameClose:
			log.Debug("connection closed by peer")
			s.queue.push(item[T]{err: &Error{Kind: ConnectionClosed}})
			return

		default:
			// Ignored: text/ping/pong/control.
		}
	}
}

// Next blocks for the next result: a decoded (and, when configured,
// verified) event, a *Error describing why no event was produced for a
// frame or why the stream ended, or ErrClosed once the stream has been
// fully drained after a terminal item. ctx governs only how long Next
// itself waits; it does not affect the reader goroutine.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	it, ok := s.queue.pop(ctx)
	if !ok {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, ErrClosed
	}
	return it.val, it.err
}

// Close drops the handle: the reader observes this at its next push
// attempt and exits, releasing the transport. Safe to call more than
// once.
func (s *Stream[T]) Close() {
	s.queue.closeConsumer()
}
