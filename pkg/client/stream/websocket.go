// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package stream

import "github.com/gorilla/websocket"

// wsTransport adapts a gorilla/websocket connection to Transport. Any
// keepalive (ping/pong) is handled transparently by the gorilla library
// below this layer.
type wsTransport struct {
	conn *websocket.Conn
}

// NewWebSocketTransport wraps an already-dialed and upgraded websocket
// connection as a Transport. The handshake itself (URL resolution, TLS,
// upgrade negotiation) is the caller's concern.
func NewWebSocketTransport(conn *websocket.Conn) Transport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) ReadFrame() (Frame, error) {
	kind, data, err := t.conn.ReadMessage()
	if err != nil {
		// Any close frame from the peer, whatever its status code, ends the
		// stream as a close. CloseAbnormalClosure is never sent on the wire:
		// gorilla synthesizes it when the connection drops without a close
		// frame, so it stays a transport error.
		if ce, ok := err.(*websocket.CloseError); ok && ce.Code != websocket.CloseAbnormalClosure {
			return Frame{Kind: FrameClose}, nil
		}
		return Frame{}, err
	}

	switch kind {
	case websocket.BinaryMessage:
		return Frame{Kind: FrameBinary, Payload: data}, nil
	case websocket.CloseMessage:
		return Frame{Kind: FrameClose}, nil
	default:
		return Frame{Kind: FrameOther}, nil
	}
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
