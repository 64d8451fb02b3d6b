package net

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
)

// Wire format: one JSON document per websocket message. A compressed
// connection sends the same document zstd-compressed in a binary message.

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// EncodeFrame marshals v and returns the websocket message type and payload.
func EncodeFrame(v any, compress bool) (int, []byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, nil, fmt.Errorf("encode frame: %w", err)
	}
	if !compress {
		return websocket.TextMessage, data, nil
	}
	return websocket.BinaryMessage, zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

// DecodeFrame reverses EncodeFrame. Binary messages are zstd payloads.
func DecodeFrame(messageType int, data []byte, v any) error {
	if messageType == websocket.BinaryMessage {
		raw, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompress frame (%d bytes): %w", len(data), err)
		}
		data = raw
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}
