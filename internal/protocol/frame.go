package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest payload a frame can carry. The length prefix
// is an unsigned 16-bit big-endian integer.
const MaxFrameSize = 1<<16 - 1

var (
	ErrFrameTooLarge = errors.New("frame payload exceeds maximum size")
	ErrEmptyFrame    = errors.New("frame contains no payload")
)

// WriteFrame writes a single length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("payload of %d bytes: %w", len(payload), ErrFrameTooLarge)
	}

	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(payload)))

	if _, err := w.Write(length[:]); err != nil {
		return err
	}

	_, err := w.Write(payload)
	return err
}

// ReadFrame reads a single length-prefixed frame. A zero-length frame is
// malformed but recoverable - the stream stays aligned on frame boundaries.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length [2]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint16(length[:])
	if size == 0 {
		return nil, ErrEmptyFrame
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// WriteMessage JSON-encodes message into a single frame.
func WriteMessage(w io.Writer, message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return WriteFrame(w, payload)
}

// ReadMessage reads one frame and JSON-decodes it into T.
func ReadMessage[T any](r io.Reader) (T, error) {
	var message T

	payload, err := ReadFrame(r)
	if err != nil {
		return message, err
	}

	if err := json.Unmarshal(payload, &message); err != nil {
		return message, fmt.Errorf("failed to decode message: %w", err)
	}

	return message, nil
}
