package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPacket means the stream carries an id the length table does
	// not recognize. The stream is desynchronized and cannot be recovered.
	ErrUnknownPacket = errors.New("unknown packet id")
	// ErrBadLength means a variable frame declared a total length shorter
	// than its own 4-byte header.
	ErrBadLength = errors.New("invalid variable frame length")
	// ErrShortFrame means a decoder tried to read past the end of a frame.
	ErrShortFrame = errors.New("read past end of frame")
	// ErrNotDecodable means the id has no decode routine.
	ErrNotDecodable = errors.New("no decoder for packet")
)

// FrameError reports a framing failure for a specific packet id.
type FrameError struct {
	ID     uint16
	Length int // declared length, for ErrBadLength
	Err    error
}

func (e *FrameError) Error() string {
	if errors.Is(e.Err, ErrBadLength) {
		return fmt.Sprintf("%v: %s declares %d bytes", e.Err, Label(e.ID), e.Length)
	}
	return fmt.Sprintf("%v: %s", e.Err, Label(e.ID))
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
