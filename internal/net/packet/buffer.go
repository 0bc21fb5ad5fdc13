package packet

import "encoding/binary"

// varHeaderLen is the id plus the length field of a variable frame.
const varHeaderLen = 4

// Buffer accumulates bytes from one TCP stream and cuts them into frames
// using the length table. The protocol has no delimiters, so one unknown id
// desynchronizes the rest of the stream: Next reports it and never guesses.
//
// A Buffer belongs to a single connection. Reset it (or use a new one) when
// moving to another server.
type Buffer struct {
	buf []byte
}

func NewBuffer() *Buffer {
	return &Buffer{buf: make([]byte, 0, 4096)}
}

// Feed appends bytes read from the stream.
func (b *Buffer) Feed(p []byte) {
	b.buf = append(b.buf, p...)
}

// Reset drops any buffered bytes.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Next returns the next complete frame. ok is false when the buffered bytes
// do not yet hold a whole frame; they are kept for the next Feed. The
// returned frame is a copy owned by the caller.
//
// Errors are *FrameError wrapping ErrUnknownPacket or ErrBadLength. They are
// fatal for the connection; the buffer is left as it was.
func (b *Buffer) Next() (frame []byte, ok bool, err error) {
	if len(b.buf) < 2 {
		return nil, false, nil
	}
	id := binary.LittleEndian.Uint16(b.buf)
	n := FrameLength(id)
	switch {
	case n == 0:
		return nil, false, &FrameError{ID: id, Err: ErrUnknownPacket}
	case n == VarLen:
		if len(b.buf) < varHeaderLen {
			return nil, false, nil
		}
		n = int(binary.LittleEndian.Uint16(b.buf[2:]))
		if n < varHeaderLen {
			return nil, false, &FrameError{ID: id, Length: n, Err: ErrBadLength}
		}
	}
	if len(b.buf) < n {
		return nil, false, nil
	}

	frame = make([]byte, n)
	copy(frame, b.buf[:n])
	rest := copy(b.buf, b.buf[n:])
	b.buf = b.buf[:rest]
	return frame, true, nil
}

// Drain returns every complete frame currently buffered, in stream order.
// On error the frames cut before the bad one are still returned.
func (b *Buffer) Drain() ([][]byte, error) {
	var frames [][]byte
	for {
		frame, ok, err := b.Next()
		if err != nil {
			return frames, err
		}
		if !ok {
			return frames, nil
		}
		frames = append(frames, frame)
	}
}
