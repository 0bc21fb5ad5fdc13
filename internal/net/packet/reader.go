package packet

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// Reader reads tmwAthena fields from one complete frame.
// Bytes 0-1 are always the packet id.
//
// Reads past the end of the frame do not panic: the first overrun records
// ErrShortFrame, and that read and every later one return zero values.
// Decoders check Err once they are done.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(frame []byte) *Reader {
	r := &Reader{data: frame}
	if len(frame) < 2 {
		r.err = fmt.Errorf("%w: frame of %d bytes has no id", ErrShortFrame, len(frame))
		return r
	}
	r.off = 2 // skip packet id
	return r
}

// ID returns the packet id, or 0 for a frame too short to carry one.
func (r *Reader) ID() uint16 {
	if len(r.data) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(r.data)
}

// Err returns the first overrun, if any.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.err != nil {
		return 0
	}
	return len(r.data) - r.off
}

// take advances the cursor by n and returns the consumed bytes, or nil on
// overrun.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: %s wants %d bytes at offset %d of %d",
			ErrShortFrame, Label(r.ID()), n, r.off, len(r.data))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Skip discards n bytes of padding or reserved fields.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadD reads 4 bytes as little-endian uint32.
func (r *Reader) ReadD() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadS reads a size-byte string field with its NUL padding stripped.
func (r *Reader) ReadS(size int) string {
	b := r.take(size)
	if b == nil {
		return ""
	}
	return decodeString(b)
}

// ReadText reads the rest of the frame as a string.
func (r *Reader) ReadText() string {
	return r.ReadS(r.Remaining())
}

// ReadIP reads a 4-byte IPv4 address in network order.
func (r *Reader) ReadIP() string {
	b := r.take(4)
	if b == nil {
		return ""
	}
	return netip.AddrFrom4([4]byte(b)).String()
}

// ReadPos reads a 3-byte packed position.
func (r *Reader) ReadPos() Coord {
	b := r.take(3)
	if b == nil {
		return Coord{}
	}
	return UnpackCoord([3]byte(b))
}
