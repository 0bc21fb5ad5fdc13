package packet

import "encoding/binary"

// Writer builds one outgoing tmwAthena frame. All multi-byte writes are
// little-endian and nothing is padded except explicitly sized strings.
type Writer struct {
	buf []byte
}

// NewWriter starts a frame with its 2-byte packet id.
func NewWriter(id uint16) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteH(id)
	return w
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteD writes 4 bytes little-endian.
func (w *Writer) WriteD(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteS writes s converted to single-byte characters as a field of exactly
// size bytes: truncated if longer, NUL-padded if shorter.
func (w *Writer) WriteS(s string, size int) {
	b := encodeString(s)
	if len(b) > size {
		b = b[:size]
	}
	w.buf = append(w.buf, b...)
	for i := len(b); i < size; i++ {
		w.buf = append(w.buf, 0)
	}
}

// WriteText writes s unterminated. It must be the last field.
// Text past what the 16-bit length field can describe is dropped.
func (w *Writer) WriteText(s string) {
	b := encodeString(s)
	if room := max(MaxFrameLen-len(w.buf), 0); len(b) > room {
		b = b[:room]
	}
	w.buf = append(w.buf, b...)
}

// WritePos writes a 3-byte packed position. dir may be DirNone.
func (w *Writer) WritePos(x, y, dir int) {
	p := PackCoord(x, y, dir)
	w.buf = append(w.buf, p[:]...)
}

// MaxFrameLen is the largest frame a variable length field can carry.
const MaxFrameLen = 0xffff

// WriteLength reserves the 2-byte total length field of a variable frame.
// Bytes fills it in.
func (w *Writer) WriteLength() {
	w.WriteH(0)
}

// Bytes returns the finished frame. For variable-length ids the length field
// at offset 2 is set to the final frame size.
func (w *Writer) Bytes() []byte {
	if len(w.buf) >= 4 && FrameLength(binary.LittleEndian.Uint16(w.buf)) == VarLen {
		binary.LittleEndian.PutUint16(w.buf[2:4], uint16(len(w.buf)))
	}
	return w.buf
}

// Len returns the current frame length.
func (w *Writer) Len() int {
	return len(w.buf)
}
