package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func emoteFrame(beingID uint32, emoteID uint8) []byte {
	b := make([]byte, 7)
	binary.LittleEndian.PutUint16(b, S_EMOTE)
	binary.LittleEndian.PutUint32(b[2:], beingID)
	b[6] = emoteID
	return b
}

func whisperFrame(sender, text string) []byte {
	b := make([]byte, 28+len(text))
	binary.LittleEndian.PutUint16(b, S_WHISPER)
	binary.LittleEndian.PutUint16(b[2:], uint16(len(b)))
	copy(b[4:28], sender)
	copy(b[28:], text)
	return b
}

func removeFrame(beingID uint32, kind uint8) []byte {
	b := make([]byte, 7)
	binary.LittleEndian.PutUint16(b, S_REMOVE)
	binary.LittleEndian.PutUint32(b[2:], beingID)
	b[6] = kind
	return b
}

func stream() ([]byte, [][]byte) {
	frames := [][]byte{
		emoteFrame(1234, 7),
		whisperFrame("Alice", "hello there"),
		removeFrame(99, 1),
		whisperFrame("Bob", ""),
		emoteFrame(5, 229),
	}
	return bytes.Join(frames, nil), frames
}

func TestBufferSingleFeed(t *testing.T) {
	data, want := stream()
	b := NewBuffer()
	b.Feed(data)
	got, err := b.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("frame %d = % x, want % x", i, got[i], want[i])
		}
	}
	if b.Len() != 0 {
		t.Errorf("%d bytes left over", b.Len())
	}
}

func TestBufferFragmentedFeed(t *testing.T) {
	data, want := stream()
	for chunk := 1; chunk <= len(data); chunk++ {
		b := NewBuffer()
		var got [][]byte
		for off := 0; off < len(data); off += chunk {
			end := min(off+chunk, len(data))
			b.Feed(data[off:end])
			frames, err := b.Drain()
			if err != nil {
				t.Fatalf("chunk %d: Drain: %v", chunk, err)
			}
			got = append(got, frames...)
		}
		if len(got) != len(want) {
			t.Fatalf("chunk %d: got %d frames, want %d", chunk, len(got), len(want))
		}
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Fatalf("chunk %d: frame %d = % x, want % x", chunk, i, got[i], want[i])
			}
		}
	}
}

func TestBufferPartialFrameWaits(t *testing.T) {
	frame := emoteFrame(1, 2)
	b := NewBuffer()
	b.Feed(frame[:6])
	if _, ok, err := b.Next(); ok || err != nil {
		t.Fatalf("Next on partial frame = ok %v err %v", ok, err)
	}
	if b.Len() != 6 {
		t.Fatalf("partial bytes dropped: %d left", b.Len())
	}
	b.Feed(frame[6:])
	got, ok, err := b.Next()
	if err != nil || !ok {
		t.Fatalf("Next after completion = ok %v err %v", ok, err)
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("frame = % x, want % x", got, frame)
	}
}

func TestBufferVariableHeaderSplit(t *testing.T) {
	frame := whisperFrame("Carol", "hi")
	b := NewBuffer()
	b.Feed(frame[:3])
	if _, ok, err := b.Next(); ok || err != nil {
		t.Fatalf("Next with 3 header bytes = ok %v err %v", ok, err)
	}
	b.Feed(frame[3:])
	if _, ok, err := b.Next(); !ok || err != nil {
		t.Fatalf("Next = ok %v err %v", ok, err)
	}
}

func TestBufferUnknownID(t *testing.T) {
	tests := []struct {
		name string
		id   uint16
	}{
		{"zero entry", 0x0001},
		{"zero entry 0x8f", 0x008f},
		{"past table", 0x0300},
		{"max id", 0xffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer()
			raw := binary.LittleEndian.AppendUint16(nil, tt.id)
			raw = append(raw, 1, 2, 3, 4, 5, 6, 7, 8)
			b.Feed(raw)
			_, ok, err := b.Next()
			if ok || !errors.Is(err, ErrUnknownPacket) {
				t.Fatalf("Next = ok %v err %v, want ErrUnknownPacket", ok, err)
			}
			var fe *FrameError
			if !errors.As(err, &fe) || fe.ID != tt.id {
				t.Errorf("error %v does not carry id 0x%04x", err, tt.id)
			}
			if b.Len() != len(raw) {
				t.Errorf("buffer consumed bytes on error: %d left of %d", b.Len(), len(raw))
			}
		})
	}
}

func TestBufferBadVariableLength(t *testing.T) {
	b := NewBuffer()
	raw := []byte{0x97, 0x00, 0x03, 0x00, 0xaa}
	b.Feed(raw)
	_, _, err := b.Next()
	if !errors.Is(err, ErrBadLength) {
		t.Fatalf("Next = %v, want ErrBadLength", err)
	}
}

func TestBufferMinimalVariableFrame(t *testing.T) {
	b := NewBuffer()
	b.Feed([]byte{0x8e, 0x00, 0x04, 0x00})
	frame, ok, err := b.Next()
	if err != nil || !ok || len(frame) != 4 {
		t.Fatalf("Next = %x ok %v err %v", frame, ok, err)
	}
}

func TestBufferFrameIsIndependent(t *testing.T) {
	b := NewBuffer()
	b.Feed(emoteFrame(1, 1))
	b.Feed(emoteFrame(2, 2))
	first, _, _ := b.Next()
	b.Feed(emoteFrame(3, 3))
	if got := binary.LittleEndian.Uint32(first[2:]); got != 1 {
		t.Errorf("first frame changed after later feeds: being %d", got)
	}
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer()
	b.Feed([]byte{0xc0, 0x00, 0x01})
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("Len after Reset = %d", b.Len())
	}
	b.Feed(emoteFrame(8, 8))
	if _, ok, err := b.Next(); !ok || err != nil {
		t.Fatalf("Next after Reset = ok %v err %v", ok, err)
	}
}
