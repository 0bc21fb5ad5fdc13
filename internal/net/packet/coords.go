package packet

// DirNone marks a position whose facing is not specified. It packs as a zero
// direction nibble.
const DirNone = -1

// Coord is a map position with a facing direction.
type Coord struct {
	X   uint16
	Y   uint16
	Dir uint8
}

// PackCoord packs x (10 bits), y (10 bits) and dir (4 bits) into 3 bytes:
//
//	b0 = (x<<6) >> 8
//	b1 = (x<<6) & 0xc0 | (y<<4) >> 8
//	b2 = (y<<4) & 0xf0 | dir
func PackCoord(x, y, dir int) [3]byte {
	if dir < 0 {
		dir = 0
	}
	tx := uint16(x&0x3ff) << 6
	ty := uint16(y&0x3ff) << 4
	return [3]byte{
		byte(tx >> 8),
		byte(tx) | byte(ty>>8),
		byte(ty) | byte(dir&0x0f),
	}
}

// UnpackCoord reverses PackCoord.
func UnpackCoord(b [3]byte) Coord {
	x := (uint16(b[0])<<8 | uint16(b[1]&0xc0)) >> 6
	y := (uint16(b[1]&0x3f)<<8 | uint16(b[2]&0xf0)) >> 4
	return Coord{X: x, Y: y, Dir: b[2] & 0x0f}
}
