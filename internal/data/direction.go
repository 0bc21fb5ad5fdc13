package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Facing directions as the map server understands them.
const (
	DirSouth uint8 = 1
	DirWest  uint8 = 2
	DirNorth uint8 = 4
	DirEast  uint8 = 8
)

var directionNames = map[byte]uint8{
	's': DirSouth,
	'w': DirWest,
	'n': DirNorth,
	'e': DirEast,
}

// ParseDirection accepts a compass word (only the first letter counts, so
// "n", "North" and "north" agree) or a numeric direction code 0-15.
func ParseDirection(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty direction")
	}
	if d, ok := directionNames[strings.ToLower(s)[0]]; ok {
		return d, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n > 15 {
		return 0, fmt.Errorf("unknown direction %q", s)
	}
	return uint8(n), nil
}
