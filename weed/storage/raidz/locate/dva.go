package locate

import (
	"fmt"
	"strconv"
	"strings"
)

// DVA is a data virtual address: a top-level vdev, the byte offset inside that vdev's
// allocatable space, and the allocated size.
type DVA struct {
	Vdev   int
	Offset int64
	ASize  int64
}

// ParseDVA parses the compact "vdev:offset:asize" form, offset and asize in hex.
func ParseDVA(s string) (DVA, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return DVA{}, fmt.Errorf("dva %q: want vdev:offset:asize", s)
	}
	vdev, err := strconv.Atoi(parts[0])
	if err != nil || vdev < 0 {
		return DVA{}, fmt.Errorf("dva %q: bad vdev %q", s, parts[0])
	}
	offset, err := strconv.ParseInt(strings.TrimPrefix(parts[1], "0x"), 16, 64)
	if err != nil || offset < 0 {
		return DVA{}, fmt.Errorf("dva %q: bad offset %q", s, parts[1])
	}
	asize, err := strconv.ParseInt(strings.TrimPrefix(parts[2], "0x"), 16, 64)
	if err != nil || asize < 0 {
		return DVA{}, fmt.Errorf("dva %q: bad asize %q", s, parts[2])
	}
	return DVA{Vdev: vdev, Offset: offset, ASize: asize}, nil
}

func (d DVA) String() string {
	return fmt.Sprintf("%d:%x:%x", d.Vdev, d.Offset, d.ASize)
}
