// Package raidz computes RAID-Z stripe geometry: given a logical (offset, size) request on a
// redundancy group it works out which child device, byte offset and byte length every column
// must read or write. It reads and writes nothing itself.
package raidz

import (
	"errors"
	"fmt"
)

const (
	// MaxParity is the highest supported parity level (raidz3).
	MaxParity = 3
	// MaxChildren bounds the group width, and with it the size of a StripeMap's column slice.
	MaxChildren = 255
	// MaxAshift keeps sector arithmetic inside int64.
	MaxAshift = 32

	// VdevLabelStartSize is the reserved region at the front of every child device:
	// two 256 KiB labels followed by the 3.5 MiB boot block.
	VdevLabelStartSize int64 = 2*(256<<10) + (7 << 19)

	// parityRotationBit selects odd 1 MiB regions; single-parity groups swap the first two
	// columns there. This is part of the on-disk format.
	parityRotationBit = 20
)

var (
	ErrInvalidGeometry = errors.New("invalid raidz geometry")
	ErrInvalidRequest  = errors.New("invalid raidz request")
	ErrInvariant       = errors.New("raidz map invariant violated")
)

// Geometry describes one redundancy group. It is immutable and safe to share.
type Geometry struct {
	Ashift     uint  // sector size is 1 << Ashift bytes
	Children   int   // number of member devices (dcols)
	NParity    int   // parity columns per row
	LabelStart int64 // bytes reserved at the start of every child, added to data-column offsets
}

// NewGeometry returns a validated geometry that uses the standard label reservation.
func NewGeometry(ashift uint, children, nparity int) (Geometry, error) {
	g := Geometry{
		Ashift:     ashift,
		Children:   children,
		NParity:    nparity,
		LabelStart: VdevLabelStartSize,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) Validate() error {
	switch {
	case g.Ashift > MaxAshift:
		return fmt.Errorf("%w: ashift %d exceeds %d", ErrInvalidGeometry, g.Ashift, MaxAshift)
	case g.NParity < 1 || g.NParity > MaxParity:
		return fmt.Errorf("%w: nparity %d not in [1, %d]", ErrInvalidGeometry, g.NParity, MaxParity)
	case g.Children < 2 || g.Children > MaxChildren:
		return fmt.Errorf("%w: %d children not in [2, %d]", ErrInvalidGeometry, g.Children, MaxChildren)
	case g.Children <= g.NParity:
		return fmt.Errorf("%w: %d children cannot hold %d parity columns", ErrInvalidGeometry, g.Children, g.NParity)
	case g.LabelStart < 0:
		return fmt.Errorf("%w: negative label reservation %d", ErrInvalidGeometry, g.LabelStart)
	}
	return nil
}

// SectorSize is 1 << Ashift.
func (g Geometry) SectorSize() int64 {
	return int64(1) << g.Ashift
}

// DataColumns is the number of data columns in a full row.
func (g Geometry) DataColumns() int {
	return g.Children - g.NParity
}

func (g Geometry) String() string {
	return fmt.Sprintf("raidz%d-%d(ashift=%d)", g.NParity, g.Children, g.Ashift)
}

// AllocatedSize returns how many bytes a block of psize bytes occupies on the group:
// data plus parity, rounded up to a multiple of NParity+1 sectors so that no unusable
// gap is left behind.
func (g Geometry) AllocatedSize(psize int64) int64 {
	if psize <= 0 {
		return 0
	}
	nparity := int64(g.NParity)
	asize := ((psize - 1) >> g.Ashift) + 1
	asize += nparity * ((asize + int64(g.DataColumns()) - 1) / int64(g.DataColumns()))
	return roundUp(asize, nparity+1) << g.Ashift
}

func roundUp(x, align int64) int64 {
	return (x + align - 1) / align * align
}
