package raidz

import (
	"fmt"
)

// Column is one child device's share of a request.
type Column struct {
	DevIdx int   // child device index, 0 <= DevIdx < Children
	Offset int64 // byte offset on the child
	Size   int64 // bytes this column carries, 0 for padding slots
}

// StripeMap is the per-request column layout. The first FirstDataCol columns hold parity,
// columns up to Cols hold data, and columns in [Cols, SCols) are padding slots.
type StripeMap struct {
	Cols         int   // columns carrying data or parity
	SCols        int   // columns considered, padding included
	BigCols      int   // columns carrying one extra sector
	SkipStart    int   // first column that may receive a padding sector
	FirstDataCol int   // equal to the parity count
	ASize        int64 // total allocated bytes, padding included
	NSkip        int   // padding sectors closing the last row
	Col          []Column

	ashift     uint
	labelStart int64
	rotated    bool
}

// MapAlloc lays out a request of size bytes at offset across a group of dcols children with
// nparity parity columns, using the standard label reservation.
func MapAlloc(offset, size int64, ashift uint, dcols, nparity int) (*StripeMap, error) {
	g := Geometry{
		Ashift:     ashift,
		Children:   dcols,
		NParity:    nparity,
		LabelStart: VdevLabelStartSize,
	}
	return g.Map(offset, size)
}

// Map lays out a request of size bytes at offset on this group. Both must be multiples of
// the sector size. A zero size yields an empty map with no columns.
func (g Geometry) Map(offset, size int64) (*StripeMap, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if offset < 0 || size < 0 {
		return nil, fmt.Errorf("%w: negative offset %d or size %d", ErrInvalidRequest, offset, size)
	}
	if mask := g.SectorSize() - 1; offset&mask != 0 || size&mask != 0 {
		return nil, fmt.Errorf("%w: offset %d size %d not aligned to %d byte sectors",
			ErrInvalidRequest, offset, size, g.SectorSize())
	}

	dcols := int64(g.Children)
	nparity := int64(g.NParity)
	ashift := g.Ashift

	// starting sector on the parent, and the request length in sectors
	b := offset >> ashift
	s := size >> ashift
	// first column, and the byte offset of this row on every child
	f := b % dcols
	o := (b / dcols) << ashift

	// q full rows of data, r leftover data sectors in a partial row
	q := s / (dcols - nparity)
	r := s - q*(dcols-nparity)

	var bc int64
	if r != 0 {
		bc = r + nparity
	}

	tot := s + nparity*q
	if r != 0 {
		tot += nparity
	}

	var acols, scols int64
	if q == 0 {
		// narrower than one row, pad out to a whole parity group
		acols = bc
		scols = min(dcols, roundUp(bc, nparity+1))
	} else {
		acols = dcols
		scols = dcols
	}

	rm := &StripeMap{
		Cols:         int(acols),
		SCols:        int(scols),
		BigCols:      int(bc),
		SkipStart:    int(bc),
		FirstDataCol: g.NParity,
		Col:          make([]Column, scols),
		ashift:       ashift,
		labelStart:   g.LabelStart,
	}

	var asize int64
	for c := int64(0); c < scols; c++ {
		col := f + c
		coff := o
		if col >= dcols {
			col -= dcols
			coff += 1 << ashift
		}
		rc := &rm.Col[c]
		rc.DevIdx = int(col)
		rc.Offset = coff
		switch {
		case c >= acols:
			rc.Size = 0
		case c < bc:
			rc.Size = (q + 1) << ashift
		default:
			rc.Size = q << ashift
		}
		asize += rc.Size
	}

	rm.ASize = roundUp(asize, (nparity+1)<<ashift)
	rm.NSkip = int(roundUp(tot, nparity+1) - tot)

	if err := rm.verify(asize, tot); err != nil {
		return nil, err
	}

	if g.NParity == 1 && offset&(1<<parityRotationBit) != 0 && rm.Cols >= 2 {
		rm.Col[0].DevIdx, rm.Col[1].DevIdx = rm.Col[1].DevIdx, rm.Col[0].DevIdx
		rm.Col[0].Offset, rm.Col[1].Offset = rm.Col[1].Offset, rm.Col[0].Offset
		rm.rotated = true
		// column 0 is never skipped, but after the swap column 1 may be
		if rm.SkipStart == 0 {
			rm.SkipStart = 1
		}
	}

	for c := rm.FirstDataCol; c < rm.Cols; c++ {
		rm.Col[c].Offset += g.LabelStart
	}

	return rm, nil
}
