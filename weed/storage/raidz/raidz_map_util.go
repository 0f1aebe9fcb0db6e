package raidz

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Extent is a physical byte range on one child device, label reservation included.
type Extent struct {
	DevIdx int
	Offset int64
	Size   int64
}

func (e Extent) String() string {
	return fmt.Sprintf("devidx=%02d offset=%d size=%d", e.DevIdx, e.Offset, e.Size)
}

func (rc Column) String() string {
	return fmt.Sprintf("devidx=%02d offset=%d size=%s", rc.DevIdx, rc.Offset, humanize.IBytes(uint64(rc.Size)))
}

func (rm *StripeMap) IsParity(c int) bool {
	return c >= 0 && c < rm.FirstDataCol && c < rm.Cols
}

func (rm *StripeMap) IsData(c int) bool {
	return c >= rm.FirstDataCol && c < rm.Cols
}

// IsSkipped reports whether column c is a padding slot that carries no data or parity.
func (rm *StripeMap) IsSkipped(c int) bool {
	return c >= rm.Cols && c < rm.SCols
}

// ParityRotated reports whether the first two columns were swapped for an odd 1 MiB region.
func (rm *StripeMap) ParityRotated() bool {
	return rm.rotated
}

func (rm *StripeMap) SectorSize() int64 {
	return int64(1) << rm.ashift
}

func (rm *StripeMap) DataSize() (size int64) {
	for c := rm.FirstDataCol; c < rm.Cols; c++ {
		size += rm.Col[c].Size
	}
	return
}

func (rm *StripeMap) ParitySize() (size int64) {
	for c := 0; c < rm.FirstDataCol && c < rm.Cols; c++ {
		size += rm.Col[c].Size
	}
	return
}

// physicalOffset is column c's offset with the label reservation applied,
// whether or not Map already added it.
func (rm *StripeMap) physicalOffset(c int) int64 {
	if rm.IsData(c) {
		return rm.Col[c].Offset
	}
	return rm.Col[c].Offset + rm.labelStart
}

// Extents returns the physical range of every accessed column, parity first.
func (rm *StripeMap) Extents() []Extent {
	extents := make([]Extent, 0, rm.Cols)
	for c := 0; c < rm.Cols; c++ {
		extents = append(extents, Extent{
			DevIdx: rm.Col[c].DevIdx,
			Offset: rm.physicalOffset(c),
			Size:   rm.Col[c].Size,
		})
	}
	return extents
}

// SkipSectors returns the NSkip padding sectors a full write emits after the data, one
// sector each, starting at SkipStart and wrapping around to column 0.
func (rm *StripeMap) SkipSectors() []Extent {
	if rm.NSkip == 0 || rm.SCols == 0 {
		return nil
	}
	sectors := make([]Extent, 0, rm.NSkip)
	for c, i := rm.SkipStart, 0; i < rm.NSkip; c, i = c+1, i+1 {
		if c >= rm.SCols {
			c = 0
		}
		sectors = append(sectors, Extent{
			DevIdx: rm.Col[c].DevIdx,
			Offset: rm.physicalOffset(c) + rm.Col[c].Size,
			Size:   rm.SectorSize(),
		})
	}
	return sectors
}

func (rm *StripeMap) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cols=%d scols=%d bigcols=%d skipstart=%d firstdatacol=%d asize=%s nskip=%d\n",
		rm.Cols, rm.SCols, rm.BigCols, rm.SkipStart, rm.FirstDataCol, humanize.IBytes(uint64(rm.ASize)), rm.NSkip)
	for c, rc := range rm.Col {
		fmt.Fprintf(&b, "col=%02d %s\n", c, rc)
	}
	return b.String()
}
