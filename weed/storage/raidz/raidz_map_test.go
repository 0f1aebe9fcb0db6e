package raidz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAllocFullRows(t *testing.T) {
	rm, err := MapAlloc(0, 4096, 9, 5, 1)
	require.NoError(t, err)

	assert.Equal(t, 5, rm.Cols)
	assert.Equal(t, 5, rm.SCols)
	assert.Equal(t, 0, rm.BigCols)
	assert.Equal(t, 0, rm.SkipStart)
	assert.Equal(t, 1, rm.FirstDataCol)
	assert.Equal(t, int64(5120), rm.ASize)
	assert.Equal(t, 0, rm.NSkip)
	assert.False(t, rm.ParityRotated())
	require.Len(t, rm.Col, 5)

	var sum int64
	for c, rc := range rm.Col {
		assert.Equal(t, c, rc.DevIdx, "column %d", c)
		assert.Equal(t, int64(1024), rc.Size, "column %d", c)
		sum += rc.Size
	}
	assert.Equal(t, int64(10<<9), sum)

	// parity column keeps its raw offset, data columns carry the label reservation
	assert.Equal(t, int64(0), rm.Col[0].Offset)
	for c := 1; c < 5; c++ {
		assert.Equal(t, VdevLabelStartSize, rm.Col[c].Offset, "column %d", c)
	}
}

func TestMapAllocParityRotation(t *testing.T) {
	const offset = 1 << 20
	rm, err := MapAlloc(offset, 4096, 9, 5, 1)
	require.NoError(t, err)

	// sector 2048 lands on child 3 of row 409
	o := int64(409 << 9)
	want := []Column{
		{DevIdx: 4, Offset: o, Size: 1024},
		{DevIdx: 3, Offset: o + VdevLabelStartSize, Size: 1024},
		{DevIdx: 0, Offset: o + 512 + VdevLabelStartSize, Size: 1024},
		{DevIdx: 1, Offset: o + 512 + VdevLabelStartSize, Size: 1024},
		{DevIdx: 2, Offset: o + 512 + VdevLabelStartSize, Size: 1024},
	}
	assert.Equal(t, want, rm.Col)
	assert.Equal(t, 1, rm.SkipStart)
	assert.True(t, rm.ParityRotated())

	// raidz2 never rotates
	rm, err = MapAlloc(offset, 4096, 9, 5, 2)
	require.NoError(t, err)
	assert.False(t, rm.ParityRotated())
	assert.Equal(t, 3, rm.Col[0].DevIdx)
	assert.Equal(t, 4, rm.Col[1].DevIdx)
}

func TestMapAllocPartialRow(t *testing.T) {
	rm, err := MapAlloc(0, 1024, 9, 5, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, rm.Cols)
	assert.Equal(t, 4, rm.SCols)
	assert.Equal(t, 3, rm.BigCols)
	assert.Equal(t, 3, rm.SkipStart)
	assert.Equal(t, int64(2048), rm.ASize)
	assert.Equal(t, 1, rm.NSkip)

	require.Len(t, rm.Col, 4)
	assert.Equal(t, int64(512), rm.Col[0].Size)
	assert.Equal(t, int64(512), rm.Col[1].Size)
	assert.Equal(t, int64(512), rm.Col[2].Size)
	assert.Equal(t, int64(0), rm.Col[3].Size)
	assert.Equal(t, 3, rm.Col[3].DevIdx)
	// the padding slot is beyond the accessed columns and gets no label reservation
	assert.Equal(t, int64(0), rm.Col[3].Offset)

	assert.True(t, rm.IsParity(0))
	assert.True(t, rm.IsData(2))
	assert.True(t, rm.IsSkipped(3))
	assert.False(t, rm.IsSkipped(4))

	assert.Equal(t, []Extent{{DevIdx: 3, Offset: VdevLabelStartSize, Size: 512}}, rm.SkipSectors())
}

func TestMapAllocZeroSize(t *testing.T) {
	rm, err := MapAlloc(1<<20, 0, 9, 5, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, rm.Cols)
	assert.Equal(t, 0, rm.SCols)
	assert.Equal(t, 0, rm.BigCols)
	assert.Equal(t, int64(0), rm.ASize)
	assert.Equal(t, 0, rm.NSkip)
	assert.Empty(t, rm.Col)
	assert.Empty(t, rm.Extents())
	assert.Empty(t, rm.SkipSectors())
}

func TestMapAllocRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		offset  int64
		size    int64
		ashift  uint
		dcols   int
		nparity int
		wantErr error
	}{
		{"unaligned offset", 100, 512, 9, 5, 1, ErrInvalidRequest},
		{"unaligned size", 0, 513, 9, 5, 1, ErrInvalidRequest},
		{"negative offset", -512, 512, 9, 5, 1, ErrInvalidRequest},
		{"negative size", 0, -512, 9, 5, 1, ErrInvalidRequest},
		{"parity equals width", 0, 512, 9, 2, 2, ErrInvalidGeometry},
		{"parity exceeds width", 0, 512, 9, 3, 4, ErrInvalidGeometry},
		{"no parity", 0, 512, 9, 5, 0, ErrInvalidGeometry},
		{"raidz4", 0, 512, 9, 8, 4, ErrInvalidGeometry},
		{"single child", 0, 512, 9, 1, 1, ErrInvalidGeometry},
		{"zero children", 0, 512, 9, 0, 1, ErrInvalidGeometry},
		{"too many children", 0, 512, 9, MaxChildren + 1, 1, ErrInvalidGeometry},
		{"huge ashift", 0, 0, MaxAshift + 1, 5, 1, ErrInvalidGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm, err := MapAlloc(tt.offset, tt.size, tt.ashift, tt.dcols, tt.nparity)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rm)
		})
	}
}

func TestMapAllocProperties(t *testing.T) {
	for _, ashift := range []uint{9, 12} {
		sector := int64(1) << ashift
		for dcols := 2; dcols <= 12; dcols++ {
			for nparity := 1; nparity <= MaxParity && nparity < dcols; nparity++ {
				g, err := NewGeometry(ashift, dcols, nparity)
				require.NoError(t, err)
				dataCols := int64(dcols - nparity)

				for _, base := range []int64{0, 1 << 20, 3 << 20, 7 << 19} {
					for startSector := int64(0); startSector < int64(dcols)+2; startSector++ {
						for sectors := int64(0); sectors <= 3*int64(dcols)+1; sectors++ {
							offset := base + startSector*sector
							size := sectors * sector
							checkMapProperties(t, g, offset, size, dataCols)
						}
					}
				}
			}
		}
	}
}

func checkMapProperties(t *testing.T, g Geometry, offset, size, dataCols int64) {
	t.Helper()
	rm, err := g.Map(offset, size)
	require.NoError(t, err, "%s offset=%d size=%d", g, offset, size)

	nparity := int64(g.NParity)
	s := size >> g.Ashift
	tot := s + nparity*((s+dataCols-1)/dataCols)

	if !assert.True(t, rm.Cols <= rm.SCols && rm.SCols <= g.Children, "%s offset=%d size=%d cols=%d scols=%d", g, offset, size, rm.Cols, rm.SCols) {
		return
	}
	if rm.Cols >= 2 {
		assert.Equal(t, rm.Col[0].Size, rm.Col[1].Size)
	}

	var sum int64
	for c := 0; c < rm.Cols; c++ {
		sum += rm.Col[c].Size
	}
	assert.Equal(t, tot<<g.Ashift, sum)
	assert.Equal(t, sum, rm.DataSize()+rm.ParitySize())
	assert.Equal(t, size, rm.DataSize())
	assert.Zero(t, rm.ASize%((nparity+1)<<g.Ashift))
	assert.True(t, rm.NSkip >= 0 && rm.NSkip <= g.NParity)
	assert.Len(t, rm.SkipSectors(), rm.NSkip)
	assert.Equal(t, g.AllocatedSize(size), rm.ASize)

	// natural assignment, except for the single-parity swap in odd 1 MiB regions
	b := offset >> g.Ashift
	f := int(b % int64(g.Children))
	rotated := g.NParity == 1 && offset&(1<<20) != 0 && rm.Cols >= 2
	assert.Equal(t, rotated, rm.ParityRotated())
	seen := make(map[int]bool)
	for c, rc := range rm.Col {
		want := (f + c) % g.Children
		if rotated && c < 2 {
			want = (f + 1 - c) % g.Children
		}
		assert.Equal(t, want, rc.DevIdx, "%s offset=%d size=%d column %d", g, offset, size, c)
		assert.False(t, seen[rc.DevIdx], "device %d used twice", rc.DevIdx)
		seen[rc.DevIdx] = true
	}
	if rotated && rm.BigCols == 0 {
		assert.Equal(t, 1, rm.SkipStart)
	}

	again, err := g.Map(offset, size)
	require.NoError(t, err)
	assert.Equal(t, rm, again)
}

func TestMapWithoutLabelReservation(t *testing.T) {
	g := Geometry{Ashift: 12, Children: 6, NParity: 2}
	rm, err := g.Map(8<<12, 16<<12)
	require.NoError(t, err)

	// sector 8 is child 2 of row 1
	for c, rc := range rm.Col {
		want := int64(1 << 12)
		if 2+c >= 6 {
			want += 1 << 12
		}
		assert.Equal(t, want, rc.Offset, "column %d", c)
	}
	assert.Equal(t, rm.Extents()[0].Offset, rm.Col[0].Offset)
}

func TestExtentsApplyLabelToParity(t *testing.T) {
	rm, err := MapAlloc(0, 8192, 12, 4, 2)
	require.NoError(t, err)

	extents := rm.Extents()
	require.Len(t, extents, rm.Cols)
	for c, e := range extents {
		assert.Equal(t, rm.Col[c].DevIdx, e.DevIdx)
		assert.Equal(t, VdevLabelStartSize, e.Offset, "column %d", c)
		assert.Equal(t, int64(4096), e.Size)
	}
}

func TestSkipSectors(t *testing.T) {
	// raidz2 over 6 children, 5 data sectors: one full row plus one sector, 9 sectors in all
	rm, err := MapAlloc(0, 5<<9, 9, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, rm.Cols)
	assert.Equal(t, 3, rm.BigCols)
	assert.Equal(t, 0, rm.NSkip)
	assert.Empty(t, rm.SkipSectors())

	// 3 data sectors: 5 sectors padded to 6
	rm, err = MapAlloc(0, 3<<9, 9, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, rm.Cols)
	assert.Equal(t, 6, rm.SCols)
	assert.Equal(t, 1, rm.NSkip)
	assert.Equal(t, []Extent{{DevIdx: 5, Offset: VdevLabelStartSize, Size: 512}}, rm.SkipSectors())
}

func TestSkipSectorsWrapAround(t *testing.T) {
	// raidz2 over 5 children, 2 data sectors: 4 sectors padded to 6, but only 5 columns exist
	rm, err := MapAlloc(0, 2<<9, 9, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, rm.Cols)
	assert.Equal(t, 5, rm.SCols)
	assert.Equal(t, 4, rm.SkipStart)
	assert.Equal(t, 2, rm.NSkip)
	assert.Equal(t, int64(3072), rm.ASize)

	want := []Extent{
		{DevIdx: 4, Offset: VdevLabelStartSize, Size: 512},
		{DevIdx: 0, Offset: VdevLabelStartSize + 512, Size: 512},
	}
	assert.Equal(t, want, rm.SkipSectors())
}

func TestColumnString(t *testing.T) {
	rc := Column{DevIdx: 3, Offset: 4096, Size: 1024}
	assert.Equal(t, "devidx=03 offset=4096 size=1.0 KiB", rc.String())

	rm, err := MapAlloc(0, 1024, 9, 5, 1)
	require.NoError(t, err)
	assert.Contains(t, rm.String(), "cols=3 scols=4 bigcols=3")
	assert.Contains(t, rm.String(), "col=03 devidx=03 offset=0 size=0 B")
}
