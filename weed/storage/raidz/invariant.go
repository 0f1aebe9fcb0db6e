package raidz

import (
	"fmt"

	"github.com/seaweedfs/raidz/weed/glog"
)

// verify checks the map against the sector totals it was built from. A failure means the
// layout arithmetic is wrong, never that the input was bad.
func (rm *StripeMap) verify(asize, tot int64) error {
	nparity := int64(rm.FirstDataCol)
	switch {
	case rm.Cols > rm.SCols || rm.SCols != len(rm.Col):
		return invariantf("acols %d scols %d with %d columns", rm.Cols, rm.SCols, len(rm.Col))
	case asize != tot<<rm.ashift:
		return invariantf("column sizes sum to %d, want %d", asize, tot<<rm.ashift)
	case rm.ASize%((nparity+1)<<rm.ashift) != 0:
		return invariantf("asize %d not aligned to %d parity groups", rm.ASize, nparity+1)
	case rm.ASize-asize != int64(rm.NSkip)<<rm.ashift:
		return invariantf("asize %d minus %d does not match %d skip sectors", rm.ASize, asize, rm.NSkip)
	case rm.NSkip < 0 || rm.NSkip > rm.FirstDataCol:
		return invariantf("nskip %d exceeds nparity %d", rm.NSkip, rm.FirstDataCol)
	case rm.Cols >= 2 && rm.Col[0].Size != rm.Col[1].Size:
		return invariantf("first columns differ: %d != %d", rm.Col[0].Size, rm.Col[1].Size)
	}
	return nil
}

func invariantf(format string, args ...interface{}) error {
	err := fmt.Errorf("%w: "+format, append([]interface{}{ErrInvariant}, args...)...)
	glog.Errorf("raidz: %v", err)
	if debugInvariants {
		panic(err)
	}
	return err
}
