// Package locate resolves block addresses in a pool to the child devices, offsets and
// lengths that hold them.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/seaweedfs/raidz/weed/glog"
	"github.com/seaweedfs/raidz/weed/stats"
	"github.com/seaweedfs/raidz/weed/storage/raidz"
	"github.com/seaweedfs/raidz/weed/storage/raidz/topology"
)

// Location is one physical extent of a block.
type Location struct {
	Column int // column within the stripe map; child index for mirrors
	Path   string
	Parity bool
	raidz.Extent
}

func (l Location) String() string {
	return fmt.Sprintf("col=%02d %s dev=%s", l.Column, l.Extent, l.Path)
}

type Locator struct {
	pool *topology.Pool
}

func NewLocator(pool *topology.Pool) *Locator {
	return &Locator{pool: pool}
}

// Locate returns where the psize bytes stored at dva live on the children of its vdev.
func (l *Locator) Locate(ctx context.Context, dva DVA, psize int64) ([]Location, error) {
	v, err := l.pool.Vdev(dva.Vdev)
	if err != nil {
		stats.RaidzMapErrorCounter.WithLabelValues(stats.ErrorVdevNotFound).Inc()
		return nil, err
	}
	if psize <= 0 {
		stats.RaidzMapErrorCounter.WithLabelValues(stats.ErrorInvalidRequest).Inc()
		return nil, fmt.Errorf("%w: dva %s psize %d", raidz.ErrInvalidRequest, dva, psize)
	}

	var locations []Location
	switch v.Type {
	case topology.VdevTypeRaidz:
		locations, err = l.locateRaidz(ctx, v, dva, psize)
	case topology.VdevTypeMirror, topology.VdevTypeStripe:
		locations = l.locateCopies(v, dva, psize)
	default:
		err = fmt.Errorf("%w: vdev %d has type %q", topology.ErrInvalidTopology, v.Id, v.Type)
	}
	if err != nil {
		stats.RaidzMapErrorCounter.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}

	stats.RaidzMapCounter.WithLabelValues(string(v.Type)).Inc()
	stats.RaidzColumnsHistogram.WithLabelValues(string(v.Type)).Observe(float64(len(locations)))
	for _, loc := range locations {
		glog.V(3).InfofCtx(ctx, "dva %s %s", dva, loc)
	}
	return locations, nil
}

func (l *Locator) locateRaidz(ctx context.Context, v *topology.Vdev, dva DVA, psize int64) ([]Location, error) {
	g, err := v.Geometry(l.pool.LabelStart)
	if err != nil {
		return nil, err
	}

	size := (psize + g.SectorSize() - 1) &^ (g.SectorSize() - 1)
	rm, err := g.Map(dva.Offset, size)
	if err != nil {
		return nil, fmt.Errorf("vdev %d dva %s: %w", v.Id, dva, err)
	}
	if dva.ASize != 0 && rm.ASize != dva.ASize {
		stats.RaidzMapErrorCounter.WithLabelValues(stats.ErrorASizeMismatch).Inc()
		glog.WarningfCtx(ctx, "vdev %d dva %s: psize %d maps to asize %d", v.Id, dva, psize, rm.ASize)
	}
	if rm.ParityRotated() {
		stats.RaidzParityRotationCounter.Inc()
	}

	locations := make([]Location, 0, rm.Cols)
	for c, e := range rm.Extents() {
		locations = append(locations, Location{
			Column: c,
			Path:   v.Children[e.DevIdx],
			Parity: rm.IsParity(c),
			Extent: e,
		})
	}
	return locations, nil
}

// locateCopies handles vdevs that keep the block whole on every child.
func (l *Locator) locateCopies(v *topology.Vdev, dva DVA, psize int64) []Location {
	locations := make([]Location, 0, len(v.Children))
	for i, path := range v.Children {
		locations = append(locations, Location{
			Column: i,
			Path:   path,
			Extent: raidz.Extent{
				DevIdx: i,
				Offset: dva.Offset + l.pool.LabelStart,
				Size:   psize,
			},
		})
	}
	return locations
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, raidz.ErrInvalidRequest):
		return stats.ErrorInvalidRequest
	case errors.Is(err, raidz.ErrInvariant):
		return stats.ErrorInvariant
	default:
		return stats.ErrorInvalidVdev
	}
}

// ParseAndLocate is a convenience for the "vdev:offset:asize" form with a hex psize.
func (l *Locator) ParseAndLocate(ctx context.Context, dvaString, psizeHex string) ([]Location, error) {
	dva, err := ParseDVA(dvaString)
	if err != nil {
		return nil, err
	}
	psize, err := strconv.ParseInt(strings.TrimPrefix(psizeHex, "0x"), 16, 64)
	if err != nil {
		return nil, fmt.Errorf("psize %q: %w", psizeHex, err)
	}
	return l.Locate(ctx, dva, psize)
}
