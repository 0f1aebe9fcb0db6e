package topology

import (
	"fmt"
	"strings"

	"github.com/seaweedfs/raidz/weed/storage/raidz"
)

type Pool struct {
	Name       string
	LabelStart int64
	Vdevs      []*Vdev
}

func (p *Pool) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: pool has no name", ErrInvalidTopology)
	}
	if p.LabelStart < 0 {
		return fmt.Errorf("%w: pool %s label reservation %d is negative", ErrInvalidTopology, p.Name, p.LabelStart)
	}
	if len(p.Vdevs) == 0 {
		return fmt.Errorf("%w: pool %s has no vdevs", ErrInvalidTopology, p.Name)
	}
	ids := make(map[int]bool, len(p.Vdevs))
	for _, v := range p.Vdevs {
		if ids[v.Id] {
			return fmt.Errorf("%w: pool %s has duplicate vdev id %d", ErrInvalidTopology, p.Name, v.Id)
		}
		ids[v.Id] = true
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) Vdev(id int) (*Vdev, error) {
	for _, v := range p.Vdevs {
		if v.Id == id {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: pool %s has no vdev %d", ErrVdevNotFound, p.Name, id)
}

// Geometry is the stripe geometry of raidz vdev id, using the pool's label reservation.
func (p *Pool) Geometry(id int) (raidz.Geometry, error) {
	v, err := p.Vdev(id)
	if err != nil {
		return raidz.Geometry{}, err
	}
	return v.Geometry(p.LabelStart)
}

func (p *Pool) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pool %s", p.Name)
	for _, v := range p.Vdevs {
		fmt.Fprintf(&b, "\n  %s", v)
	}
	return b.String()
}
