// Package topology describes how a pool is assembled from top-level vdevs and which child
// device paths back every vdev. It is loaded from configuration, not probed from disks.
package topology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seaweedfs/raidz/weed/storage/raidz"
)

type VdevType string

const (
	VdevTypeRaidz  VdevType = "raidz"
	VdevTypeMirror VdevType = "mirror"
	VdevTypeStripe VdevType = "stripe"
)

var (
	ErrInvalidTopology = errors.New("invalid pool topology")
	ErrVdevNotFound    = errors.New("vdev not found")
)

// ParseVdevType accepts the zpool spellings, including raidz1/raidz2/raidz3 whose digit
// is returned as the implied parity level.
func ParseVdevType(s string) (vdevType VdevType, nparity int, err error) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case "raidz", "raidz1":
		return VdevTypeRaidz, 1, nil
	case "raidz2":
		return VdevTypeRaidz, 2, nil
	case "raidz3":
		return VdevTypeRaidz, 3, nil
	case "mirror":
		return VdevTypeMirror, 0, nil
	case "stripe", "disk", "file", "":
		return VdevTypeStripe, 0, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown vdev type %q", ErrInvalidTopology, s)
	}
}

// Vdev is one top-level virtual device of a pool.
type Vdev struct {
	Id       int
	Type     VdevType
	NParity  int
	Ashift   uint
	Children []string
}

func (v *Vdev) Validate() error {
	if len(v.Children) == 0 {
		return fmt.Errorf("%w: vdev %d has no children", ErrInvalidTopology, v.Id)
	}
	for i, child := range v.Children {
		if child == "" {
			return fmt.Errorf("%w: vdev %d child %d has no path", ErrInvalidTopology, v.Id, i)
		}
	}
	switch v.Type {
	case VdevTypeRaidz:
		g := raidz.Geometry{Ashift: v.Ashift, Children: len(v.Children), NParity: v.NParity}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%w: vdev %d: %w", ErrInvalidTopology, v.Id, err)
		}
	case VdevTypeMirror:
		if len(v.Children) < 2 {
			return fmt.Errorf("%w: mirror vdev %d needs at least 2 children", ErrInvalidTopology, v.Id)
		}
	case VdevTypeStripe:
		if len(v.Children) != 1 {
			return fmt.Errorf("%w: stripe vdev %d has %d children, want 1", ErrInvalidTopology, v.Id, len(v.Children))
		}
	default:
		return fmt.Errorf("%w: vdev %d has unknown type %q", ErrInvalidTopology, v.Id, v.Type)
	}
	return nil
}

// Geometry returns the stripe geometry of a raidz vdev.
func (v *Vdev) Geometry(labelStart int64) (raidz.Geometry, error) {
	if v.Type != VdevTypeRaidz {
		return raidz.Geometry{}, fmt.Errorf("%w: vdev %d is %s, not raidz", ErrInvalidTopology, v.Id, v.Type)
	}
	g := raidz.Geometry{
		Ashift:     v.Ashift,
		Children:   len(v.Children),
		NParity:    v.NParity,
		LabelStart: labelStart,
	}
	return g, g.Validate()
}

func (v *Vdev) String() string {
	if v.Type == VdevTypeRaidz {
		return fmt.Sprintf("vdev %d raidz%d ashift=%d %s", v.Id, v.NParity, v.Ashift, strings.Join(v.Children, ","))
	}
	return fmt.Sprintf("vdev %d %s ashift=%d %s", v.Id, v.Type, v.Ashift, strings.Join(v.Children, ","))
}
