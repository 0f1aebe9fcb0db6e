package topology

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/seaweedfs/raidz/weed/glog"
	"github.com/seaweedfs/raidz/weed/storage/raidz"
	"github.com/seaweedfs/raidz/weed/util"
)

const (
	poolConfigKey = "pool"
	defaultAshift = 9
)

type vdevConfig struct {
	Id       *int     `mapstructure:"id"`
	Type     string   `mapstructure:"type"`
	NParity  int      `mapstructure:"nparity"`
	Ashift   uint     `mapstructure:"ashift"`
	Children []string `mapstructure:"children"`
}

type poolConfig struct {
	Name       string       `mapstructure:"name"`
	LabelStart string       `mapstructure:"label_start"`
	Ashift     uint         `mapstructure:"ashift"`
	Vdevs      []vdevConfig `mapstructure:"vdevs"`
}

// LoadPool builds a pool from the [pool] section of the configuration.
//
//	[pool]
//	name = "mypool"
//	label_start = "4MiB"
//
//	[[pool.vdevs]]
//	type = "raidz"
//	nparity = 1
//	ashift = 9
//	children = ["/dev/sda", "/dev/sdb", "/dev/sdc"]
func LoadPool(conf *util.ViperProxy) (*Pool, error) {
	var pc poolConfig
	if err := conf.UnmarshalKey(poolConfigKey, &pc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidTopology, poolConfigKey, err)
	}
	return pc.toPool()
}

// LoadPoolFile reads a pool description from a single toml, yaml or json file.
func LoadPoolFile(path string) (*Pool, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read pool config %s: %w", path, err)
	}
	glog.V(1).Infof("Reading pool from %s", path)
	return LoadPool(util.NewViperProxy(v))
}

// LoadPoolConfiguration looks up <name>.toml in the standard configuration directories.
func LoadPoolConfiguration(name string) (*Pool, error) {
	if _, err := util.LoadConfiguration(name, true); err != nil {
		return nil, err
	}
	return LoadPool(util.GetViper())
}

func (pc *poolConfig) toPool() (*Pool, error) {
	labelStart, err := util.ParseByteSize(pc.LabelStart, raidz.VdevLabelStartSize)
	if err != nil {
		return nil, fmt.Errorf("%w: pool %s label_start: %w", ErrInvalidTopology, pc.Name, err)
	}
	p := &Pool{
		Name:       pc.Name,
		LabelStart: labelStart,
	}

	poolAshift := pc.Ashift
	if poolAshift == 0 {
		poolAshift = defaultAshift
	}

	for i, vc := range pc.Vdevs {
		vdevType, impliedParity, err := ParseVdevType(vc.Type)
		if err != nil {
			return nil, fmt.Errorf("pool %s vdev %d: %w", pc.Name, i, err)
		}
		v := &Vdev{
			Id:       i,
			Type:     vdevType,
			NParity:  vc.NParity,
			Ashift:   vc.Ashift,
			Children: vc.Children,
		}
		if vc.Id != nil {
			v.Id = *vc.Id
		}
		if v.Ashift == 0 {
			v.Ashift = poolAshift
		}
		if vdevType == VdevTypeRaidz {
			switch {
			case v.NParity == 0:
				v.NParity = impliedParity
			case !strings.EqualFold(strings.TrimSpace(vc.Type), string(VdevTypeRaidz)) && v.NParity != impliedParity:
				return nil, fmt.Errorf("%w: pool %s vdev %d is %s but nparity is %d",
					ErrInvalidTopology, pc.Name, v.Id, vc.Type, v.NParity)
			}
		} else if v.NParity != 0 {
			return nil, fmt.Errorf("%w: pool %s %s vdev %d cannot have parity", ErrInvalidTopology, pc.Name, vdevType, v.Id)
		}
		p.Vdevs = append(p.Vdevs, v)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	glog.V(2).Infof("loaded %s", p)
	return p, nil
}
