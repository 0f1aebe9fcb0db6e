package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/seaweedfs/raidz/weed/glog"
)

var (
	ConfigurationFileDirectory DirectoryValueType
)

type DirectoryValueType string

func (s *DirectoryValueType) Set(value string) error {
	*s = DirectoryValueType(value)
	return nil
}
func (s *DirectoryValueType) String() string {
	return string(*s)
}

type Configuration interface {
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetStringSlice(key string) []string
	SetDefault(key string, value interface{})
}

// LoadConfiguration merges <configFileName>.{toml,yaml,json} from the usual search paths
// into the shared viper instance. A missing file is only an error when required is set.
func LoadConfiguration(configFileName string, required bool) (loaded bool, err error) {

	v := GetViper()
	v.Lock()
	defer v.Unlock()

	v.SetConfigName(configFileName)                                   // name of config file (without extension)
	v.AddConfigPath(ResolvePath(ConfigurationFileDirectory.String())) // path to look for the config file in
	v.AddConfigPath(".")                                              // optionally look for config in the working directory
	v.AddConfigPath("$HOME/.seaweedfs")                               // call multiple times to add many search paths
	v.AddConfigPath("/usr/local/etc/seaweedfs/")                      // search path for bsd-style config directory in
	v.AddConfigPath("/etc/seaweedfs/")                                // path to look for the config file in

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return false, fmt.Errorf("reading %s: %w", v.ConfigFileUsed(), err)
		}
		glog.V(1).Infof("Reading %s: %v", configFileName, err)
		if required {
			return false, fmt.Errorf("failed to load %s.toml file from current directory, or $HOME/.seaweedfs/, or /etc/seaweedfs/: %w",
				configFileName, err)
		}
		return false, nil
	}
	glog.V(1).Infof("Reading %s from %s", configFileName, v.ConfigFileUsed())

	return true, nil
}

// ResolvePath expands a leading ~ to the user's home directory.
func ResolvePath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

type ViperProxy struct {
	*viper.Viper
	sync.Mutex
}

var (
	vp = &ViperProxy{}
)

// NewViperProxy wraps a private viper instance, e.g. one bound to a single file.
func NewViperProxy(v *viper.Viper) *ViperProxy {
	return &ViperProxy{Viper: v}
}

func (vp *ViperProxy) SetDefault(key string, value interface{}) {
	vp.Lock()
	defer vp.Unlock()
	vp.Viper.SetDefault(key, value)
}

func (vp *ViperProxy) GetString(key string) string {
	vp.Lock()
	defer vp.Unlock()
	return vp.Viper.GetString(key)
}

func (vp *ViperProxy) GetBool(key string) bool {
	vp.Lock()
	defer vp.Unlock()
	return vp.Viper.GetBool(key)
}

func (vp *ViperProxy) GetInt(key string) int {
	vp.Lock()
	defer vp.Unlock()
	return vp.Viper.GetInt(key)
}

func (vp *ViperProxy) GetStringSlice(key string) []string {
	vp.Lock()
	defer vp.Unlock()
	return vp.Viper.GetStringSlice(key)
}

func (vp *ViperProxy) UnmarshalKey(key string, rawVal interface{}) error {
	vp.Lock()
	defer vp.Unlock()
	return vp.Viper.UnmarshalKey(key, rawVal)
}

func GetViper() *ViperProxy {
	vp.Lock()
	defer vp.Unlock()

	if vp.Viper == nil {
		vp.Viper = viper.GetViper()
		vp.AutomaticEnv()
		vp.SetEnvPrefix("raidz")
		vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	}

	return vp
}
