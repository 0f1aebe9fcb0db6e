package util

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseByteSize parses sizes like "4MiB", "3.5 MiB" or "4194304".
// An empty arg yields defaultSize.
func ParseByteSize(arg string, defaultSize int64) (int64, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return defaultSize, nil
	}
	size, err := humanize.ParseBytes(arg)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", arg, err)
	}
	if size > math.MaxInt64 {
		return 0, fmt.Errorf("parse size %q: too large", arg)
	}
	return int64(size), nil
}
