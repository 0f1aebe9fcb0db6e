// Package glog is the logging front end used across the raidz packages.
// It keeps the seaweedfs call shape (glog.V(n).Infof, glog.Errorf, ...) on top of
// github.com/golang/glog, and adds context-aware variants that carry the request id.
package glog

import (
	"github.com/golang/glog"
)

// Level is a verbosity level, as set by -v.
type Level = glog.Level

// Verbose is a boolean that reports whether logging at the requested level is enabled.
type Verbose bool

// V reports whether verbosity at the call site is at least the requested level.
func V(level Level) Verbose {
	return Verbose(glog.V(level))
}

func (v Verbose) Info(args ...interface{}) {
	if v {
		glog.InfoDepth(1, args...)
	}
}

func (v Verbose) Infof(format string, args ...interface{}) {
	if v {
		glog.InfoDepthf(1, format, args...)
	}
}

func Info(args ...interface{}) {
	glog.InfoDepth(1, args...)
}

func Infof(format string, args ...interface{}) {
	glog.InfoDepthf(1, format, args...)
}

func Warning(args ...interface{}) {
	glog.WarningDepth(1, args...)
}

func Warningf(format string, args ...interface{}) {
	glog.WarningDepthf(1, format, args...)
}

func Error(args ...interface{}) {
	glog.ErrorDepth(1, args...)
}

func Errorf(format string, args ...interface{}) {
	glog.ErrorDepthf(1, format, args...)
}

// Fatalf logs to the FATAL, ERROR, WARNING, and INFO logs, then exits the process.
func Fatalf(format string, args ...interface{}) {
	glog.FatalDepthf(1, format, args...)
}

// Flush flushes all pending log I/O.
func Flush() {
	glog.Flush()
}
