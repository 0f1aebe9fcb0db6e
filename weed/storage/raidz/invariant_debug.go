//go:build raidz_debug

package raidz

const debugInvariants = true
