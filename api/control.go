// File: api/control.go
// Package api defines the Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control exposes runtime introspection for a running server:
// the effective configuration, live counters, and debug probes.
type Control interface {
	ConfigSnapshot() map[string]any
	Stats() map[string]any
	RegisterDebugProbe(name string, fn func() any)
	DumpState() map[string]any
}
