// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics, configuration snapshots, and debug introspection
// for the lightws server core.
//
// Provides concurrent-safe state handling primitives including:
//   - Immutable snapshot config reads
//   - Lock-free metrics telemetry for the frame engine
//   - State export, debug hooks, and probe registration
package control
