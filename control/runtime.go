// control/runtime.go
// Author: momentics <momentics@gmail.com>
//
// Host runtime debug probe integrations.

package control

import (
	"runtime"
)

// RegisterRuntimeProbes sets host runtime debug metrics.
func RegisterRuntimeProbes(dp *DebugProbes) {
	dp.RegisterProbe("runtime.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("runtime.goroutines", func() any {
		return runtime.NumGoroutine()
	})
	dp.RegisterProbe("runtime.heap_bytes", func() any {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return ms.HeapAlloc
	})
}
