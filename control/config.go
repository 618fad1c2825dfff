// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe snapshot store for the effective server configuration.
// The server publishes its validated settings once at start; the
// store answers introspection queries afterwards.

package control

import (
	"sync"
)

// ConfigStore is a key/value map with atomic snapshot access.
type ConfigStore struct {
	mu     sync.RWMutex
	config map[string]any
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config: make(map[string]any),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// SetConfig merges values into the store. The server calls this once
// when it starts; the configuration never changes afterwards.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
}
