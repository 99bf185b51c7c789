// Package config holds the render settings: the immutable per-frame Tunables,
// the live Store edited by hotkeys, and YAML loading.
package config

import "sync/atomic"

var globalStore atomic.Pointer[Store]

func init() {
	globalStore.Store(NewStore(Defaults()))
}

// Global returns the process-wide settings store.
func Global() *Store {
	return globalStore.Load()
}

// SetGlobal replaces the process-wide settings store.
func SetGlobal(s *Store) {
	if s != nil {
		globalStore.Store(s)
	}
}

// GetFPSLimit returns the frame cap of the global store.
func GetFPSLimit() int {
	return Global().GetFPSLimit()
}
