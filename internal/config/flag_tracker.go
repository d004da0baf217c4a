package config

import (
	"sync"

	"github.com/spf13/pflag"
)

// FlagTracker remembers which command line flags the user set explicitly,
// so that only those override values from the configuration file.
type FlagTracker struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewFlagTracker creates an empty tracker
func NewFlagTracker() *FlagTracker {
	return &FlagTracker{set: make(map[string]struct{})}
}

// NewFlagTrackerFromFlagSet records every flag changed on fs
func NewFlagTrackerFromFlagSet(fs *pflag.FlagSet) *FlagTracker {
	ft := NewFlagTracker()
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) { ft.Set(f.Name) })
	}
	return ft
}

// Set marks a flag as explicitly set
func (ft *FlagTracker) Set(flagName string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.set[flagName] = struct{}{}
}

// WasSet checks if a flag was explicitly set
func (ft *FlagTracker) WasSet(flagName string) bool {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	_, ok := ft.set[flagName]
	return ok
}

// Count returns the number of explicitly set flags
func (ft *FlagTracker) Count() int {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return len(ft.set)
}

// Pick returns flagValue when flagName was set on the command line and
// configured otherwise.
func Pick[T any](ft *FlagTracker, flagName string, configured, flagValue T) T {
	if ft != nil && ft.WasSet(flagName) {
		return flagValue
	}
	return configured
}
