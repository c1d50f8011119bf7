// Package observability provides hooks for reporting conversion events.
//
// The converter emits events without knowing who listens. The CLI registers
// hooks at startup to print them; tests register recorders. Nothing here
// depends on a terminal or logging backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetConvertHooks(&printer{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Convert().OnBackup(ctx, path, files, bytes)
package observability

import (
	"context"
	"sync"
)

// =============================================================================
// Convert Hooks
// =============================================================================

// ConvertHooks receives events from a project conversion.
type ConvertHooks interface {
	// OnBackup records that the project directory was copied to path.
	OnBackup(ctx context.Context, path string, files int, bytes int64)

	// OnResidualReference records a line of the written file that still
	// mentions the old dependency manager. line is 1-based.
	OnResidualReference(ctx context.Context, line int, content string)

	// OnLockRemoved records that the old lock file was deleted.
	OnLockRemoved(ctx context.Context, path string)

	// OnModuleMoved records the relocation of the module directory.
	OnModuleMoved(ctx context.Context, from, to string)

	// OnConstraintWidened records a union constraint that had to be
	// approximated by a single range.
	OnConstraintWidened(ctx context.Context, dependency, constraint, requirement string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopConvertHooks is a no-op implementation of ConvertHooks.
type NoopConvertHooks struct{}

func (NoopConvertHooks) OnBackup(context.Context, string, int, int64)                {}
func (NoopConvertHooks) OnResidualReference(context.Context, int, string)            {}
func (NoopConvertHooks) OnLockRemoved(context.Context, string)                       {}
func (NoopConvertHooks) OnModuleMoved(context.Context, string, string)               {}
func (NoopConvertHooks) OnConstraintWidened(context.Context, string, string, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	convertHooks ConvertHooks = NoopConvertHooks{}
	hooksMu      sync.RWMutex
)

// SetConvertHooks registers custom conversion hooks.
// This should be called once at application startup before any conversion.
func SetConvertHooks(h ConvertHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		convertHooks = h
	}
}

// Convert returns the registered conversion hooks.
func Convert() ConvertHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return convertHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	convertHooks = NoopConvertHooks{}
}
