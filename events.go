package adapter

import (
	"context"

	"github.com/ceedling-tools/adapter/registry"
	"github.com/ceedling-tools/adapter/types"
)

// Events receives the engine's lifecycle and per-test state transitions.
// The host collaborator implements it; all methods are called from the
// engine's own goroutine, strictly ordered.
type Events interface {
	// LoadStarted signals the beginning of a discovery pass
	LoadStarted()
	// LoadFinished signals the end of a discovery pass; errMsg is a
	// human-readable failure description, empty on success
	LoadFinished(errMsg string)

	SuiteStarted(id string)
	SuiteFinished(id string)

	TestStarted(id string)
	TestFinished(result types.TestResult)
}

// WatchEffect tags a watch registration with the effect a file change
// should have.
type WatchEffect string

const (
	// WatchEffectReload requests a full discovery reload on change
	WatchEffectReload WatchEffect = "reload"
	// WatchEffectAutorun requests re-running affected suites on change
	WatchEffectAutorun WatchEffect = "autorun"
)

// WatchRegistrar receives the engine's file-watch registration requests.
// The engine never watches the filesystem itself; it only declares which
// files matter and what a change should do.
type WatchRegistrar interface {
	RegisterWatch(paths []string, effect WatchEffect)
}

// DebugLauncher hands a compiled test executable to the host's debugger.
// The executable path is relative to the project root.
type DebugLauncher interface {
	Launch(ctx context.Context, project *registry.Project, executable string) error
}

// NopEvents is an Events implementation that discards everything
type NopEvents struct{}

func (NopEvents) LoadStarted()                  {}
func (NopEvents) LoadFinished(string)           {}
func (NopEvents) SuiteStarted(string)           {}
func (NopEvents) SuiteFinished(string)          {}
func (NopEvents) TestStarted(string)            {}
func (NopEvents) TestFinished(types.TestResult) {}

var _ Events = NopEvents{}

// NopWatchRegistrar discards watch registrations
type NopWatchRegistrar struct{}

func (NopWatchRegistrar) RegisterWatch([]string, WatchEffect) {}
