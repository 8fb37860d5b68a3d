// Package adapter implements a test adapter engine for ceedling projects:
// it discovers unit tests in C sources, runs them through the external build
// tool and correlates the tool's XML result artifact back onto the
// discovered test tree.
package adapter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/ceedling-tools/adapter/metrics"
	"github.com/ceedling-tools/adapter/registry"
	"github.com/ceedling-tools/adapter/report"
	"github.com/ceedling-tools/adapter/runner"
	"github.com/ceedling-tools/adapter/scanner"
	"github.com/ceedling-tools/adapter/types"
)

// Adapter is the engine facade the host collaborator drives. One instance
// serves one workspace / project set.
type Adapter struct {
	cfg        *Config
	log        log.Logger
	scanner    *scanner.Scanner
	gate       *runner.Gate
	invoker    *runner.Invoker
	correlator *report.Correlator

	events   Events
	watcher  WatchRegistrar
	launcher DebugLauncher

	mu              sync.RWMutex
	registry        *registry.Registry
	tree            *types.TreeNode
	modernLayout    bool
	debugExecutable string
	lastStats       types.RunStats
}

// Option customizes an Adapter
type Option func(*Adapter)

// WithEvents wires the host's event sink
func WithEvents(events Events) Option {
	return func(a *Adapter) { a.events = events }
}

// WithWatchRegistrar wires the host's file-watch registration
func WithWatchRegistrar(w WatchRegistrar) Option {
	return func(a *Adapter) { a.watcher = w }
}

// WithDebugLauncher wires the host's debug session launcher
func WithDebugLauncher(l DebugLauncher) Option {
	return func(a *Adapter) { a.launcher = l }
}

// New creates an Adapter. Discovery state stays empty until the first Load.
func New(cfg *Config, opts ...Option) (*Adapter, error) {
	if cfg == nil {
		return nil, NewConfigError(fmt.Errorf("config is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigError(err)
	}

	scn, err := scanner.New(scanner.Config{
		Prefixes:    cfg.TestPrefixes,
		CaseMacros:  cfg.CaseMacros,
		RangeMacros: cfg.RangeMacros,
	})
	if err != nil {
		return nil, NewConfigError(err)
	}

	a := &Adapter{
		cfg:     cfg,
		log:     cfg.Log,
		scanner: scn,
		gate:    runner.NewGate(),
		invoker: runner.NewInvoker(runner.InvokerConfig{
			Log:       cfg.Log,
			Tool:      cfg.Tool,
			Shell:     cfg.Shell,
			StripANSI: cfg.StripANSI,
		}),
		correlator: report.NewCorrelator(cfg.Log),
		events:     NopEvents{},
		watcher:    NopWatchRegistrar{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Load rebuilds the whole discovery state: project resolution, tool sanity
// check, per-project file lists, source scanning and tree construction. The
// new tree replaces the old one wholesale. Failures before any project is
// scanned leave the previous tree in place; per-project failures install the
// surviving projects' tree and are reported in the returned error.
func (a *Adapter) Load(ctx context.Context) error {
	a.events.LoadStarted()
	err := a.load(ctx)
	metrics.RecordDiscovery(err == nil)

	var msg string
	if err != nil {
		msg = err.Error()
		metrics.RecordError("load")
	}
	a.events.LoadFinished(msg)
	return err
}

func (a *Adapter) load(ctx context.Context) error {
	reg, err := registry.NewRegistry(registry.Config{
		Log:               a.log,
		WorkspaceRoot:     a.cfg.WorkspaceRoot,
		Entries:           a.cfg.Projects,
		ProjectConfigFile: a.cfg.ProjectConfigFile,
		DefaultConfigFile: a.cfg.DefaultConfigFile,
	})
	if err != nil {
		return NewConfigError(err)
	}

	// A tool that cannot run at all is the only failure aborting the whole
	// load; everything later is isolated per project or per file.
	var version runner.Result
	if err := a.gate.With(ctx, func() error {
		version = a.invoker.Run(ctx, a.cfg.WorkspaceRoot, runner.SubCommandVersion)
		return nil
	}); err != nil {
		return NewRuntimeError(err)
	}
	metrics.RecordInvocation(runner.SubCommandVersion, version.Err)
	if version.Err != nil {
		return NewRuntimeError(fmt.Errorf("build tool unreachable: %v\n%s", version.Err, version.CombinedOutput()))
	}
	major, minor, _, ok := runner.ParseVersion(version.Stdout)
	modern := ok && runner.ModernOutLayout(major, minor)

	var discoveries []types.ProjectDiscovery
	var projectErrs []string
	for _, project := range reg.Projects() {
		discovery, err := a.loadProject(ctx, reg, project)
		if err != nil {
			a.log.Error("Project discovery failed", "project", project.Key, "err", err)
			metrics.RecordError("discovery")
			projectErrs = append(projectErrs, fmt.Sprintf("%s: %v", project.Key, err))
			continue
		}
		discoveries = append(discoveries, discovery)
	}

	tree := types.BuildTree(discoveries)

	a.mu.Lock()
	a.registry = reg
	a.tree = tree
	a.modernLayout = modern
	a.mu.Unlock()

	a.registerWatches(reg)

	if len(projectErrs) > 0 {
		return NewConfigError(fmt.Errorf("discovery failed for: %s", strings.Join(projectErrs, "; ")))
	}
	return nil
}

func (a *Adapter) loadProject(ctx context.Context, reg *registry.Registry, project *registry.Project) (types.ProjectDiscovery, error) {
	discovery := types.ProjectDiscovery{Key: project.Key, Label: project.Key}

	if err := reg.LoadSettings(project); err != nil {
		return discovery, err
	}
	if !project.Settings.PluginEnabled(registry.XMLReportPlugin) {
		return discovery, fmt.Errorf("required plugin %q is not enabled in %s", registry.XMLReportPlugin, project.ConfigFile)
	}

	for _, fileType := range types.FileTypes {
		sub := runner.FilesSubCommand(fileType)
		var res runner.Result
		if err := a.gate.With(ctx, func() error {
			res = a.invoker.Run(ctx, project.RootDir, a.toolArgs(project, sub)...)
			return nil
		}); err != nil {
			return discovery, err
		}
		metrics.RecordInvocation(sub, res.Err)
		if res.Err != nil {
			if fileType == types.FileTypeTest {
				return discovery, fmt.Errorf("list test files: %v\n%s", res.Err, res.CombinedOutput())
			}
			// the non-test lists only feed watch registration
			a.log.Warn("File list retrieval failed", "project", project.Key, "type", fileType, "err", res.Err)
			continue
		}
		project.Files[fileType] = runner.ParseFileList(res.Stdout, fileType)
	}

	testCount := 0
	for _, relPath := range project.Files[types.FileTypeTest] {
		file, err := a.scanTestFile(project, relPath)
		if err != nil {
			// an unreadable file never aborts its siblings
			a.log.Warn("Skipping unreadable test file", "project", project.Key, "file", relPath, "err", err)
			metrics.RecordError("scan")
			continue
		}
		discovery.Files = append(discovery.Files, file)
		for _, fn := range file.Functions {
			if n := len(fn.Cases); n > 0 {
				testCount += n
			} else {
				testCount++
			}
		}
	}
	metrics.RecordDiscoveredTests(project.Key, testCount)
	a.log.Info("Project discovered", "project", project.Key,
		"files", len(discovery.Files), "tests", testCount)
	return discovery, nil
}

func (a *Adapter) scanTestFile(project *registry.Project, relPath string) (types.FileDiscovery, error) {
	absPath := filepath.Join(project.RootDir, filepath.FromSlash(relPath))
	file := types.FileDiscovery{RelPath: relPath, AbsPath: absPath}

	matches, err := a.scanner.ScanFile(absPath)
	if err != nil {
		return file, err
	}

	for _, match := range matches {
		fn := types.FunctionDiscovery{Name: match.Name, Line: match.Line}
		expansions, err := a.scanner.Expand(match.Annotations)
		if err != nil {
			// a malformed range degrades the function to a plain test
			a.log.Warn("Annotation expansion failed", "file", relPath, "test", match.Name, "err", err)
			metrics.RecordError("expand")
			expansions = nil
		}
		for _, exp := range expansions {
			fn.Cases = append(fn.Cases, types.CaseDiscovery{
				Args: exp.Args,
				Line: match.Line + exp.Ordinal,
			})
		}
		file.Functions = append(file.Functions, fn)
	}
	return file, nil
}

// toolArgs builds the complete argument list for one project-scoped tool
// invocation: sub-command, project-file selection, configured mixins.
func (a *Adapter) toolArgs(project *registry.Project, sub string) []string {
	args := runner.WithProject([]string{sub}, project.ConfigFile)
	return runner.WithMixins(args, a.cfg.Mixins)
}

func (a *Adapter) registerWatches(reg *registry.Registry) {
	a.watcher.RegisterWatch(reg.WatchFiles(), WatchEffectReload)

	var sources []string
	for _, project := range reg.Projects() {
		for _, fileType := range types.FileTypes {
			for _, rel := range project.Files[fileType] {
				sources = append(sources, filepath.Join(project.RootDir, filepath.FromSlash(rel)))
			}
		}
	}
	if len(sources) > 0 {
		a.watcher.RegisterWatch(sources, WatchEffectAutorun)
	}
}

// Run executes the suites resolved from the requested identifiers, strictly
// sequentially, each invocation gated. An empty id list runs everything.
// The returned stats aggregate every emitted terminal state.
func (a *Adapter) Run(ctx context.Context, ids []string) (types.RunStats, error) {
	a.mu.RLock()
	tree, reg := a.tree, a.registry
	a.mu.RUnlock()
	if tree == nil || reg == nil {
		return types.RunStats{}, NewRuntimeError(fmt.Errorf("no discovery state; call Load first"))
	}

	if len(ids) == 0 {
		ids = []string{tree.ID}
	}
	suites := types.ResolveRunTargets(tree, ids)
	if len(suites) == 0 {
		return types.RunStats{}, NewRuntimeError(fmt.Errorf("no suites match the requested identifiers"))
	}

	runID := uuid.New().String()
	a.log.Info("Starting run", "runID", runID, "suites", len(suites))
	a.invoker.ResetCancellation()

	var stats types.RunStats
	for _, suite := range suites {
		if a.invoker.Cancelled() {
			a.log.Info("Run cancelled", "runID", runID, "remaining", suite.ID)
			break
		}
		if err := a.runSuite(ctx, reg, suite, &stats); err != nil {
			return stats, err
		}
	}

	a.mu.Lock()
	a.lastStats = stats
	a.mu.Unlock()
	metrics.RecordRunStats(stats)

	a.log.Info("Run finished", "runID", runID,
		"total", stats.Total, "passed", stats.Passed, "failed", stats.Failed,
		"skipped", stats.Skipped, "errored", stats.Errored)
	return stats, nil
}

// runSuite executes one suite under the gate: artifact deletion, tool
// invocation and artifact read never interleave with another suite's.
func (a *Adapter) runSuite(ctx context.Context, reg *registry.Registry, suite *types.TreeNode, stats *types.RunStats) error {
	project := reg.Project(suite.ProjectKey)
	if project == nil || project.Settings == nil {
		a.log.Error("Suite has no resolved project", "suite", suite.ID)
		return nil
	}

	a.events.SuiteStarted(suite.ID)
	defer a.events.SuiteFinished(suite.ID)
	for _, test := range suite.Tests() {
		a.events.TestStarted(test.ID)
	}

	buildRoot := project.Settings.BuildRoot()
	if !filepath.IsAbs(buildRoot) {
		buildRoot = filepath.Join(project.RootDir, buildRoot)
	}
	reportFile := project.Settings.ReportFilename()

	sub := runner.SubCommandTestAll
	if suite.Path != "" {
		sub = runner.TestFileSubCommand(suite.Path)
	}

	var results []types.TestResult
	err := a.gate.With(ctx, func() error {
		a.correlator.RemoveArtifacts(buildRoot, reportFile)

		res := a.invoker.Run(ctx, project.RootDir, a.toolArgs(project, sub)...)
		metrics.RecordInvocation(sub, res.Err)

		results = a.correlateSuite(suite, buildRoot, reportFile, res)
		return nil
	})
	if err != nil {
		return NewRuntimeError(err)
	}

	for _, result := range results {
		stats.Add(result)
		metrics.RecordTestResult(project.Key, result.Status)
		a.events.TestFinished(result)
	}
	return nil
}

func (a *Adapter) correlateSuite(suite *types.TreeNode, buildRoot, reportFile string, res runner.Result) []types.TestResult {
	artifact := a.correlator.ArtifactPath(buildRoot, reportFile)
	if artifact == "" {
		a.log.Error("No result artifact after run", "suite", suite.ID)
		return a.correlator.Errored(suite, res.CombinedOutput())
	}

	run, err := a.correlator.ParseFile(artifact)
	if err != nil {
		a.log.Error("Unparsable result artifact", "suite", suite.ID, "path", artifact, "err", err)
		return a.correlator.Errored(suite, res.CombinedOutput())
	}
	return a.correlator.Correlate(run, suite)
}

// Debug compiles the target's test suite, resolves the built executable's
// relative path and hands it to the host's debug launcher. The resolved
// path is held in the debug-executable slot only for the launcher call.
func (a *Adapter) Debug(ctx context.Context, ids []string) error {
	if a.launcher == nil {
		return NewRuntimeError(fmt.Errorf("no debug launcher configured"))
	}
	if len(ids) != 1 {
		return NewRuntimeError(fmt.Errorf("debug expects exactly one target, got %d", len(ids)))
	}

	a.mu.RLock()
	tree, reg, modern := a.tree, a.registry, a.modernLayout
	a.mu.RUnlock()
	if tree == nil || reg == nil {
		return NewRuntimeError(fmt.Errorf("no discovery state; call Load first"))
	}

	node := tree.FindByID(ids[0])
	if node == nil {
		return NewRuntimeError(fmt.Errorf("unknown test identifier %q", ids[0]))
	}
	if node.Path == "" {
		return NewRuntimeError(fmt.Errorf("%q does not identify a test or test file", ids[0]))
	}
	project := reg.Project(node.ProjectKey)
	if project == nil || project.Settings == nil {
		return NewRuntimeError(fmt.Errorf("no resolved project for %q", ids[0]))
	}

	sub := runner.TestFileSubCommand(node.Path)
	var res runner.Result
	if err := a.gate.With(ctx, func() error {
		res = a.invoker.Run(ctx, project.RootDir, a.toolArgs(project, sub)...)
		return nil
	}); err != nil {
		return NewRuntimeError(err)
	}
	metrics.RecordInvocation(sub, res.Err)
	if res.Err != nil {
		return NewRuntimeError(fmt.Errorf("compile for debug failed: %v\n%s", res.Err, res.CombinedOutput()))
	}

	executable := runner.TestExecutablePath(
		project.Settings.BuildRoot(), node.Path,
		project.Settings.ExecutableExtension(), modern)

	a.mu.Lock()
	a.debugExecutable = executable
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.debugExecutable = ""
		a.mu.Unlock()
	}()

	a.log.Info("Launching debug session", "project", project.Key, "executable", executable)
	return a.launcher.Launch(ctx, project, executable)
}

// Cancel kills any in-flight tool invocation and stops the current run at
// the next suite boundary.
func (a *Adapter) Cancel() {
	a.invoker.Cancel()
}

// Clean runs the tool's clean sub-command across all projects
func (a *Adapter) Clean(ctx context.Context) error {
	return a.cleanup(ctx, runner.SubCommandClean)
}

// Clobber runs the tool's clobber sub-command across all projects
func (a *Adapter) Clobber(ctx context.Context) error {
	return a.cleanup(ctx, runner.SubCommandClobber)
}

func (a *Adapter) cleanup(ctx context.Context, sub string) error {
	a.mu.RLock()
	reg := a.registry
	a.mu.RUnlock()
	if reg == nil {
		return NewRuntimeError(fmt.Errorf("no discovery state; call Load first"))
	}

	var failures []string
	for _, project := range reg.Projects() {
		var res runner.Result
		if err := a.gate.With(ctx, func() error {
			res = a.invoker.Run(ctx, project.RootDir, a.toolArgs(project, sub)...)
			return nil
		}); err != nil {
			return NewRuntimeError(err)
		}
		metrics.RecordInvocation(sub, res.Err)
		if res.Err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", project.Key, res.Err))
		}
	}
	if len(failures) > 0 {
		return NewRuntimeError(fmt.Errorf("%s failed: %s", sub, strings.Join(failures, "; ")))
	}
	return nil
}

// Tree returns the current test tree root, nil before the first Load
func (a *Adapter) Tree() *types.TreeNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tree
}

// DebugExecutable returns the executable path resolved for the in-flight
// debug session, empty outside one. The host's command layer reads it at
// launch time.
func (a *Adapter) DebugExecutable() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.debugExecutable
}

// LastStats returns the aggregate of the most recent run request
func (a *Adapter) LastStats() types.RunStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastStats
}
