package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"

	adapter "github.com/ceedling-tools/adapter"
	"github.com/ceedling-tools/adapter/exitcodes"
	"github.com/ceedling-tools/adapter/flags"
	"github.com/ceedling-tools/adapter/service"
	"github.com/ceedling-tools/adapter/types"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Name = "ceedling-adapter"
	app.Usage = "Ceedling test discovery and execution adapter"
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Flags = flags.Flags
	app.Commands = []*cli.Command{
		{
			Name:   "list",
			Usage:  "Discover tests and print the test tree",
			Action: runList,
		},
		{
			Name:      "run",
			Usage:     "Discover and run test suites",
			ArgsUsage: "[identifier...]",
			Action:    runTests,
		},
		{
			Name:   "clean",
			Usage:  "Run the tool's clean sub-command across all projects",
			Action: cleanupAction(func(a *adapter.Adapter, ctx *cli.Context) error { return a.Clean(ctx.Context) }),
		},
		{
			Name:   "clobber",
			Usage:  "Run the tool's clobber sub-command across all projects",
			Action: cleanupAction(func(a *adapter.Adapter, ctx *cli.Context) error { return a.Clobber(ctx.Context) }),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if adapter.IsTestFailureError(err) {
			fmt.Fprintln(os.Stderr, err.Error())
		} else {
			log.Error("Application failed", "err", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the process exit code: test failures exit 1,
// configuration and runtime errors exit 2.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case adapter.IsTestFailureError(err):
		return exitcodes.TestFailure
	default:
		return exitcodes.RuntimeErr
	}
}

// levelFromString maps the log.level flag to a handler level, defaulting to
// info for unrecognized values.
func levelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "info":
		return log.LevelInfo
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	default:
		return log.LevelInfo
	}
}

func setup(ctx *cli.Context, opts ...adapter.Option) (*adapter.Adapter, log.Logger, func(), error) {
	lvl := levelFromString(ctx.String(flags.LogLevel.Name))
	logger := log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true))
	log.SetDefault(logger)

	cfg, err := adapter.NewConfig(ctx, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	engine, err := adapter.New(cfg, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	svc := service.New(service.Config{
		HealthzEnabled: ctx.Bool(flags.HealthzEnabled.Name),
		HealthzHost:    "0.0.0.0",
		HealthzPort:    ctx.String(flags.HealthzPort.Name),
		MetricsEnabled: ctx.Bool(flags.MetricsEnabled.Name),
		MetricsHost:    "0.0.0.0",
		MetricsPort:    ctx.String(flags.MetricsPort.Name),
	})
	svc.Start(ctx.Context)

	return engine, logger, svc.Shutdown, nil
}

func runList(ctx *cli.Context) error {
	engine, _, shutdown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer shutdown()
	if err := engine.Load(ctx.Context); err != nil {
		return err
	}
	printTree(engine.Tree(), 0)
	return nil
}

func printTree(node *types.TreeNode, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if node.Kind == types.NodeKindRoot {
		fmt.Println(node.Label)
	} else {
		fmt.Printf("%s%s\n", indent, node.ID)
	}
	for _, child := range node.Children {
		printTree(child, depth+1)
	}
}

func runTests(ctx *cli.Context) error {
	collector := &resultCollector{}
	engine, logger, shutdown, err := setup(ctx, adapter.WithEvents(collector))
	if err != nil {
		return err
	}
	defer shutdown()
	if err := engine.Load(ctx.Context); err != nil {
		return err
	}

	stats, err := engine.Run(ctx.Context, ctx.Args().Slice())
	if err != nil {
		return err
	}

	printSummary(stats, collector.failures())
	if stats.Failed > 0 || stats.Errored > 0 {
		return adapter.NewTestFailureError(fmt.Sprintf("%d of %d tests failed", stats.Failed+stats.Errored, stats.Total))
	}
	logger.Info("All tests passed", "total", stats.Total)
	return nil
}

func cleanupAction(fn func(*adapter.Adapter, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		engine, _, shutdown, err := setup(ctx)
		if err != nil {
			return err
		}
		defer shutdown()
		if err := engine.Load(ctx.Context); err != nil {
			return err
		}
		return fn(engine, ctx)
	}
}

func printSummary(stats types.RunStats, failures []types.TestResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Total", "Passed", "Failed", "Skipped", "Errored", "Pass Rate"})
	t.AppendRow(table.Row{
		stats.Total, stats.Passed, stats.Failed, stats.Skipped, stats.Errored,
		fmt.Sprintf("%.1f%%", stats.PassRate()),
	})
	t.Render()

	if len(failures) == 0 {
		return
	}
	f := table.NewWriter()
	f.SetOutputMirror(os.Stdout)
	f.AppendHeader(table.Row{"Test", "Status", "Line", "Message"})
	for _, r := range failures {
		line := ""
		if r.FailLine >= 0 {
			line = fmt.Sprintf("%d", r.FailLine)
		}
		f.AppendRow(table.Row{r.NodeID, coloredStatus(r.Status), line, text.WrapSoft(r.Message, 60)})
	}
	f.Render()
}

func coloredStatus(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return text.FgGreen.Sprint(status)
	case types.TestStatusFail, types.TestStatusError:
		return text.FgRed.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}

// resultCollector keeps the per-test transitions emitted during a run so the
// summary can show failure details.
type resultCollector struct {
	results []types.TestResult
}

func (c *resultCollector) LoadStarted()        {}
func (c *resultCollector) LoadFinished(string) {}
func (c *resultCollector) SuiteStarted(id string) {
	log.Debug("Suite started", "suite", id)
}
func (c *resultCollector) SuiteFinished(id string) {
	log.Debug("Suite finished", "suite", id)
}
func (c *resultCollector) TestStarted(id string) {
	log.Debug("Test started", "test", id)
}
func (c *resultCollector) TestFinished(result types.TestResult) {
	c.results = append(c.results, result)
}

func (c *resultCollector) failures() []types.TestResult {
	var failed []types.TestResult
	for _, r := range c.results {
		if r.Status == types.TestStatusFail || r.Status == types.TestStatusError {
			failed = append(failed, r)
		}
	}
	return failed
}
