package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "CEEDLING_ADAPTER"

func prefixEnvVars(name string) []string {
	return []string{fmt.Sprintf("%s_%s", EnvVarPrefix, name)}
}

var (
	Workspace = &cli.StringFlag{
		Name:    "workspace",
		Value:   ".",
		EnvVars: prefixEnvVars("WORKSPACE"),
		Usage:   "Workspace root directory anchoring relative project paths",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Path to the adapter config file (eg. 'adapter.yaml')",
	}
	Tool = &cli.StringFlag{
		Name:    "tool",
		Value:   "ceedling",
		EnvVars: prefixEnvVars("TOOL"),
		Usage:   "Path to the ceedling executable",
	}
	Shell = &cli.StringFlag{
		Name:    "shell",
		Value:   "",
		EnvVars: prefixEnvVars("SHELL"),
		Usage:   "Shell to run the tool under (eg. '/bin/bash'); empty spawns the tool directly",
	}
	StripANSI = &cli.BoolFlag{
		Name:    "strip-ansi",
		Value:   true,
		EnvVars: prefixEnvVars("STRIP_ANSI"),
		Usage:   "Strip ANSI escape sequences from captured tool output",
	}
	TestPrefixes = &cli.StringSliceFlag{
		Name:    "test-prefix",
		EnvVars: prefixEnvVars("TEST_PREFIX"),
		Usage:   "Test function name prefix; repeat for alternatives (default: test, spec, should)",
	}
	CaseMacros = &cli.StringSliceFlag{
		Name:    "case-macro",
		EnvVars: prefixEnvVars("CASE_MACRO"),
		Usage:   "Macro alias recognized as a test-case annotation (default: TEST_CASE)",
	}
	RangeMacros = &cli.StringSliceFlag{
		Name:    "range-macro",
		EnvVars: prefixEnvVars("RANGE_MACRO"),
		Usage:   "Macro alias recognized as a test-range annotation (default: TEST_RANGE)",
	}
	Mixins = &cli.StringSliceFlag{
		Name:    "mixin",
		EnvVars: prefixEnvVars("MIXIN"),
		Usage:   "Tool mixin selection flag appended to every invocation",
	}
	HealthzEnabled = &cli.BoolFlag{
		Name:    "healthz.enabled",
		Value:   false,
		EnvVars: prefixEnvVars("HEALTHZ_ENABLED"),
		Usage:   "Enable the healthz HTTP server",
	}
	HealthzPort = &cli.StringFlag{
		Name:    "healthz.port",
		Value:   "8080",
		EnvVars: prefixEnvVars("HEALTHZ_PORT"),
		Usage:   "Port for the healthz HTTP server",
	}
	MetricsEnabled = &cli.BoolFlag{
		Name:    "metrics.enabled",
		Value:   false,
		EnvVars: prefixEnvVars("METRICS_ENABLED"),
		Usage:   "Enable the metrics HTTP server",
	}
	MetricsPort = &cli.StringFlag{
		Name:    "metrics.port",
		Value:   "7300",
		EnvVars: prefixEnvVars("METRICS_PORT"),
		Usage:   "Port for the metrics HTTP server",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (trace, debug, info, warn, error, crit)",
	}
)

var Flags = []cli.Flag{
	Workspace,
	ConfigFile,
	Tool,
	Shell,
	StripANSI,
	TestPrefixes,
	CaseMacros,
	RangeMacros,
	Mixins,
	HealthzEnabled,
	HealthzPort,
	MetricsEnabled,
	MetricsPort,
	LogLevel,
}
