package adapter

import (
	"os"
	"path/filepath"

	"github.com/ceedling-tools/adapter/flags"
	"github.com/ceedling-tools/adapter/registry"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the engine configuration
type Config struct {
	// WorkspaceRoot anchors relative project paths
	WorkspaceRoot string `yaml:"-"`

	// Projects are the configured projects; empty synthesizes one default
	// project at the workspace root
	Projects []registry.ProjectEntry `yaml:"projects"`

	// ProjectConfigFile is the tool config file name inside each project
	ProjectConfigFile string `yaml:"projectConfigFile"`
	// DefaultConfigFile is an optional shared tool defaults file merged
	// beneath every project's own config
	DefaultConfigFile string `yaml:"defaultConfigFile"`

	Tool      string `yaml:"tool"`      // tool executable
	Shell     string `yaml:"shell"`     // optional shell to run the tool under
	StripANSI bool   `yaml:"stripAnsi"` // strip ANSI sequences from captured output

	TestPrefixes []string `yaml:"testPrefixes"` // test-name prefix alternation
	CaseMacros   []string `yaml:"caseMacros"`   // test-case annotation aliases
	RangeMacros  []string `yaml:"rangeMacros"`  // test-range annotation aliases

	// Mixins are tool selection flags appended to every invocation
	Mixins []string `yaml:"mixins"`

	Log log.Logger `yaml:"-"`
}

// NewConfig creates a Config from the cli context, layering command-line
// flags over an optional adapter config file.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	workspace, err := filepath.Abs(ctx.String(flags.Workspace.Name))
	if err != nil {
		return nil, errors.Wrap(err, "resolve workspace root")
	}

	cfg := &Config{
		WorkspaceRoot: workspace,
		Tool:          ctx.String(flags.Tool.Name),
		Shell:         ctx.String(flags.Shell.Name),
		StripANSI:     ctx.Bool(flags.StripANSI.Name),
		TestPrefixes:  ctx.StringSlice(flags.TestPrefixes.Name),
		CaseMacros:    ctx.StringSlice(flags.CaseMacros.Name),
		RangeMacros:   ctx.StringSlice(flags.RangeMacros.Name),
		Mixins:        ctx.StringSlice(flags.Mixins.Name),
		Log:           logger,
	}

	if file := ctx.String(flags.ConfigFile.Name); file != "" {
		if err := cfg.loadFile(file, ctx); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges file-based settings into the config; flag values set on
// the command line keep precedence for scalar settings.
func (c *Config) loadFile(path string, ctx *cli.Context) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read adapter config %s", path)
	}

	// seed with the current value so an omitted key is a no-op
	fileCfg := Config{StripANSI: c.StripANSI}
	if err := yaml.Unmarshal(contents, &fileCfg); err != nil {
		return errors.Wrapf(err, "parse adapter config %s", path)
	}

	c.Projects = fileCfg.Projects
	if c.ProjectConfigFile == "" {
		c.ProjectConfigFile = fileCfg.ProjectConfigFile
	}
	if c.DefaultConfigFile == "" {
		c.DefaultConfigFile = fileCfg.DefaultConfigFile
	}
	if len(c.TestPrefixes) == 0 {
		c.TestPrefixes = fileCfg.TestPrefixes
	}
	if len(c.CaseMacros) == 0 {
		c.CaseMacros = fileCfg.CaseMacros
	}
	if len(c.RangeMacros) == 0 {
		c.RangeMacros = fileCfg.RangeMacros
	}
	if len(c.Mixins) == 0 {
		c.Mixins = fileCfg.Mixins
	}
	if fileCfg.Tool != "" && !ctx.IsSet(flags.Tool.Name) {
		c.Tool = fileCfg.Tool
	}
	if fileCfg.Shell != "" && !ctx.IsSet(flags.Shell.Name) {
		c.Shell = fileCfg.Shell
	}
	if !ctx.IsSet(flags.StripANSI.Name) {
		c.StripANSI = fileCfg.StripANSI
	}
	return nil
}

// Validate checks the configuration for problems that would make every
// discovery pass fail.
func (c *Config) Validate() error {
	if c.WorkspaceRoot == "" {
		return errors.New("workspace root is required")
	}
	if c.Tool == "" {
		return errors.New("tool executable is required")
	}
	if c.Log == nil {
		c.Log = log.Root()
	}
	if c.DefaultConfigFile != "" && !filepath.IsAbs(c.DefaultConfigFile) {
		c.DefaultConfigFile = filepath.Join(c.WorkspaceRoot, c.DefaultConfigFile)
	}
	return nil
}
