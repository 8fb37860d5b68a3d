// Package registry resolves the configured ceedling projects and their
// merged tool configuration.
package registry

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ceedling-tools/adapter/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

// ProjectEntry is one configured project as provided by the host
type ProjectEntry struct {
	Path        string `yaml:"path"`
	Name        string `yaml:"name,omitempty"`
	DebugTarget string `yaml:"debugTarget,omitempty"`
}

// Project is a resolved project. Projects are rebuilt in full whenever the
// configuration changes, never partially mutated.
type Project struct {
	Key         string
	RootDir     string // Absolute path to the project directory
	ConfigFile  string // Tool config file name, e.g. "project.yml"
	DebugTarget string

	// Files holds the per-type source file lists reported by the tool,
	// relative to RootDir. Populated during discovery.
	Files map[types.FileType][]string

	// Settings is the merged view of the tool's own configuration
	Settings *ToolSettings
}

// Config contains registry configuration
type Config struct {
	Log log.Logger

	// WorkspaceRoot anchors relative project paths and hosts the synthesized
	// default project when no entries are configured.
	WorkspaceRoot string

	// Entries are the configured projects; empty means one default project
	// rooted at the workspace root.
	Entries []ProjectEntry

	// ProjectConfigFile is the tool config file name inside each project
	ProjectConfigFile string

	// DefaultConfigFile is an optional shared defaults file, merged beneath
	// every project's own config.
	DefaultConfigFile string
}

// Registry manages the resolved project set
type Registry struct {
	config   Config
	projects []*Project
	byKey    map[string]*Project
	mu       sync.RWMutex
}

const defaultProjectConfigFile = "project.yml"

// NewRegistry resolves all configured projects. Any missing or non-directory
// path fails resolution of the whole set: the host surfaces it as a load
// error rather than a crash.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.WorkspaceRoot == "" {
		return nil, errors.New("workspace root is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.ProjectConfigFile == "" {
		cfg.ProjectConfigFile = defaultProjectConfigFile
	}

	r := &Registry{
		config: cfg,
		byKey:  make(map[string]*Project),
	}
	if err := r.resolve(); err != nil {
		return nil, err
	}
	cfg.Log.Debug("Registry resolved", "len(projects)", len(r.projects))
	return r, nil
}

func (r *Registry) resolve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.config.Entries
	if len(entries) == 0 {
		entries = []ProjectEntry{{Path: "."}}
	}

	for _, entry := range entries {
		project, err := r.resolveEntry(entry)
		if err != nil {
			return err
		}
		if _, exists := r.byKey[project.Key]; exists {
			return errors.Errorf("duplicate project key %q; use distinct names", project.Key)
		}
		r.byKey[project.Key] = project
		r.projects = append(r.projects, project)
	}
	return nil
}

func (r *Registry) resolveEntry(entry ProjectEntry) (*Project, error) {
	dir := entry.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.config.WorkspaceRoot, dir)
	}
	dir = filepath.Clean(dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "project path does not exist: %s", entry.Path)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("project path is not a directory: %s", entry.Path)
	}

	return &Project{
		Key:         deriveKey(entry, dir, r.config.ProjectConfigFile),
		RootDir:     dir,
		ConfigFile:  r.config.ProjectConfigFile,
		DebugTarget: entry.DebugTarget,
		Files:       make(map[types.FileType][]string),
	}, nil
}

// deriveKey picks the project key: the explicit name when given, the config
// file's base name for configured projects, the directory name for the
// synthesized default.
func deriveKey(entry ProjectEntry, dir, configFile string) string {
	if entry.Name != "" {
		return entry.Name
	}
	if entry.Path != "." && entry.Path != "" {
		return strings.TrimSuffix(configFile, filepath.Ext(configFile))
	}
	return filepath.Base(dir)
}

// Projects returns the resolved projects in configuration order
func (r *Registry) Projects() []*Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.projects
}

// Project returns the project with the given key, or nil
func (r *Registry) Project(key string) *Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

// MultiProject reports whether more than one project is configured
func (r *Registry) MultiProject() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects) > 1
}

// LoadSettings reads and merges the project's tool configuration with the
// shared defaults file, project keys winning recursively.
func (r *Registry) LoadSettings(p *Project) error {
	projectFile := filepath.Join(p.RootDir, p.ConfigFile)
	merged, err := LoadMerged(projectFile, r.config.DefaultConfigFile)
	if err != nil {
		return errors.Wrapf(err, "load tool config for project %q", p.Key)
	}
	p.Settings = NewToolSettings(merged)
	return nil
}

// WatchFiles lists the configuration files whose change must trigger a
// reload: each project's tool config plus the shared defaults file.
func (r *Registry) WatchFiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var paths []string
	for _, p := range r.projects {
		paths = append(paths, filepath.Join(p.RootDir, p.ConfigFile))
	}
	if r.config.DefaultConfigFile != "" {
		paths = append(paths, r.config.DefaultConfigFile)
	}
	return paths
}
