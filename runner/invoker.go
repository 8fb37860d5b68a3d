package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
)

// Result carries the complete output of one tool invocation. Err is set when
// the process exited non-zero or could not be spawned.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// CombinedOutput joins stdout and stderr for diagnostics
func (r Result) CombinedOutput() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Invoker spawns the external build tool as a subprocess. Exactly one
// process handle is tracked at a time; Cancel kills the tracked process and
// its descendants and sets a flag the run loop consults between suites.
type Invoker struct {
	log       log.Logger
	tool      string
	shell     string // when set, the command line runs under this shell
	stripANSI bool

	mu        sync.Mutex
	current   *exec.Cmd
	cancelled atomic.Bool
}

// InvokerConfig configures an Invoker
type InvokerConfig struct {
	Log       log.Logger
	Tool      string // tool executable, e.g. "ceedling"
	Shell     string // optional shell to run the command line under
	StripANSI bool   // strip ANSI escape sequences from captured output
}

// NewInvoker creates an Invoker
func NewInvoker(cfg InvokerConfig) *Invoker {
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.Tool == "" {
		cfg.Tool = "ceedling"
	}
	return &Invoker{
		log:       cfg.Log,
		tool:      cfg.Tool,
		shell:     cfg.Shell,
		stripANSI: cfg.StripANSI,
	}
}

// Run spawns `tool <args>` in workDir and blocks until process exit,
// returning the captured streams. The spawned process gets its own process
// group so cancellation can kill the whole tree.
func (v *Invoker) Run(ctx context.Context, workDir string, args ...string) Result {
	var cmd *exec.Cmd
	if v.shell != "" {
		line := v.tool + " " + strings.Join(args, " ")
		cmd = exec.CommandContext(ctx, v.shell, "-c", line)
	} else {
		cmd = exec.CommandContext(ctx, v.tool, args...)
	}
	cmd.Dir = workDir
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	v.log.Debug("Running tool command", "dir", workDir, "command", cmd.String())

	v.track(cmd)
	err := cmd.Run()
	v.untrack(cmd)

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
	if v.stripANSI {
		res.Stdout = stripansi.Strip(res.Stdout)
		res.Stderr = stripansi.Strip(res.Stderr)
	}
	return res
}

// Cancel kills the tracked process tree, if any, and marks the cooperative
// cancellation flag. Cancellation takes effect at the next suite boundary;
// the in-flight invocation is killed but its correlation step still runs
// against whatever partial artifact exists.
func (v *Invoker) Cancel() {
	v.cancelled.Store(true)

	v.mu.Lock()
	cmd := v.current
	v.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	v.log.Info("Cancelling in-flight tool invocation", "pid", cmd.Process.Pid)
	if err := killProcessTree(cmd); err != nil {
		v.log.Warn("Failed to kill process tree", "pid", cmd.Process.Pid, "err", err)
	}
}

// Cancelled reports whether a cancellation was requested since the last reset
func (v *Invoker) Cancelled() bool {
	return v.cancelled.Load()
}

// ResetCancellation clears the cancellation flag before a new run request
func (v *Invoker) ResetCancellation() {
	v.cancelled.Store(false)
}

func (v *Invoker) track(cmd *exec.Cmd) {
	v.mu.Lock()
	v.current = cmd
	v.mu.Unlock()
}

func (v *Invoker) untrack(cmd *exec.Cmd) {
	v.mu.Lock()
	if v.current == cmd {
		v.current = nil
	}
	v.mu.Unlock()
}
