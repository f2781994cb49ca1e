// Package runner compiles and runs a C++ translation unit with a time limit.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// TimeoutExitCode is reported when the program is killed for running too long.
const TimeoutExitCode = 124

const (
	defaultCompiler = "g++"
	defaultStd      = "c++20"
	defaultTimeout  = 5 * time.Second
)

// Result is the outcome of one run. Compile and runtime failures are
// reported here, not as errors.
type Result struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    string        `json:"error"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Runner runs source code.
type Runner interface {
	Run(ctx context.Context, code string) (Result, error)
}

// Options configures an ExecRunner. Zero fields take defaults.
type Options struct {
	Compiler string
	Std      string
	Timeout  time.Duration
	WorkDir  string
}

// ExecRunner compiles with an external compiler in a fresh directory per run,
// so concurrent runs never share files.
type ExecRunner struct {
	opts Options
}

// NewExecRunner returns a runner using g++ -std=c++20 and a 5 second limit
// unless opts says otherwise.
func NewExecRunner(opts Options) *ExecRunner {
	if opts.Compiler == "" {
		opts.Compiler = defaultCompiler
	}
	if opts.Std == "" {
		opts.Std = defaultStd
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Join(os.TempDir(), "codeflow")
	}
	return &ExecRunner{opts: opts}
}

// Run writes code to disk, compiles it and runs the binary. The returned
// error is only set when the run could not be attempted at all, e.g. the
// compiler is missing or ctx was cancelled.
func (r *ExecRunner) Run(ctx context.Context, code string) (Result, error) {
	start := time.Now()

	dir := filepath.Join(r.opts.WorkDir, uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, errors.Wrap(err, "failed to create work dir")
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "main.cpp")
	bin := filepath.Join(dir, "program")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	if err := os.WriteFile(src, []byte(code), 0o644); err != nil {
		return Result{}, errors.Wrap(err, "failed to write source")
	}

	compile := exec.CommandContext(ctx, r.opts.Compiler, "-std="+r.opts.Std, src, "-o", bin)
	compile.Dir = dir
	out, err := compile.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			log.Debugf("compile failed with code %d", exitErr.ExitCode())
			return Result{
				Error:    string(out),
				ExitCode: exitErr.ExitCode(),
				Duration: time.Since(start),
			}, nil
		}
		if ctx.Err() != nil {
			return Result{}, errors.Wrap(ctx.Err(), "compile interrupted")
		}
		return Result{}, errors.Wrapf(err, "failed to execute compiler %s", r.opts.Compiler)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var output bytes.Buffer
	prog := exec.CommandContext(runCtx, bin)
	prog.Dir = dir
	prog.Stdout = &output
	prog.Stderr = &output
	prog.WaitDelay = time.Second
	err = prog.Run()

	res := Result{Output: output.String(), Duration: time.Since(start)}
	switch {
	case err == nil:
		res.Success = true
		return res, nil
	case ctx.Err() != nil:
		return res, errors.Wrap(ctx.Err(), "run interrupted")
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Output = ""
		res.ExitCode = TimeoutExitCode
		res.Error = fmt.Sprintf("Program execution timeout (%g seconds)", r.opts.Timeout.Seconds())
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return res, errors.Wrap(err, "failed to execute program")
	}
	res.ExitCode = exitErr.ExitCode()
	res.Error = fmt.Sprintf("Program exited with code %d", res.ExitCode)
	return res, nil
}
