package starlark

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapxfer/pkg/core"
	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds a single function call when no limit is configured.
const DefaultMaxSteps = 100_000

// Runner applies Starlark callables to cell values one at a time.
// Each call gets its own step budget; a call that exceeds it fails with
// an error and the runner starts over on a fresh thread.
//
// A Runner is not safe for concurrent use.
type Runner struct {
	name     string
	maxSteps uint64
	logger   *slog.Logger
	thread   *starlark.Thread
}

// NewRunner creates a runner. The name is used for error reporting.
// A maxSteps of zero means unbounded.
func NewRunner(name string, maxSteps uint64, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Runner{name: name, maxSteps: maxSteps, logger: logger}
	r.reset()
	return r
}

// NewThread creates a thread whose print() output goes to the logger at debug level.
func NewThread(name string, logger *slog.Logger) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			logger.Debug(msg, "script", t.Name)
		},
	}
}

func (r *Runner) reset() {
	r.thread = NewThread(r.name, r.logger)
}

// Call invokes fn with v as its only positional argument.
func (r *Runner) Call(fn starlark.Callable, v core.Value) (core.Value, error) {
	arg, err := ToStarlark(v)
	if err != nil {
		return nil, err
	}

	if r.maxSteps > 0 {
		r.thread.SetMaxExecutionSteps(r.thread.ExecutionSteps() + r.maxSteps)
	}

	res, err := starlark.Call(r.thread, fn, starlark.Tuple{arg}, nil)
	if err != nil {
		// A cancelled thread cannot be reused.
		r.reset()
		return nil, err
	}

	out, err := FromStarlark(res)
	if err != nil {
		return nil, fmt.Errorf("%s returned %w", fn.Name(), err)
	}
	return out, nil
}

// Steps returns the number of steps executed on the current thread.
func (r *Runner) Steps() uint64 {
	return r.thread.ExecutionSteps()
}
