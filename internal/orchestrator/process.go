package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/hupe1980/gallerybench/internal/input"
	"github.com/hupe1980/gallerybench/model"
)

// Process runs every shard in a child process, usually the current binary
// re-executed with a hidden worker subcommand. Exit code 0 is success, 2 is
// NotImplemented and anything else, including death by signal, is failure.
type Process struct {
	// Path is the executable. Empty means the current executable.
	Path string
	// Args returns the arguments for the shard, without the program name.
	Args func(shard input.Shard) []string
	// Env is appended to the parent's environment.
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

func (p *Process) Run(_ context.Context, shard input.Shard) model.ShardResult {
	res := model.ShardResult{Shard: shard.Index, Status: model.StatusFailure}

	path := p.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			res.Err = fmt.Errorf("resolve executable: %w", err)
			return res
		}
		path = exe
	}

	// Workers are never cancelled.
	cmd := exec.Command(path, p.Args(shard)...)
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		res.Status = model.StatusSuccess
		return res
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		res.Err = fmt.Errorf("start worker: %w", err)
		return res
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		res.Err = fmt.Errorf("worker killed by signal %s", ws.Signal())
		return res
	}
	res.Status = model.StatusFromExitCode(exitErr.ExitCode())
	if res.Status == model.StatusFailure {
		res.Err = fmt.Errorf("worker exited with code %d", exitErr.ExitCode())
	}
	return res
}
