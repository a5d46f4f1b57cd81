// Package engine runs benchmark workloads with an external JavaScript shell,
// either directly on the host or inside a Docker container.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"sunbench/internal/benchmark"

	"github.com/kballard/go-shellquote"
)

// maxOutputTail bounds how much workload output is quoted in an error.
const maxOutputTail = 2048

const waitDelay = 2 * time.Second

// Local executes each workload as "<engine...> <script>" on the host.
type Local struct {
	Command   []string
	SuiteDir  string
	Extension string
	// Timeout bounds a single workload. Zero means no limit.
	Timeout time.Duration
}

// NewLocal parses the engine command line and returns a Local engine.
func NewLocal(engine, suiteDir, ext string, timeout time.Duration) (*Local, error) {
	args, err := shellquote.Split(engine)
	if err != nil {
		return nil, fmt.Errorf("invalid engine command %q: %w", engine, err)
	}
	if len(args) == 0 {
		return nil, errors.New("engine command is empty")
	}
	return &Local{Command: args, SuiteDir: suiteDir, Extension: ext, Timeout: timeout}, nil
}

// Resolve locates the script for id in the suite directory.
func (l *Local) Resolve(id benchmark.ID) (benchmark.Workload, error) {
	path := filepath.Join(l.SuiteDir, id.Script(l.Extension))
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", benchmark.ErrWorkloadNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", benchmark.ErrWorkloadNotFound, path)
	}
	return &script{engine: l, path: path}, nil
}

type script struct {
	engine *Local
	path   string
}

func (s *script) Run(ctx context.Context) error {
	if s.engine.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.engine.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), s.engine.Command[1:]...), filepath.Base(s.path))
	cmd := exec.CommandContext(ctx, s.engine.Command[0], args...)
	cmd.Dir = filepath.Dir(s.path)
	// Orphaned grandchildren must not hold the output pipe open past a kill.
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %s", s.path, s.engine.Timeout)
		}
		return fmt.Errorf("%s: %w%s", s.path, err, outputTail(out.String()))
	}
	return nil
}

func outputTail(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	if len(output) > maxOutputTail {
		output = "..." + output[len(output)-maxOutputTail:]
	}
	return "\nOutput:\n" + output
}
