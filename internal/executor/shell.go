package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// CommandRunner executes a shell command line. It is swapped out in tests.
type CommandRunner interface {
	Run(ctx context.Context, dir, cmdline string, env []string) (Output, error)
}

// ShellRunner runs command lines through sh -c.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, dir, cmdline string, env []string) (Output, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = dir
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			out.ExitStatus = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("sh -c: %w", err)
	}
	return out, nil
}

// isolatedEnv keeps only the variables the engine needs, plus extras.
func isolatedEnv(extra map[string]string) []string {
	vars := map[string]string{}
	for _, k := range []string{"PATH", "HOME", "LANG", "TMPDIR"} {
		if v, ok := os.LookupEnv(k); ok {
			vars[k] = v
		}
	}
	for k, v := range extra {
		vars[k] = v
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env
}
