package system

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FileSystem answers presence and listing questions about the host filesystem.
type FileSystem interface {
	Exists(path string) bool
	// ReadDir returns the full paths of the entries of dir, in listing order.
	ReadDir(dir string) ([]string, error)
}

// Runner executes an external command and returns what it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) ReadDir(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	defer f.Close()

	// Readdirnames keeps the kernel order, os.ReadDir would sort it.
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s: %w (%s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// StartUnit asks systemd to start the given unit.
func StartUnit(ctx context.Context, runner Runner, unit string) error {
	if _, err := runner.Run(ctx, "systemctl", "start", unit); err != nil {
		return fmt.Errorf("failed to start unit %s: %w", unit, err)
	}
	return nil
}
