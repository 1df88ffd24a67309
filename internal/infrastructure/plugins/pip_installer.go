package plugins

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"tabview.dev/cli/internal/core/domain/plugin"
)

// PipInstaller installs plugin dependencies by shelling out to a pip-style
// package manager. The command's output ends up in the error detail so
// the user sees what the installer said.
type PipInstaller struct {
	command string
	debug   bool
}

func NewPipInstaller(command string, debug bool) *PipInstaller {
	if command == "" {
		command = "pip3"
	}
	return &PipInstaller{command: command, debug: debug}
}

func (p *PipInstaller) InstallPackages(ctx context.Context, packages []string) error {
	if len(packages) == 0 {
		return nil
	}

	args := append([]string{"install"}, packages...)
	if p.debug {
		fmt.Printf("[DEBUG] Running %s %s\n", p.command, strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%w: %s %s: %s", plugin.ErrDependencyInstall, p.command, strings.Join(args, " "), detail)
	}
	return nil
}
