package rcfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tabview.dev/cli/internal/core/domain/plugin"
)

const directivePrefix = "import plugins."

// Directive returns the activation line for a plugin name.
func Directive(name string) string {
	return directivePrefix + name
}

// Editor performs line-granular mutation of the user's run-control file.
// Each call is a single critical section over the file: two directive
// mutations never interleave their read and write phases. All lines other
// than the targeted directive are preserved byte-for-byte.
type Editor struct {
	path string
	mu   sync.Mutex
}

func NewEditor(path string) *Editor {
	return &Editor{path: path}
}

// Path returns the run-control file location.
func (e *Editor) Path() string { return e.path }

// AddDirective appends the activation directive for name unless one is
// already present. The file is created if absent. Idempotent.
func (e *Editor) AddDirective(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, err := e.read()
	if err != nil {
		return err
	}

	directive := Directive(name)
	for _, line := range strings.SplitAfter(content, "\n") {
		if strings.TrimSpace(line) == directive {
			return nil
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += directive + "\n"

	return e.replace(content)
}

// RemoveDirective rewrites the file with every directive line for name
// removed. A no-op when no such directive exists; the previous content is
// kept at <path>.bak across a rewrite.
func (e *Editor) RemoveDirective(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, err := e.read()
	if err != nil {
		return err
	}

	directive := Directive(name)
	var (
		kept    strings.Builder
		removed bool
	)
	for _, line := range strings.SplitAfter(content, "\n") {
		if strings.TrimSpace(line) == directive {
			removed = true
			continue
		}
		kept.WriteString(line)
	}
	if !removed {
		return nil
	}

	if err := os.WriteFile(e.path+".bak", []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: backup: %v", plugin.ErrConfigWriteFailed, err)
	}

	return e.replace(kept.String())
}

// ActiveNames returns the plugin names with a directive in the file, in
// file order.
func (e *Editor) ActiveNames() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, err := e.read()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, directivePrefix) {
			continue
		}
		name := trimmed[len(directivePrefix):]
		if name != "" && !strings.ContainsAny(name, " \t.") {
			names = append(names, name)
		}
	}
	return names, nil
}

// read returns the whole file, or empty content when the file does not
// exist yet.
func (e *Editor) read() (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", plugin.ErrConfigUnreadable, err)
	}
	return string(data), nil
}

// replace writes the full new content to a temporary file in the same
// directory and renames it over the original, so a failed write never
// leaves the file half-written.
func (e *Editor) replace(content string) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", plugin.ErrConfigWriteFailed, err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: %v", plugin.ErrConfigWriteFailed, err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", plugin.ErrConfigWriteFailed, err)
	}
	return nil
}
