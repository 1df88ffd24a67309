package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tabview.dev/cli/internal/core/domain/plugin"
	"tabview.dev/cli/internal/core/ports"
)

// Registry is the in-memory catalog of known plugins: manifest rows merged
// with locally-detected install and activation status. It is the single
// source of truth for what is installed vs available. Reads happen on the
// UI goroutine while installs for distinct plugins may complete
// concurrently, so flag mutation is guarded.
type Registry struct {
	pluginDir string
	editor    ports.DirectiveEditor

	mu      sync.RWMutex
	records []plugin.Record
	index   map[string]int
}

func NewRegistry(pluginDir string, editor ports.DirectiveEditor) *Registry {
	return &Registry{
		pluginDir: pluginDir,
		editor:    editor,
		index:     make(map[string]int),
	}
}

// Build merges manifest records with local evidence: a plugin is installed
// when its path exists under the plugin directory, active when the
// run-control file carries its directive. Directives with no manifest row
// synthesize unlisted records appended after the manifest rows. Iteration
// order follows manifest row order.
func (r *Registry) Build(manifestRecords []plugin.Record) error {
	active, err := r.editor.ActiveNames()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	activeSet := make(map[string]bool, len(active))
	for _, name := range active {
		activeSet[name] = true
	}

	r.records = make([]plugin.Record, 0, len(manifestRecords))
	r.index = make(map[string]int, len(manifestRecords))

	for _, rec := range manifestRecords {
		rec.Installed = r.locallyInstalled(rec.Name)
		rec.Active = activeSet[rec.Name]
		rec.Unlisted = false
		r.index[rec.Name] = len(r.records)
		r.records = append(r.records, rec)
	}

	// Active but unknown to the manifest: keep visible so the user can
	// still deactivate it.
	for _, name := range active {
		if _, known := r.index[name]; known {
			continue
		}
		r.index[name] = len(r.records)
		r.records = append(r.records, plugin.Record{
			Name:      name,
			Installed: r.locallyInstalled(name),
			Active:    true,
			Unlisted:  true,
		})
	}

	return nil
}

// Refresh re-derives the installed and active flags from local evidence
// without reordering or dropping records.
func (r *Registry) Refresh() error {
	active, err := r.editor.ActiveNames()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	activeSet := make(map[string]bool, len(active))
	for _, name := range active {
		activeSet[name] = true
	}

	for i := range r.records {
		r.records[i].Installed = r.locallyInstalled(r.records[i].Name)
		r.records[i].Active = activeSet[r.records[i].Name]
	}
	return nil
}

// Records returns the catalog in iteration order. The returned slice is a
// copy; mutate through SetStatus.
func (r *Registry) Records() []plugin.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plugin.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Get returns the record for name.
func (r *Registry) Get(name string) (plugin.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return plugin.Record{}, fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, name)
	}
	return r.records[i], nil
}

// SetStatus mutates only the named record's derived flags. Nil leaves a
// flag unchanged.
func (r *Registry) SetStatus(name string, installed, active *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, name)
	}
	if installed != nil {
		r.records[i].Installed = *installed
	}
	if active != nil {
		r.records[i].Active = *active
	}
	return nil
}

// InstalledPath returns where a plugin's source lives locally.
func (r *Registry) InstalledPath(name string) string {
	return filepath.Join(r.pluginDir, name)
}

func (r *Registry) locallyInstalled(name string) bool {
	_, err := os.Stat(r.InstalledPath(name))
	return err == nil
}
