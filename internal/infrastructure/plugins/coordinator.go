package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cmap "github.com/orcaman/concurrent-map/v2"

	"tabview.dev/cli/internal/core/domain/plugin"
	"tabview.dev/cli/internal/core/ports"
)

// Coordinator executes the install/uninstall protocol: fetch source into
// the plugin directory, install declared dependencies, mutate the
// run-control file, update registry status. Each step is gated on the
// prior step's success; failures abort the remaining steps and are
// reported, never swallowed. At most one operation is in flight per
// plugin name; distinct plugins may run concurrently.
type Coordinator struct {
	registry *Registry
	editor   ports.DirectiveEditor
	fetcher  ports.SourceFetcher
	packages ports.PackageInstaller
	inflight cmap.ConcurrentMap[string, struct{}]
	debug    bool
}

// InstallOptions tunes a single install attempt.
type InstallOptions struct {
	// Overwrite replaces existing plugin files instead of asking for
	// confirmation.
	Overwrite bool
}

func NewCoordinator(registry *Registry, editor ports.DirectiveEditor, fetcher ports.SourceFetcher, packages ports.PackageInstaller, debug bool) *Coordinator {
	return &Coordinator{
		registry: registry,
		editor:   editor,
		fetcher:  fetcher,
		packages: packages,
		inflight: cmap.New[struct{}](),
		debug:    debug,
	}
}

// Install runs the install state machine for name. Safe to call from a
// background goroutine; the caller displays the returned result.
func (c *Coordinator) Install(ctx context.Context, name string, opts InstallOptions) plugin.InstallResult {
	rec, err := c.registry.Get(name)
	if err != nil {
		return plugin.InstallResult{Status: plugin.Failure, Detail: err.Error(), Err: err}
	}
	if rec.Installed && rec.Active {
		return plugin.InstallResult{Status: plugin.Success, Detail: fmt.Sprintf("%s is already installed", name)}
	}
	if rec.URL == "" {
		err := fmt.Errorf("%w: %s has no source location", plugin.ErrFetchFailed, name)
		return plugin.InstallResult{Status: plugin.Failure, Detail: err.Error(), Err: err}
	}

	outPath := c.registry.InstalledPath(name)
	if rec.Installed && !opts.Overwrite {
		return plugin.InstallResult{
			Status: plugin.NeedsConfirm,
			Detail: fmt.Sprintf("%s already exists, overwrite?", outPath),
		}
	}

	if !c.inflight.SetIfAbsent(name, struct{}{}) {
		err := fmt.Errorf("%w: %s", plugin.ErrOperationInProgress, name)
		return plugin.InstallResult{Status: plugin.Failure, Detail: err.Error(), Err: err}
	}
	defer c.inflight.Remove(name)

	// Step 1: fetch source into the plugin directory. Any failure here,
	// including cancellation, leaves no partial state behind.
	if err := c.fetchSource(ctx, rec.URL, outPath); err != nil {
		return plugin.InstallResult{
			Status: plugin.Failure,
			Detail: fmt.Sprintf("fetch %s: %v", rec.URL, err),
			Err:    fmt.Errorf("%w: %v", plugin.ErrFetchFailed, err),
		}
	}
	c.debugf("Fetched %s to %s", name, outPath)

	// Step 2: declared dependencies. On failure the source stays on disk
	// and activation still proceeds; the plugin will surface its missing
	// dependencies at load time.
	var depErr error
	if len(rec.Requirements) > 0 {
		if err := c.packages.InstallPackages(ctx, rec.Requirements); err != nil {
			depErr = fmt.Errorf("%w: %v", plugin.ErrDependencyInstall, err)
			c.debugf("Dependency install for %s failed: %v", name, err)
		}
	}

	// Step 3: activation directive.
	if err := c.editor.AddDirective(name); err != nil {
		c.setStatus(name, boolPtr(true), boolPtr(false))
		return plugin.InstallResult{
			Status: plugin.PartialFailure,
			Detail: fmt.Sprintf("%s installed but not activated: %v", name, err),
			Err:    err,
		}
	}

	// Step 4: registry flags, only after the steps they reflect.
	c.setStatus(name, boolPtr(true), boolPtr(true))

	if depErr != nil {
		return plugin.InstallResult{
			Status: plugin.PartialFailure,
			Detail: fmt.Sprintf("%s activated, but dependencies failed: %v", name, depErr),
			Err:    depErr,
		}
	}
	return plugin.InstallResult{Status: plugin.Success, Detail: fmt.Sprintf("installed %s, restart to load it", name)}
}

// Uninstall removes the activation directive for name and clears its
// active flag. Plugin files and installed dependencies stay on disk:
// uninstall is reversible deactivation, not teardown.
func (c *Coordinator) Uninstall(ctx context.Context, name string) plugin.InstallResult {
	rec, err := c.registry.Get(name)
	if err != nil {
		return plugin.InstallResult{Status: plugin.Failure, Detail: err.Error(), Err: err}
	}
	if !rec.Active {
		return plugin.InstallResult{Status: plugin.Success, Detail: fmt.Sprintf("%s is not active", name)}
	}

	if !c.inflight.SetIfAbsent(name, struct{}{}) {
		err := fmt.Errorf("%w: %s", plugin.ErrOperationInProgress, name)
		return plugin.InstallResult{Status: plugin.Failure, Detail: err.Error(), Err: err}
	}
	defer c.inflight.Remove(name)

	if err := c.editor.RemoveDirective(name); err != nil {
		return plugin.InstallResult{
			Status: plugin.Failure,
			Detail: fmt.Sprintf("deactivate %s: %v", name, err),
			Err:    err,
		}
	}

	c.setStatus(name, nil, boolPtr(false))
	return plugin.InstallResult{Status: plugin.Success, Detail: fmt.Sprintf("%s will not be imported in the future", name)}
}

// fetchSource downloads the plugin source and writes it under the plugin
// directory, cleaning up the partial file on any failure.
func (c *Coordinator) fetchSource(ctx context.Context, url, outPath string) error {
	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	tmp := outPath + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (c *Coordinator) setStatus(name string, installed, active *bool) {
	if err := c.registry.SetStatus(name, installed, active); err != nil {
		c.debugf("setStatus %s: %v", name, err)
	}
}

func (c *Coordinator) debugf(format string, args ...any) {
	if c.debug {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func boolPtr(b bool) *bool { return &b }
