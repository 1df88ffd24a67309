package cli

import (
	"path/filepath"
	"strings"

	"tabview.dev/cli/internal/core/ports"
	"tabview.dev/cli/internal/infrastructure/config"
	"tabview.dev/cli/internal/infrastructure/manifest"
	"tabview.dev/cli/internal/infrastructure/plugins"
	"tabview.dev/cli/internal/infrastructure/rcfile"
)

// Container wires the plugin lifecycle collaborators for the commands.
type Container struct {
	Config      config.Config
	Editor      *rcfile.Editor
	Registry    *plugins.Registry
	Coordinator *plugins.Coordinator
	Manifest    ports.ManifestSource
}

// NewContainer builds the production wiring from loaded configuration.
func NewContainer() *Container {
	cfg := config.Load()

	editor := rcfile.NewEditor(cfg.RCPath)
	fetcher := plugins.NewHTTPFetcher(cfg.Debug)
	registry := plugins.NewRegistry(cfg.PluginDir, editor)
	coordinator := plugins.NewCoordinator(registry, editor, fetcher, plugins.NewPipInstaller(cfg.PipCommand, cfg.Debug), cfg.Debug)

	var source ports.ManifestSource
	if strings.HasPrefix(cfg.PluginsURL, "http://") || strings.HasPrefix(cfg.PluginsURL, "https://") {
		source = &manifest.RemoteSource{
			URL:       cfg.PluginsURL,
			CachePath: filepath.Join(cfg.PluginDir, "plugins.tsv"),
			Fetcher:   fetcher,
			Debug:     cfg.Debug,
		}
	} else {
		source = &manifest.FileSource{Path: cfg.PluginsURL}
	}

	return &Container{
		Config:      cfg,
		Editor:      editor,
		Registry:    registry,
		Coordinator: coordinator,
		Manifest:    source,
	}
}
