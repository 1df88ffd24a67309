package ports

import (
	"context"

	"tabview.dev/cli/internal/core/domain/plugin"
)

// ManifestSource loads the tabular plugin manifest into typed records.
// Per-row problems are recoverable and returned as warnings alongside the
// parsed rows; only a wholly unreadable source is an error.
type ManifestSource interface {
	Load(ctx context.Context) (records []plugin.Record, warnings []string, err error)
}

// SourceFetcher retrieves plugin source bytes from a URL or local path.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PackageInstaller installs a plugin's declared dependencies.
type PackageInstaller interface {
	InstallPackages(ctx context.Context, packages []string) error
}

// DirectiveEditor mutates the user's run-control file one activation
// directive at a time. Both operations are idempotent and leave all other
// file content byte-for-byte intact.
type DirectiveEditor interface {
	AddDirective(name string) error
	RemoveDirective(name string) error
	ActiveNames() ([]string, error)
}
