package plugin

import "errors"

// Failure taxonomy for the plugin lifecycle. Callers match with errors.Is;
// wrapped detail carries the underlying cause.
var (
	ErrManifestUnreadable  = errors.New("plugin manifest unreadable")
	ErrConfigUnreadable    = errors.New("run-control file unreadable")
	ErrConfigWriteFailed   = errors.New("run-control file write failed")
	ErrFetchFailed         = errors.New("plugin source fetch failed")
	ErrDependencyInstall   = errors.New("dependency install failed")
	ErrPluginNotFound      = errors.New("plugin not found")
	ErrOperationInProgress = errors.New("operation already in progress for plugin")
)
