package plugins

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"tabview.dev/cli/internal/core/domain/plugin"
)

func TestPipInstaller_EmptyListIsNoOp(t *testing.T) {
	installer := NewPipInstaller("definitely-not-a-command", false)
	assert.NoError(t, installer.InstallPackages(context.Background(), nil))
}

func TestPipInstaller_DefaultsToPip3(t *testing.T) {
	installer := NewPipInstaller("", false)
	assert.Equal(t, "pip3", installer.command)
}

func TestPipInstaller_CommandFailureCarriesDetail(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix command test")
	}

	installer := NewPipInstaller("false", false)
	err := installer.InstallPackages(context.Background(), []string{"faker"})
	assert.ErrorIs(t, err, plugin.ErrDependencyInstall)
}

func TestPipInstaller_CommandSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix command test")
	}

	installer := NewPipInstaller("true", false)
	assert.NoError(t, installer.InstallPackages(context.Background(), []string{"faker", "shapely"}))
}

func TestPipInstaller_MissingCommand(t *testing.T) {
	installer := NewPipInstaller("tabview-no-such-pip", false)
	err := installer.InstallPackages(context.Background(), []string{"faker"})
	assert.ErrorIs(t, err, plugin.ErrDependencyInstall)
}
