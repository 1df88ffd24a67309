package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Dangling(t *testing.T) {
	tests := []struct {
		name      string
		installed bool
		active    bool
		want      bool
	}{
		{name: "ActiveWithFiles_NotDangling", installed: true, active: true, want: false},
		{name: "ActiveWithoutFiles_Dangling", installed: false, active: true, want: true},
		{name: "InstalledInactive_NotDangling", installed: true, active: false, want: false},
		{name: "Untouched_NotDangling", installed: false, active: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Name: "vfake", Installed: tt.installed, Active: tt.active}
			assert.Equal(t, tt.want, rec.Dangling())
		})
	}
}

func TestResultStatus_String(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "partial failure", PartialFailure.String())
	assert.Equal(t, "failure", Failure.String())
	assert.Equal(t, "needs confirmation", NeedsConfirm.String())
}

func TestInstallResult_Failed(t *testing.T) {
	assert.False(t, InstallResult{Status: Success}.Failed())
	assert.False(t, InstallResult{Status: NeedsConfirm}.Failed())
	assert.True(t, InstallResult{Status: PartialFailure}.Failed())
	assert.True(t, InstallResult{Status: Failure}.Failed())
}

func TestErrorTaxonomy_DistinctSentinels(t *testing.T) {
	sentinels := []error{
		ErrManifestUnreadable,
		ErrConfigUnreadable,
		ErrConfigWriteFailed,
		ErrFetchFailed,
		ErrDependencyInstall,
		ErrPluginNotFound,
		ErrOperationInProgress,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}
