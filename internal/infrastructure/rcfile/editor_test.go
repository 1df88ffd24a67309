package rcfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestEditor(t *testing.T, content string) (*Editor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".tabviewrc")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return NewEditor(path), path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAddDirective_AppendsExactlyOneLine(t *testing.T) {
	tests := []struct {
		name        string
		initial     string
		plugin      string
		want        string
		description string
	}{
		{
			name:        "MissingFile_CreatesFileWithDirective",
			initial:     "",
			plugin:      "vfake",
			want:        "import plugins.vfake\n",
			description: "Absent rc file should be created with a single directive",
		},
		{
			name:        "ExistingContent_PreservedVerbatim",
			initial:     "# my settings\n\noptions.theme = 'dark'\n",
			plugin:      "vfake",
			want:        "# my settings\n\noptions.theme = 'dark'\nimport plugins.vfake\n",
			description: "Comments and blank lines must survive an append unchanged",
		},
		{
			name:        "NoTrailingNewline_NewlineInsertedBeforeDirective",
			initial:     "options.theme = 'dark'",
			plugin:      "vfake",
			want:        "options.theme = 'dark'\nimport plugins.vfake\n",
			description: "Directive must land on its own line",
		},
		{
			name:        "OtherPluginActive_BothDirectivesPresent",
			initial:     "import plugins.other\n",
			plugin:      "vfake",
			want:        "import plugins.other\nimport plugins.vfake\n",
			description: "Directives for other plugins are untouched",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor, path := newTestEditor(t, tt.initial)

			require.NoError(t, editor.AddDirective(tt.plugin))
			assert.Equal(t, tt.want, readFile(t, path), tt.description)
		})
	}
}

func TestAddDirective_Idempotent(t *testing.T) {
	editor, path := newTestEditor(t, "# settings\n")

	require.NoError(t, editor.AddDirective("vfake"))
	once := readFile(t, path)

	require.NoError(t, editor.AddDirective("vfake"))
	assert.Equal(t, once, readFile(t, path), "Second add must leave the file unchanged")
}

func TestRemoveDirective_RemovesOnlyTargetLine(t *testing.T) {
	initial := "# keep me\nimport plugins.vfake\n\nimport plugins.other\n"
	editor, path := newTestEditor(t, initial)

	require.NoError(t, editor.RemoveDirective("vfake"))
	assert.Equal(t, "# keep me\n\nimport plugins.other\n", readFile(t, path))

	// The previous content survives as a backup.
	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, initial, string(backup))
}

func TestRemoveDirective_AbsentDirectiveLeavesFileUntouched(t *testing.T) {
	initial := "# settings\nimport plugins.other\n"
	editor, path := newTestEditor(t, initial)

	require.NoError(t, editor.RemoveDirective("vfake"))
	assert.Equal(t, initial, readFile(t, path), "No-op remove must be byte-for-byte identical")

	_, err := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "No-op remove must not create a backup")
}

func TestRemoveDirective_MissingFileIsNoOp(t *testing.T) {
	editor, path := newTestEditor(t, "")

	require.NoError(t, editor.RemoveDirective("vfake"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Remove must not create the rc file")
}

func TestActiveNames_ReturnsDirectivesInFileOrder(t *testing.T) {
	editor, _ := newTestEditor(t, "import plugins.b\n# import plugins.skip\nimport plugins.a\nimport os\n")

	names, err := editor.ActiveNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names)
}

// Property tests for the §-style editor invariants: appends add exactly
// one matching line and preserve everything else; add is idempotent;
// removing an absent directive changes nothing.

func TestEditor_PropertyBased_AddPreservesOtherLines(t *testing.T) {
	lineGen := rapid.OneOf(
		rapid.Just(""),
		rapid.Just("# comment"),
		rapid.StringMatching(`[a-z]{1,8} = '[a-z]{1,8}'`),
		rapid.StringMatching(`import plugins\.[a-z]{1,8}`),
	)

	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOfN(lineGen, 0, 12).Draw(rt, "lines")
		name := rapid.StringMatching(`[a-z][a-z0-9_]{0,11}`).Draw(rt, "name")

		initial := ""
		for _, line := range lines {
			initial += line + "\n"
		}

		path := filepath.Join(t.TempDir(), "rc")
		if initial != "" {
			if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
				rt.Fatal(err)
			}
		}
		editor := NewEditor(path)

		if err := editor.AddDirective(name); err != nil {
			rt.Fatal(err)
		}
		after, err := os.ReadFile(path)
		if err != nil {
			rt.Fatal(err)
		}

		content := string(after)
		hadDirective := false
		for _, line := range splitLines(initial) {
			if line == Directive(name) {
				hadDirective = true
			}
		}

		if hadDirective {
			// Already-present directive means a pure no-op.
			if content != initial {
				rt.Fatalf("add over existing directive changed the file:\nbefore: %q\nafter:  %q", initial, content)
			}
		} else {
			count := 0
			for _, line := range splitLines(content) {
				if line == Directive(name) {
					count++
				}
			}
			if count != 1 {
				rt.Fatalf("expected exactly one directive for %q, got %d in %q", name, count, content)
			}
			// Pre-existing content is a prefix of the result.
			if initial != "" && content[:len(initial)] != initial {
				rt.Fatalf("existing content not preserved:\nbefore: %q\nafter:  %q", initial, content)
			}
		}

		// Idempotence.
		if err := editor.AddDirective(name); err != nil {
			rt.Fatal(err)
		}
		again, err := os.ReadFile(path)
		if err != nil {
			rt.Fatal(err)
		}
		if string(again) != content {
			rt.Fatalf("second add changed the file:\nfirst:  %q\nsecond: %q", content, string(again))
		}
	})
}

func TestEditor_PropertyBased_AddThenRemoveRestoresContent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		body := rapid.StringMatching(`([a-z #=.']{0,20}\n){0,6}`).Draw(rt, "body")
		name := rapid.StringMatching(`[a-z][a-z0-9_]{0,11}`).Draw(rt, "name")

		path := filepath.Join(t.TempDir(), "rc")
		if body != "" {
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				rt.Fatal(err)
			}
		}
		editor := NewEditor(path)

		if err := editor.AddDirective(name); err != nil {
			rt.Fatal(err)
		}
		if err := editor.RemoveDirective(name); err != nil {
			rt.Fatal(err)
		}

		names, err := editor.ActiveNames()
		if err != nil {
			rt.Fatal(err)
		}
		for _, got := range names {
			if got == name {
				rt.Fatalf("directive for %q still present after remove", name)
			}
		}
	})
}

func splitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}
