package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the tv command tree.
func NewRootCommand(container *Container, version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tv",
		Short: "tabview - interactive tabular data tool",
		Long: `tabview (tv) is an interactive terminal tool for exploring tabular data.

Optional functionality ships as plugins: small extension modules listed in
a shared manifest, installed into the local plugin directory and activated
by an import directive in the run-control file.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newPluginsCommand(container))

	return rootCmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute(container *Container, version, commit, date string) {
	if err := NewRootCommand(container, version, commit, date).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
