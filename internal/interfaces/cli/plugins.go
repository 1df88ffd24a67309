package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tabview.dev/cli/internal/core/domain/plugin"
	"tabview.dev/cli/internal/infrastructure/plugins"
	"tabview.dev/cli/internal/infrastructure/rcfile"
)

// newPluginsCommand creates the plugins command tree. With no subcommand
// it opens the interactive plugin sheet.
func newPluginsCommand(container *Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Discover, install and remove tabview plugins",
		Long: `Open the interactive plugin sheet.

The sheet lists every plugin from the manifest with its install and
activation status. Press 'a' on a row to install, 'd' to deactivate.

Examples:
  tv plugins                  # interactive sheet
  tv plugins list             # print the catalog
  tv plugins install vfake    # install without the sheet
  tv plugins remove vfake     # deactivate without the sheet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginSheet(container)
		},
	}

	cmd.AddCommand(
		newPluginsListCommand(container),
		newPluginsInstallCommand(container),
		newPluginsRemoveCommand(container),
	)

	return cmd
}

func newPluginsListCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the plugin catalog with local status",
		RunE: func(cmd *cobra.Command, args []string) error {
			warnings, err := buildRegistry(cmd.Context(), container)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINSTALLED\tACTIVE\tDESCRIPTION\tREQUIRES")
			for _, rec := range container.Registry.Records() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					rec.Name,
					marker(rec.Installed),
					activeMarker(rec),
					rec.Description,
					strings.Join(rec.Requirements, " "),
				)
			}
			w.Flush()

			for _, warning := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
			}
			return nil
		},
	}
}

func newPluginsInstallCommand(container *Container) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Fetch a plugin, install its dependencies and activate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := buildRegistry(cmd.Context(), container); err != nil {
				return err
			}

			result := container.Coordinator.Install(cmd.Context(), args[0], plugins.InstallOptions{Overwrite: overwrite})
			return reportResult(result)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing plugin files")

	return cmd
}

func newPluginsRemoveCommand(container *Container) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Deactivate a plugin (files and dependencies stay on disk)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := buildRegistry(cmd.Context(), container); err != nil {
				return err
			}

			result := container.Coordinator.Uninstall(cmd.Context(), args[0])
			return reportResult(result)
		},
	}
}

// buildRegistry loads the manifest and populates the registry, returning
// the per-row load warnings.
func buildRegistry(ctx context.Context, container *Container) ([]string, error) {
	records, warnings, err := container.Manifest.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := container.Registry.Build(records); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func reportResult(result plugin.InstallResult) error {
	switch result.Status {
	case plugin.Success:
		fmt.Println(result.Detail)
		return nil
	case plugin.NeedsConfirm:
		return fmt.Errorf("%s (re-run with --overwrite)", result.Detail)
	default:
		return fmt.Errorf("%s: %s", result.Status, result.Detail)
	}
}

func runPluginSheet(container *Container) error {
	model := newSheetModel(container)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// External edits to the run-control file surface as refreshes in the
	// running sheet.
	watcher := rcfile.NewWatcher(container.Config.RCPath, func() {
		program.Send(rcChangedMsg{})
	})
	if err := watcher.Start(); err == nil {
		defer watcher.Stop()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("plugin sheet failed: %w", err)
	}
	return nil
}

func marker(b bool) string {
	if b {
		return "*"
	}
	return ""
}

func activeMarker(rec plugin.Record) string {
	if rec.Dangling() {
		return "!"
	}
	return marker(rec.Active)
}
