package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"weatherscreen/manager"
	"weatherscreen/render"
)

// Factory builds the screen manager for a command. The returned func
// releases everything the manager depends on.
type Factory func(cmd *cobra.Command, opts ...manager.Option) (*manager.Manager, func() error, error)

func New(factory Factory) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           "weather",
		Args:          cobra.NoArgs,
		Short:         "Terminal weather screen: current conditions and a daily forecast",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, factory, func(m *manager.Manager) error {
				return m.Resolve(cmd.Context())
			})
		},
	}

	cmd.PersistentFlags().String("config", "", "path to a YAML config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "search <query>",
			Args:  cobra.ExactArgs(1),
			Short: "List cities matching a query",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cmd, factory, func(m *manager.Manager) error {
					return m.Suggest(cmd.Context(), args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "select <city>",
			Args:  cobra.ExactArgs(1),
			Short: "Show the forecast for a city and remember it",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cmd, factory, func(m *manager.Manager) error {
					return m.Select(cmd.Context(), manager.Location{Name: args[0]})
				})
			},
		},
		&cobra.Command{
			Use:   "locate",
			Args:  cobra.NoArgs,
			Short: "Show the forecast for the current location",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cmd, factory, func(m *manager.Manager) error {
					return m.LocateDevice(cmd.Context())
				})
			},
		},
		newInteractive(factory),
	)

	return cmd, nil
}

// runOnce runs a single workflow and renders the resulting screen. A denied
// location permission is not a command failure.
func runOnce(cmd *cobra.Command, factory Factory, workflow func(m *manager.Manager) error) error {
	m, release, err := factory(cmd)
	if err != nil {
		return err
	}
	defer release()

	err = workflow(m)
	if errors.Is(err, manager.ErrPermissionDenied) {
		slog.Debug("continuing without location", "error", err)
		err = nil
	}

	if renderErr := render.Screen(cmd.OutOrStdout(), m.Snapshot()); renderErr != nil {
		return renderErr
	}

	return err
}
