package cli

import (
	"github.com/spf13/cobra"

	"github.com/hooray-app/hooray/internal/event"
	"github.com/hooray-app/hooray/internal/sweep"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one event lifecycle pass",
		Long: `Run a single sweep over the event table: activate launched events,
roll expired recurring events forward a year, and end everything else
whose window closed.

The serve command runs this on a schedule; sweep exists for cron-based
deployments and manual runs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(rootOpts, cmd)
		},
	}

	return cmd
}

func runSweep(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := sweep.New(s, event.SystemClock{}).Run(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "sweep", err)
	}
	return formatter.Success("sweep complete")
}
