package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hooray-app/hooray/internal/event"
)

// HomeResult is the computed homepage: spotlight plus library sections.
type HomeResult struct {
	Spotlight *event.Event   `json:"spotlight"`
	Sections  event.Sections `json:"sections"`
}

func (r HomeResult) String() string {
	var b strings.Builder
	if r.Spotlight != nil {
		fmt.Fprintf(&b, "spotlight: %s (%s, tier %d)\n", r.Spotlight.Title, r.Spotlight.Slug, r.Spotlight.EffectiveTier())
	} else {
		b.WriteString("spotlight: none\n")
	}
	writeSection(&b, "popular now", r.Sections.PopularNow)
	writeSection(&b, "evergreen", r.Sections.Evergreen)
	writeSection(&b, "coming soon", r.Sections.ComingSoon)
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, name string, events []event.Event) {
	fmt.Fprintf(b, "%s:\n", name)
	if len(events) == 0 {
		b.WriteString("  (empty)\n")
		return
	}
	for _, e := range events {
		fmt.Fprintf(b, "  %s (%s)\n", e.Title, e.Slug)
	}
}

// NewHomeCommand creates the home command.
func NewHomeCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Print the computed homepage ranking",
		Long: `Compute the homepage spotlight and library sections from the current
event table and print them.

Useful for checking what the ranking will show before a catalog change
goes live. --at evaluates the ranking at another instant.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHome(rootOpts, at, cmd)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC 3339 instant instead of now")

	return cmd
}

func runHome(opts *RootOptions, at string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	now := time.Now()
	if at != "" {
		var err error
		now, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return WrapExitError(ExitCommandError, "parsing --at", err)
		}
	}

	s, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.ListEvents(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "listing events", err)
	}

	formatter.VerboseLog("Ranking %d event(s) at %s", len(events), now.Format(time.RFC3339))
	return formatter.Success(HomeResult{
		Spotlight: event.SelectSpotlight(events, now),
		Sections:  event.BuildLibrarySections(events, now),
	})
}
