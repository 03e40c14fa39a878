package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hooray-app/hooray/internal/catalog"
	"github.com/hooray-app/hooray/internal/config"
	"github.com/hooray-app/hooray/internal/store"
)

// SeedResult holds the outcome of a catalog seed.
type SeedResult struct {
	Files  int `json:"files"`
	Events int `json:"events"`
	Assets int `json:"assets"`
}

func (r SeedResult) String() string {
	return fmt.Sprintf("seeded %d event(s) and %d asset(s) from %d file(s)", r.Events, r.Assets, r.Files)
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Compile the CUE catalog and load it into the database",
		Long: `Compile the event and asset catalog from CUE sources and upsert the
records into the database.

Seeding is idempotent: records are keyed by slug (events) and kind+name
(assets), so re-running after a catalog edit updates in place.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, dir, cmd)
		},
	}

	cmd.Flags().StringVar(&dir, "catalog", "", "catalog directory (default from config)")

	return cmd
}

func runSeed(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if dir == "" {
		dir = cfg.CatalogDir
	}

	cat, errs := compileCatalog(formatter, dir)
	if cat == nil {
		return NewExitError(ExitFailure, "catalog compilation failed")
	}
	if len(errs) > 0 {
		reportCatalogErrors(formatter, errs)
		return NewExitError(ExitFailure, fmt.Sprintf("%d catalog error(s)", len(errs)))
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer s.Close()

	if err := catalog.Seed(cmd.Context(), s, cat); err != nil {
		return WrapExitError(ExitCommandError, "seeding", err)
	}

	return formatter.Success(SeedResult{
		Files:  cat.FileCount,
		Events: len(cat.Events),
		Assets: len(cat.Assets),
	})
}

// compileCatalog loads a catalog directory, reporting a fatal load error
// through the formatter. A nil catalog means nothing could be loaded at
// all; a non-nil catalog with errors means some records failed.
func compileCatalog(formatter *OutputFormatter, dir string) (*catalog.Catalog, []error) {
	formatter.VerboseLog("Compiling catalog from %s", dir)
	cat, errs := catalog.Load(dir)
	if cat == nil && len(errs) > 0 {
		if cerr, ok := errs[0].(*catalog.CompileError); ok {
			formatter.Error(cerr.Code, cerr.Message, nil)
		} else {
			formatter.Error(catalog.ErrCodeLoadFailed, errs[0].Error(), nil)
		}
		return nil, errs
	}
	return cat, errs
}

func reportCatalogErrors(formatter *OutputFormatter, errs []error) {
	for _, err := range errs {
		if cerr, ok := err.(*catalog.CompileError); ok {
			formatter.Error(cerr.Code, cerr.Error(), nil)
		} else {
			formatter.Error(catalog.ErrCodeBuildFailed, err.Error(), nil)
		}
	}
}
