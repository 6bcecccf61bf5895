// Command lexibuild assembles a dictionary from its configured sources and
// answers closest-match lookups against the result.
//
// Commands:
//
//	assemble   import sources, assign slugs, determine lemmas, write the dictionary
//	lookup     print the entries closest to a query
//	check      verify that a dictionary file is in canonical form
//	migrate    apply database migrations
//	version    print version information
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/lexibuild/internal/app"
	"github.com/heartmarshall/lexibuild/internal/service/lookup"
)

// runTimeout bounds a single command.
const runTimeout = 30 * time.Minute

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "lexibuild",
		Short:         "Dictionary assembly engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: $CONFIG_PATH or ./lexibuild.yaml)")

	cmd.AddCommand(
		assembleCmd(&configPath),
		lookupCmd(&configPath),
		checkCmd(),
		migrateCmd(&configPath),
		versionCmd(),
	)
	return cmd
}

func assembleCmd(configPath *string) *cobra.Command {
	var (
		phases  string
		dryRun  bool
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build the dictionary from its sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := app.Bootstrap(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			report, err := app.Assemble(ctx, cfg, logger, app.AssembleOptions{
				Phases:  splitPhases(phases),
				DryRun:  dryRun,
				Publish: publish,
			})
			if err != nil {
				logger.Error("assembly failed",
					slog.String("build_id", report.BuildID.String()),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phases, "phase", "", "comma-separated source abbrevs to import (default: all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse sources without assembling or writing")
	cmd.Flags().BoolVar(&publish, "publish", false, "also publish the build to the database")
	return cmd
}

func lookupCmd(configPath *string) *cobra.Command {
	var (
		input string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "lookup QUERY",
		Short: "Print the entries closest to QUERY",
		Long: `Print the entries closest to QUERY.

With --input the matches come from an assembled dictionary file; otherwise
from the latest build published to the configured database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				matches []lookup.Match
				err     error
			)
			if input != "" {
				matches, err = app.LookupFile(input, args[0], limit)
			} else {
				cfg, logger, berr := app.Bootstrap(*configPath)
				if berr != nil {
					return berr
				}
				ctx, cancel := commandContext(cmd.Context())
				defer cancel()
				matches, err = app.LookupPublished(ctx, cfg, logger, args[0], limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range matches {
				kind := "lemma"
				if m.Wordform {
					kind = "wordform"
				}
				fmt.Fprintf(out, "%.1f\t%s\t%s\t%s\n", m.Distance, m.Slug, m.Head, kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "assembled dictionary file to search")
	cmd.Flags().IntVarP(&limit, "limit", "n", lookup.DefaultLimit, "maximum number of matches")
	return cmd
}

func checkCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Verify that a dictionary file is in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			ok, err := app.Check(args[0], fix, logger)
			if err != nil {
				return err
			}
			if !ok && !fix {
				return fmt.Errorf("%s is not canonical (rerun with --fix)", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "rewrite the file in canonical form")
	return cmd
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := app.Bootstrap(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd.Context())
			defer cancel()
			return app.Migrate(ctx, cfg, logger)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lexibuild %s\n", app.BuildVersion())
		},
	}
}

// commandContext adds the run timeout and cancels on SIGINT/SIGTERM.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func splitPhases(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var phases []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			phases = append(phases, p)
		}
	}
	return phases
}
