package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stackval/internal/config"
	"stackval/internal/report"
	"stackval/internal/session"
	"stackval/pkg/logging"
)

func newValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate [local|staging|production|all]",
		Short: "Run the validation pipeline for one or all environments",
		Long: `validate drives each requested environment class through the full
pipeline: generate profile, deploy, wait for health, run probes, tear down.
Environments run sequentially; a failing environment never skips a later
one. Without a selector (or with an unrecognized one) all three classes are
validated in order: local, staging, production.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if verbose {
				level = logging.LevelDebug
			}
			logging.Init(level, os.Stderr)

			selector := ""
			if len(args) > 0 {
				selector = args[0]
			}
			classes, ok := config.ParseSelector(selector)
			if !ok {
				logging.Warn("CLI", "Unknown environment %q, validating all environments", selector)
				classes = config.AllClasses()
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			// An interrupt cancels the in-flight pass; its teardown still
			// runs so no deployment is leaked.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			controller := session.NewController(cfg)
			if err := controller.CheckPrerequisites(ctx); err != nil {
				return err
			}

			summary := controller.Run(ctx, classes)
			report.Render(os.Stdout, controller.Results(), summary)

			if summary.ExitCode() != 0 {
				return fmt.Errorf("validation failed: %d of %d checks failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
