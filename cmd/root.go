package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"stackval/internal/compose"
	"stackval/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stackval",
	Short: "Validate environment deployments of the service stack",
	Long: `stackval synthesizes a configuration profile per environment class
(local, staging, production), brings the service stack up through the
compose runtime, waits for every service to report healthy, runs the
validation probe set, and tears everything down again. The final summary
is the single source of truth for overall success.`,
	// SilenceUsage is set to true to prevent printing usage message on
	// errors handled by us (e.g. failed deployments or probes)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commandStarted = true
	},
}

// commandStarted flips once a subcommand's hooks run. An Execute error
// while it is still false happened during invocation parsing (unknown
// subcommand, unknown flag, bad positional args) and is an invalid
// invocation, not a validation failure.
var commandStarted bool

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). Exit status: 0 all probes
// passed, 1 at least one probe or deployment failed, 2 invalid invocation
// or missing prerequisite.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stackval version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we map it to the exit code
		os.Exit(exitCode(err))
	}
}

// exitCode is the full exit-code mapping for Execute: invalid
// invocations exit 2, everything else follows the error taxonomy.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if !commandStarted {
		return 2
	}
	return exitCodeFor(err)
}

// exitCodeFor maps the error taxonomy to process exit codes.
func exitCodeFor(err error) int {
	var prereq *compose.PrerequisiteError
	if errors.As(err, &prereq) || errors.Is(err, config.ErrInvalidConfig) {
		return 2
	}
	return 1
}

func init() {
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())
}
