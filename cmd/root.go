// Package cmd provides the root command and CLI setup for srcverify.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"srcverify.dev/pkg/srcverify/internal/adapter"
	"srcverify.dev/pkg/srcverify/internal/checksum"
	"srcverify.dev/pkg/srcverify/internal/controller"
	"srcverify.dev/pkg/srcverify/internal/domain"
)

var workflow domain.Workflow

// reportsOutputDirFlag is a root-level flag shared by commands that write reports.
var reportsOutputDirFlag string

var (
	verboseFlag bool
	logFileFlag string
)

const rootLongDescription = `srcverify checks that the source files recorded in a compiled artifact's
debug information can be recovered from a local checkout and still match
the checksums captured at build time.

Each recorded source is resolved either from the text embedded in the
artifact or from disk, after rewriting its build-time path with the
artifact's source-link prefixes onto --source-root.`

const verifyLongDescription = `Verify every source recorded in a manifest (YAML, JSON, JSONC or CBOR).

Sources are resolved in parallel. Mismatched, missing and unreadable files
are listed in the report; with --policy fail-fast the first failure stops
the run, and with --strict any non-reproducible result exits non-zero.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "srcverify",
		Short: "Build source verification tool",
		Long:  rootLongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			if workflow != nil {
				return nil
			}

			wf, err := newWorkflow(cmd, logger)
			if err != nil {
				return err
			}

			workflow = wf

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for verification reports (empty disables saving)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "path of the rotating log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// newWorkflow wires the production adapters around the command's output.
func newWorkflow(cmd *cobra.Command, logger *slog.Logger) (domain.Workflow, error) {
	manifestReader, err := adapter.NewLocalManifestReader(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest schema: %w", err)
	}

	var storeOptions []adapter.ReportStoreOption
	if viper.GetBool(compressConfigKey) {
		storeOptions = append(storeOptions, adapter.WithCompression())
	}

	return domain.NewWorkflow(
		adapter.NewLocalSourceFSAdapter(),
		manifestReader,
		adapter.NewReportStore(logger, storeOptions...),
		controller.NewUI(cmd.Root(), controller.IsTTY(os.Stdout)),
		checksum.NewVerifier(),
		logger,
	), nil
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
