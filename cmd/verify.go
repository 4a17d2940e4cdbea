package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"srcverify.dev/pkg/srcverify/internal/domain"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

var (
	sourceRootFlag string
	encodingFlag   string
	parallelFlag   int
	policyFlag     string
	strictFlag     bool
	timeoutFlag    string
)

// verifyCmd represents the verify command.
var verifyCmd = newVerifyCmd()

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <manifest>",
		Short: "Verify the recorded sources of an artifact",
		Long:  verifyLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := domain.ParseMismatchPolicy(viper.GetString(policyConfigKey))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if timeout := viper.GetDuration(timeoutConfigKey); timeout > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			return workflow.Verify(ctx, domain.VerifyArgs{
				Manifest:   m.Path(args[0]),
				SourceRoot: m.Path(viper.GetString(sourceRootConfigKey)),
				Encoding:   viper.GetString(encodingConfigKey),
				Threads:    viper.GetInt(parallelConfigKey),
				Policy:     policy,
				Strict:     viper.GetBool(strictConfigKey),
				Reports:    m.Path(viper.GetString(outputFlagName)),
			})
		},
	}

	configureVerifyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func configureVerifyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sourceRootFlag, sourceRootFlagName, "r", viper.GetString(sourceRootConfigKey), "local checkout that source-link prefixes are rewritten onto")
	bindFlagToConfig(cmd.Flags().Lookup(sourceRootFlagName), sourceRootConfigKey)

	cmd.Flags().StringVarP(&encodingFlag, encodingFlagName, "e", viper.GetString(encodingConfigKey), "text encoding of the sources (overrides the manifest)")
	bindFlagToConfig(cmd.Flags().Lookup(encodingFlagName), encodingConfigKey)

	cmd.Flags().IntVarP(&parallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel workers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().StringVar(&policyFlag, policyFlagName, viper.GetString(policyConfigKey), "checksum mismatch policy: collect or fail-fast")
	bindFlagToConfig(cmd.Flags().Lookup(policyFlagName), policyConfigKey)

	cmd.Flags().BoolVar(&strictFlag, strictFlagName, viper.GetBool(strictConfigKey), "exit non-zero unless every source is verified or embedded")
	bindFlagToConfig(cmd.Flags().Lookup(strictFlagName), strictConfigKey)

	cmd.Flags().StringVar(&timeoutFlag, timeoutFlagName, viper.GetString(timeoutConfigKey), "abort the run after this duration (e.g. 30s, 0 disables)")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), timeoutConfigKey)
}
