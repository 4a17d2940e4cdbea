package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the srcverify build version, the Go version and the checksum algorithms it supports.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("version: unknown")
				return
			}

			cmd.Println("srcverify\t", info.Main.Version)
			cmd.Println("go\t\t", info.GoVersion)
			cmd.Println("checksums\t", supportedAlgorithms)
		},
	}
}

const supportedAlgorithms = "md5 sha1 sha256 sha384 sha512 blake3"

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
