package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"srcverify.dev/pkg/srcverify/internal/adapter"
	"srcverify.dev/pkg/srcverify/internal/checksum"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

var (
	initManifestFlag  string
	initScanFlag      string
	initPrefixFlag    string
	initAlgorithmFlag string
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default srcverify.yaml configuration file",
		Long: `Create a srcverify.yaml in the current working directory populated with the
current CLI defaults so it can be edited manually.

With --manifest and --scan, also write a baseline manifest recording the
checksum of every file under the scanned directory, rooted at --prefix. An
existing config file is kept as is when a manifest is requested.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				var exists viper.ConfigFileAlreadyExistsError
				if !errors.As(err, &exists) || initManifestFlag == "" {
					return fmt.Errorf("failed to write config file: %w", err)
				}

				cmd.Printf("Keeping existing %s\n", targetPath)
			}

			if initManifestFlag == "" {
				return nil
			}

			written, err := writeBaselineManifest(m.Path(initManifestFlag), initScanFlag, initPrefixFlag, initAlgorithmFlag)
			if err != nil {
				return err
			}

			cmd.Printf("Wrote %d source(s) to %s\n", written, initManifestFlag)

			return nil
		},
	}

	cmd.Flags().StringVar(&initManifestFlag, "manifest", "", "also write a baseline manifest to this file (.yaml, .json or .cbor)")
	cmd.Flags().StringVar(&initScanFlag, "scan", ".", "directory whose files are recorded in the baseline manifest")
	cmd.Flags().StringVar(&initPrefixFlag, "prefix", "/build/", "build-time path prefix recorded for scanned files")
	cmd.Flags().StringVar(&initAlgorithmFlag, "algorithm", string(m.HashSHA256), "checksum algorithm for scanned files")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func writeBaselineManifest(target m.Path, scanDir, prefix, algorithmName string) (int, error) {
	format, err := adapter.DetectManifestFormat(target)
	if err != nil {
		return 0, err
	}

	algorithm, err := m.ParseHashAlgorithm(algorithmName)
	if err != nil {
		return 0, err
	}

	artifact, err := scanArtifact(scanDir, prefix, algorithm)
	if err != nil {
		return 0, err
	}

	data, err := adapter.EncodeManifest(artifact, format)
	if err != nil {
		return 0, fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(string(target), data, 0o600); err != nil {
		return 0, fmt.Errorf("failed to write manifest: %w", err)
	}

	return len(artifact.Sources), nil
}

func scanArtifact(scanDir, prefix string, algorithm m.HashAlgorithm) (m.Artifact, error) {
	root, err := filepath.Abs(scanDir)
	if err != nil {
		return m.Artifact{}, fmt.Errorf("failed to resolve scan dir: %w", err)
	}

	link, err := m.NewLinkRule(prefix, "")
	if err != nil {
		return m.Artifact{}, err
	}

	verifier := checksum.NewVerifier()
	artifact := m.Artifact{Name: filepath.Base(root), Links: []m.LinkRule{link}}

	var files []string

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if p != root && d.Name()[0] == '.' {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, p)
		}

		return nil
	})
	if err != nil {
		return m.Artifact{}, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(files)

	for _, file := range files {
		// #nosec G304 - files come from walking the operator-supplied scan dir
		data, err := os.ReadFile(file)
		if err != nil {
			return m.Artifact{}, fmt.Errorf("failed to read %s: %w", file, err)
		}

		sum, err := verifier.Sum(algorithm, data)
		if err != nil {
			return m.Artifact{}, err
		}

		rel, err := filepath.Rel(root, file)
		if err != nil {
			return m.Artifact{}, err
		}

		record, err := m.NewSourceRecord(m.Path(path.Join(prefix, filepath.ToSlash(rel))), algorithm, sum)
		if err != nil {
			return m.Artifact{}, err
		}

		artifact.Sources = append(artifact.Sources, record)
	}

	return artifact, nil
}
