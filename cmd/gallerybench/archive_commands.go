package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/gallerybench"
	"github.com/hupe1980/gallerybench/gallery"
	"github.com/hupe1980/gallerybench/internal/config"
)

type archiveFlags struct {
	outputDir string
	target    string
	codec     string
}

func (f *archiveFlags) bind(cmd *cobra.Command, withCodec bool) {
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory holding the consolidated gallery")
	cmd.Flags().StringVar(&f.target, "target", "", "Archive location: a path, file://, s3:// or minio:// URL")
	if withCodec {
		cmd.Flags().StringVar(&f.codec, "codec", "", "Compression: zstd, lz4 or none")
	}
}

func (f *archiveFlags) resolve(ctx *commandContext) (*config.Config, error) {
	cfg, err := config.Load(ctx.settings)
	if err != nil {
		return nil, err
	}
	if f.target != "" {
		cfg.Export.Target = f.target
	}
	if f.codec != "" {
		cfg.Export.Codec = f.codec
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
	}
	if f.outputDir == "" {
		return nil, fmt.Errorf("%w: --output-dir is required", gallerybench.ErrConfiguration)
	}
	return cfg, nil
}

func targetConfig(cfg *config.Config) gallerybench.TargetConfig {
	return gallerybench.TargetConfig{
		MinioAccessKey: cfg.Export.MinioAccessKey,
		MinioSecretKey: cfg.Export.MinioSecretKey,
		MinioSecure:    cfg.Export.MinioSecure,
		S3Region:       cfg.Export.S3Region,
		S3Endpoint:     cfg.Export.S3Endpoint,
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var f archiveFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Compress the finalized gallery and upload it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(ctx)
			if err != nil {
				return err
			}
			codec, err := gallery.ParseCodec(cfg.Export.Codec)
			if err != nil {
				return fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
			}
			store, err := gallerybench.OpenTarget(cmd.Context(), cfg.Export.Target, targetConfig(cfg))
			if err != nil {
				return err
			}
			idx, err := gallerybench.Export(cmd.Context(), nil, f.outputDir, store, codec, uuid.NewString())
			if err != nil {
				return err
			}
			printArchive(cmd, idx)
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var f archiveFlags

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Download an exported gallery and verify it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(ctx)
			if err != nil {
				return err
			}
			store, err := gallerybench.OpenTarget(cmd.Context(), cfg.Export.Target, targetConfig(cfg))
			if err != nil {
				return err
			}
			idx, err := gallerybench.Import(cmd.Context(), store, nil, f.outputDir)
			if err != nil {
				return err
			}
			printArchive(cmd, idx)
			return nil
		},
	}
	f.bind(cmd, false)
	return cmd
}

func printArchive(cmd *cobra.Command, idx gallery.ArchiveIndex) {
	rows := make([][]string, 0, len(idx.Files))
	for _, af := range idx.Files {
		rows = append(rows, []string{af.Name, af.Blob, strconv.FormatInt(af.Size, 10), af.SHA256})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s, codec %s, %d entries\n", idx.RunID, idx.Codec, idx.Entries)
	fmt.Fprintln(out, renderTable([]string{"File", "Blob", "Bytes", "SHA-256"}, rows, 3))
}
