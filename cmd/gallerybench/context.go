package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/gallerybench"
	"github.com/hupe1980/gallerybench/engine"
	"github.com/hupe1980/gallerybench/internal/config"
	"github.com/hupe1980/gallerybench/internal/logging"
	"github.com/hupe1980/gallerybench/model"
)

// workerCommandName is the hidden subcommand process workers run.
const workerCommandName = "worker"

type commandContext struct {
	settings  string
	logLevel  string
	logFormat string
}

// runFlags are the invocation flags shared by the root and worker commands.
type runFlags struct {
	configDir   string
	enrollDir   string
	outputDir   string
	stem        string
	inputFile   string
	shards      int
	engine      string
	mode        string
	candidates  int
	maxParallel int
	galleryType string
	cleanup     bool
	ioLimit     int64
}

// disableHelpShorthand frees -h for the output stem.
func disableHelpShorthand(cmd *cobra.Command) {
	cmd.Flags().Bool("help", false, "help for "+cmd.Name())
}

func bindDirFlags(cmd *cobra.Command, f *runFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.configDir, "config-dir", "c", "", "Engine configuration directory (read-only)")
	flags.StringVarP(&f.enrollDir, "enroll-dir", "e", "", "Enrollment directory the engine finalizes into")
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for shards, logs, galleries and candidate lists")
	flags.StringVarP(&f.stem, "output-stem", "h", "", "Prefix of log and candidate list files")
	flags.StringVar(&f.engine, "engine", "", "Registered engine name")
	flags.IntVar(&f.candidates, "candidates", 0, "Candidate list length K")
	flags.Int64Var(&f.ioLimit, "io-limit", 0, "EDB write limit in bytes per second, 0 is unlimited")
}

// load resolves the settings file and applies the flags that were set.
func (c *commandContext) load(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg, err := config.Load(strings.TrimSpace(c.settings))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine.Name = f.engine
	}
	if flags.Changed("candidates") && f.candidates > 0 {
		cfg.Search.CandidateListLength = f.candidates
	}
	if flags.Changed("io-limit") {
		cfg.Gallery.IOLimitBytesPerSec = f.ioLimit
	}
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		cfg.Workers.Mode = f.mode
	}
	if flags.Lookup("max-parallel") != nil && flags.Changed("max-parallel") {
		cfg.Workers.MaxParallel = f.maxParallel
	}
	if flags.Lookup("gallery-type") != nil && flags.Changed("gallery-type") {
		cfg.Gallery.Type = f.galleryType
	}
	if flags.Lookup("cleanup") != nil && flags.Changed("cleanup") {
		cfg.Gallery.Cleanup = f.cleanup
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
	}
	return cfg, nil
}

func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*gallerybench.Logger, error) {
	l, err := gallerybench.NewLoggerWithOptions(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
	}
	return l, nil
}

// harness builds a Harness for cfg. Process workers inherit the engine and
// logging settings through the worker command line.
func (c *commandContext) harness(cmd *cobra.Command, cfg *config.Config, extra ...gallerybench.Option) (*gallerybench.Harness, error) {
	e, err := engine.New(cfg.Engine.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
	}
	logger, err := c.logger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	mode, err := gallerybench.ParseWorkerMode(cfg.Workers.Mode)
	if err != nil {
		return nil, err
	}

	opts := []gallerybench.Option{
		gallerybench.WithLogger(logger),
		gallerybench.WithWorkerMode(mode),
		gallerybench.WithMaxParallel(cfg.Workers.MaxParallel),
		gallerybench.WithIOLimit(cfg.Gallery.IOLimitBytesPerSec),
		gallerybench.WithCandidateListLength(cfg.Search.CandidateListLength),
		gallerybench.WithGalleryType(cfg.GalleryType()),
		gallerybench.WithCleanup(cfg.Gallery.Cleanup),
		gallerybench.WithWorkerCommand(gallerybench.WorkerCommand{
			Args: []string{
				workerCommandName,
				"--engine", cfg.Engine.Name,
				"--log-level", cfg.Logging.Level,
				"--log-format", cfg.Logging.Format,
			},
		}),
	}
	return gallerybench.New(e, append(opts, extra...)...), nil
}

func parseInvocation(args []string, f *runFlags) (gallerybench.Invocation, error) {
	modality, err := model.ParseModality(args[0])
	if err != nil {
		return gallerybench.Invocation{}, fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
	}
	action, err := model.ParseAction(args[1])
	if err != nil {
		return gallerybench.Invocation{}, fmt.Errorf("%w: %w", gallerybench.ErrConfiguration, err)
	}
	return gallerybench.Invocation{
		Modality:  modality,
		Action:    action,
		ConfigDir: f.configDir,
		EnrollDir: f.enrollDir,
		OutputDir: f.outputDir,
		Stem:      f.stem,
		InputFile: f.inputFile,
		Shards:    f.shards,
	}, nil
}
