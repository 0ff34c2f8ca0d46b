package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/gallerybench"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}
	var f runFlags

	rootCmd := &cobra.Command{
		Use:   "gallerybench <face|iris|mm|five> <enroll_1N|finalize_1N|search_1N|searchMulti_1N>",
		Short: "Batch 1:N evaluation harness for biometric template engines",
		Example: "  gallerybench face enroll_1N -c config -e enroll -o output -h face -i enroll.txt -t 4\n" +
			"  gallerybench face finalize_1N -c config -e enroll -o output\n" +
			"  gallerybench face search_1N -c config -e enroll -o output -h face -i search.txt -t 4",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := parseInvocation(args, &f)
			if err != nil {
				return err
			}
			cfg, err := ctx.load(cmd, &f)
			if err != nil {
				return err
			}
			h, err := ctx.harness(cmd, cfg, gallerybench.WithSummaryWriter(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			_, err = h.Run(cmd.Context(), inv)
			return err
		},
	}

	disableHelpShorthand(rootCmd)
	bindDirFlags(rootCmd, &f)
	flags := rootCmd.Flags()
	flags.StringVarP(&f.inputFile, "input", "i", "", "Record file to enroll or search")
	flags.IntVarP(&f.shards, "shards", "t", 1, "Number of workers the input is split over")
	flags.StringVar(&f.mode, "mode", "", "Worker mode: process or inprocess")
	flags.IntVar(&f.maxParallel, "max-parallel", 0, "Maximum concurrently running workers, 0 is unlimited")
	flags.StringVar(&f.galleryType, "gallery-type", "", "Gallery type passed on finalization: consolidated or unconsolidated")
	flags.BoolVar(&f.cleanup, "cleanup", false, "Remove shard galleries after finalization")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&ctx.settings, "settings", "", "TOML settings file")
	persistent.StringVar(&ctx.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	persistent.StringVar(&ctx.logFormat, "log-format", "", "Log format: auto, json or console")

	rootCmd.AddCommand(newWorkerCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newEnginesCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
