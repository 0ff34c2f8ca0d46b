package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/gallerybench"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var (
		f     runFlags
		shard int
		runID string
	)

	cmd := &cobra.Command{
		Use:    workerCommandName + " <modality> <action>",
		Short:  "Process one input shard",
		Hidden: true,
		Args:   cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := parseInvocation(args, &f)
			if err != nil {
				return err
			}
			// Split already ran in the parent.
			inv.Shards = max(shard+1, 1)
			inv.InputFile = "-"

			cfg, err := ctx.load(cmd, &f)
			if err != nil {
				return err
			}
			h, err := ctx.harness(cmd, cfg, gallerybench.WithRunID(runID))
			if err != nil {
				return err
			}
			return h.RunWorker(cmd.Context(), inv, shard)
		},
	}

	disableHelpShorthand(cmd)
	bindDirFlags(cmd, &f)
	cmd.Flags().IntVar(&shard, "shard", 0, "Shard index")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run id of the parent")
	return cmd
}
