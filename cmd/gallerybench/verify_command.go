package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/gallerybench"
)

func newVerifyCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check manifest ranges against EDB sizes",
		Long: "Verify loads every manifest in the output directory (the consolidated\n" +
			"gallery and each edb.<i>/manifest.<i> pair) and checks that all ranges\n" +
			"lie inside their EDB without overlapping.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outputDir == "" {
				return fmt.Errorf("%w: --output-dir is required", gallerybench.ErrConfiguration)
			}
			pairs, err := gallerybench.Verify(nil, outputDir)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(pairs))
			for _, p := range pairs {
				rows = append(rows, []string{p.EDBPath, p.ManifestPath, strconv.Itoa(len(p.Entries)), strconv.FormatInt(p.EDBSize, 10)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"EDB", "Manifest", "Entries", "Bytes"}, rows, 3, 4))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory holding the galleries")
	return cmd
}
