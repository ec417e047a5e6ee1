package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fileorg/internal/config"
	"fileorg/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var input, output, mode string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories and the model endpoint before organizing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			if err := cfg.Apply(config.Overrides{InputDir: input, OutputDir: output, Mode: mode}); err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), &cfg)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
					failed++
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{left("Check"), left("Status"), left("Detail")}, rows))
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Directory to organize")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Organization mode: content, date or type")
	return cmd
}
