package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SynapticNetworks/compartsim/config"
)

func newValidateCmd() *cobra.Command {
	var bundlePath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a configuration bundle and report configuration errors without ticking",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(bundlePath)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			defer f.Close()

			b, err := config.Load(f)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			if _, err := b.Build(); err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d compartments, %d receptors)\n",
				bundlePath, len(b.Compartments), len(b.Receptors))
			return nil
		},
	}
	cmd.Flags().StringVarP(&bundlePath, "bundle", "b", "", "path to a JSON configuration bundle")
	cmd.MarkFlagRequired("bundle")
	return cmd
}
