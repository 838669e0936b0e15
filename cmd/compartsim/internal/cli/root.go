package cli

import (
	"github.com/spf13/cobra"
)

// Execute builds and runs the compartsim root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "compartsim",
		Short:         "Drive a compartmental neuron model from a JSON configuration bundle",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	return root.Execute()
}
