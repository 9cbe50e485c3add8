package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "shopflow",
		Short:         "shopflow drives an end-to-end purchase through the commerce services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newExitError(exitConfigError, err)
	})

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newStepsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
