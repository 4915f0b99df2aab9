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
		Use:           "flowmeta",
		Short:         "flowmeta reconciles declared workflow metadata with the platform",
		Long:          "flowmeta reads a manifest of connections, pools, variables, roles or DAG states\nand converges the workflow platform to it through its REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newPlanCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
