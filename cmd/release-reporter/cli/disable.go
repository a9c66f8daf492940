package cli

import (
	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:               "disable <pipeline>",
	Short:             "Leave a pipeline out of the report",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePipelines,
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(disableCmd)
}
