package cli

import (
	"fmt"
	"strings"

	"github.com/davarch/release-reporter/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:               "enable <pipeline>",
	Short:             "Include a pipeline in the report",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePipelines,
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggle(args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
}

// toggle flips the enabled flag of every config entry named name. Only the
// YAML file is touched; environment overrides do not apply here.
func toggle(name string, enabled bool) error {
	verb := "enabled"
	if !enabled {
		verb = "disabled"
	}

	changed, err := config.SetPipelineEnabled(cfgPath, name, enabled)
	if err != nil {
		return err
	}

	if !changed {
		fmt.Printf("no change (pipeline %q already %s or not found)\n", name, verb)
		return nil
	}

	fmt.Printf("%s: %s\n", verb, name)
	return nil
}

func completePipelines(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	out := make([]string, 0, len(cfg.Report.Pipelines))
	for _, p := range cfg.Report.Pipelines {
		if p.Name != "" && strings.HasPrefix(p.Name, toComplete) {
			out = append(out, p.Name)
		}
	}

	return out, cobra.ShellCompDirectiveNoFileComp
}
