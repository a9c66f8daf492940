package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davarch/release-reporter/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	listOnlyEnabled  bool
	listOnlyDisabled bool
	listJSON         bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipelines from config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		items := filterPipelines(cfg.Report.Pipelines, listOnlyEnabled, listOnlyDisabled)

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "PIPELINE\tBRANCH\tENABLED")
		for _, p := range items {
			branch := p.Branch
			if branch == "" {
				branch = "main"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%t\n", p.Name, branch, p.Enabled)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listOnlyEnabled, "enabled", false, "show only enabled pipelines")
	listCmd.Flags().BoolVar(&listOnlyDisabled, "disabled", false, "show only disabled pipelines")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	listCmd.MarkFlagsMutuallyExclusive("enabled", "disabled")

	rootCmd.AddCommand(listCmd)
}

func filterPipelines(ps []config.Pipeline, onlyEnabled, onlyDisabled bool) []config.Pipeline {
	items := make([]config.Pipeline, 0, len(ps))
	for _, p := range ps {
		if onlyEnabled && !p.Enabled {
			continue
		}
		if onlyDisabled && p.Enabled {
			continue
		}
		items = append(items, p)
	}
	return items
}
