package cli

import (
	"os"

	"github.com/davarch/release-reporter/internal/application"
	"github.com/davarch/release-reporter/internal/domain"
	"github.com/davarch/release-reporter/internal/infrastructure/buildkite_http"
	"github.com/davarch/release-reporter/internal/infrastructure/config"
	"github.com/davarch/release-reporter/internal/infrastructure/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportNotice    bool
	reportStrict    bool
	reportSelection string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the markdown list of builds awaiting release",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()
		defer func() { _ = log.Sync() }()

		cfg := loadValidConfig(log, cmd)
		uc := newReportUseCase(log, cfg)

		if err := uc.Run(cmd.Context(), cfg.Refs(), os.Stdout); err != nil {
			log.Fatal("report", zap.Error(err))
		}
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportNotice, "notice", false, "append the estimated release time")
	reportCmd.Flags().BoolVar(&reportStrict, "strict", false, "abort when any pipeline cannot be fetched")
	reportCmd.Flags().StringVar(&reportSelection, "selection", "", "candidate selection: prefix or all")

	rootCmd.AddCommand(reportCmd)
}

// loadValidConfig applies flag overrides and exits before any network
// activity when the configuration is unusable.
func loadValidConfig(log *zap.Logger, cmd *cobra.Command) config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	if f := cmd.Flags().Lookup("notice"); f != nil && f.Changed {
		cfg.Report.Notice.Enabled = reportNotice
	}
	if f := cmd.Flags().Lookup("strict"); f != nil && f.Changed {
		cfg.Report.FetchPolicy = string(fetchPolicyFlag(reportStrict))
	}
	if f := cmd.Flags().Lookup("selection"); f != nil && f.Changed {
		cfg.Report.Selection = reportSelection
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("config", zap.Error(err))
	}
	return cfg
}

func fetchPolicyFlag(strict bool) domain.FetchPolicy {
	if strict {
		return domain.FetchStrict
	}
	return domain.FetchLenient
}

func newReportUseCase(log *zap.Logger, cfg config.Config) *application.ReportUseCase {
	// Validate has already accepted both names.
	selection, _ := domain.ParseSelectionPolicy(cfg.Report.Selection)
	fetch, _ := domain.ParseFetchPolicy(cfg.Report.FetchPolicy)

	opts := application.ReportOptions{Selection: selection, Fetch: fetch}
	if n := cfg.Report.Notice; n.Enabled {
		opts.Notice = &application.Notice{MinutesAhead: n.MinutesAhead, RoundTo: n.RoundTo, Timezone: n.Timezone}
	}

	bk := buildkite_http.New(cfg.Buildkite.BaseURL, cfg.Buildkite.Organization, cfg.Buildkite.Token, cfg.Buildkite.Timeout)

	log.Debug("report",
		zap.String("version", version),
		zap.Int("pipelines", len(cfg.Refs())),
		zap.String("buildkite", cfg.Buildkite.BaseURL),
		zap.String("organization", cfg.Buildkite.Organization),
		zap.String("selection", string(selection)),
		zap.String("fetch_policy", string(fetch)),
	)

	return application.NewReportUseCase(log, bk, opts)
}
