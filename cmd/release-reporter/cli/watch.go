package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/davarch/release-reporter/internal/application"
	"github.com/davarch/release-reporter/internal/infrastructure/config"
	"github.com/davarch/release-reporter/internal/infrastructure/logging"
	"github.com/davarch/release-reporter/internal/infrastructure/notify_libnotify"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the report periodically and notify when it changes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()
		defer func() { _ = log.Sync() }()

		cfg := loadValidConfig(log, cmd)

		uc := application.NewWatchUseCase(newReportUseCase(log, cfg), notify_libnotify.NewSoft(), os.Stdout)
		refs := cfg.Refs()

		sched := application.NewScheduler(log, uc, refs, cfg.Watch.Interval, cfg.Watch.PauseFile)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		watchAndReload(ctx, cfgPath, log, sched)

		log.Info("start",
			zap.String("version", version),
			zap.Int("pipelines", len(refs)),
			zap.Duration("every", cfg.Watch.Interval),
			zap.String("buildkite", cfg.Buildkite.BaseURL),
			zap.String("pause_file", cfg.Watch.PauseFile),
		)
		sched.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&reportNotice, "notice", false, "append the estimated release time")
	watchCmd.Flags().BoolVar(&reportStrict, "strict", false, "skip a cycle when any pipeline cannot be fetched")
	watchCmd.Flags().StringVar(&reportSelection, "selection", "", "candidate selection: prefix or all")

	rootCmd.AddCommand(watchCmd)
}

// watchAndReload swaps the scheduler's pipeline list when the config file
// changes and runs one cycle right away. Writes are debounced.
func watchAndReload(ctx context.Context, cfgPath string, log *zap.Logger, sched *application.Scheduler) {
	if cfgPath == "" {
		return
	}

	dir := filepath.Dir(cfgPath)
	base := filepath.Base(cfgPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("fsnotify init failed", zap.Error(err))
		return
	}

	if err := w.Add(dir); err != nil {
		log.Warn("fsnotify add dir failed", zap.String("dir", dir), zap.Error(err))
		_ = w.Close()
		return
	}

	fire := func() {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		refs := cfg.Refs()
		if len(refs) == 0 {
			log.Warn("config reload: no enabled pipelines")
		}
		sched.UpdateRefs(refs)
		sched.Tick(ctx)
	}

	go func() {
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				if filepath.Base(ev.Name) != base {
					continue
				}

				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					if timer == nil {
						timer = time.AfterFunc(300*time.Millisecond, fire)
					} else {
						timer.Reset(300 * time.Millisecond)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify error", zap.Error(err))
			}
		}
	}()
}
