package application

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/davarch/release-reporter/internal/domain"
	"go.uber.org/zap"
)

// urgencyNotifier is implemented by notifiers that can raise priority.
type urgencyNotifier interface {
	NotifyUrgent(ctx context.Context, title, body, url string, critical bool) error
}

// WatchUseCase re-renders the report and only prints and notifies when the
// list of release candidates changed since the previous run.
type WatchUseCase struct {
	report *ReportUseCase
	note   domain.Notifier
	out    io.Writer

	mu   sync.Mutex
	last *string
}

func NewWatchUseCase(report *ReportUseCase, note domain.Notifier, out io.Writer) *WatchUseCase {
	return &WatchUseCase{report: report, note: note, out: out}
}

func (uc *WatchUseCase) WatchOnce(ctx context.Context, refs []domain.PipelineRef) error {
	reports, err := uc.report.Collect(ctx, refs)
	if err != nil {
		return err
	}

	body := uc.report.Body(reports)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.last != nil && *uc.last == body {
		return nil
	}
	uc.last = &body

	if err := uc.report.Render(uc.out, reports); err != nil {
		return err
	}

	total, failed := CountCandidates(reports, uc.report.opts.Selection)
	title, msg := notificationFor(total, failed)

	if un, ok := uc.note.(urgencyNotifier); ok {
		err = un.NotifyUrgent(ctx, title, msg, "", failed)
	} else {
		err = uc.note.Notify(ctx, title, msg, "")
	}
	if err != nil {
		uc.report.log.Debug("notify failed", zap.String("title", title), zap.Error(err))
	}

	return nil
}

func notificationFor(total int, failed bool) (string, string) {
	switch {
	case total == 0:
		return "✅ Releases: nothing pending", "All pipelines are released"
	case failed:
		return "❌ Releases: failed builds", strconv.Itoa(total) + " build(s) awaiting release"
	default:
		return "🚀 Releases pending", strconv.Itoa(total) + " build(s) awaiting release"
	}
}
