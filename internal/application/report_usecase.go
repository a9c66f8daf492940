package application

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/davarch/release-reporter/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Notice struct {
	MinutesAhead int
	RoundTo      int
	Timezone     string
}

type ReportOptions struct {
	Selection domain.SelectionPolicy
	Fetch     domain.FetchPolicy
	// Notice appends the estimated release time when set.
	Notice *Notice
	Now    func() time.Time
}

type ReportUseCase struct {
	log    *zap.Logger
	builds domain.BuildFetcher
	opts   ReportOptions
}

func NewReportUseCase(l *zap.Logger, builds domain.BuildFetcher, opts ReportOptions) *ReportUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Selection == "" {
		opts.Selection = domain.SelectPrefix
	}
	if opts.Fetch == "" {
		opts.Fetch = domain.FetchLenient
	}
	return &ReportUseCase{log: l, builds: builds, opts: opts}
}

type fetchSlot struct {
	builds []domain.Build
	err    error
}

// Collect fetches every pipeline concurrently and waits for all of them.
// Reports come back in refs order. Under FetchLenient a failed pipeline is
// reported with no builds; under FetchStrict all failures are returned together.
func (uc *ReportUseCase) Collect(ctx context.Context, refs []domain.PipelineRef) ([]domain.PipelineReport, error) {
	slots := make([]fetchSlot, len(refs))

	// Failures travel through the slots, never through the group, so one
	// failed pipeline cannot cut the others short.
	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			b, err := uc.builds.FetchBuilds(ctx, ref)
			slots[i] = fetchSlot{builds: b, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	reports := make([]domain.PipelineReport, 0, len(refs))
	for i, ref := range refs {
		s := slots[i]
		if s.err != nil {
			if uc.opts.Fetch == domain.FetchStrict {
				errs = multierr.Append(errs, fmt.Errorf("%s@%s: %w", ref.Pipeline, ref.Branch, s.err))
				continue
			}
			uc.log.Warn("fetch failed, pipeline skipped",
				zap.String("pipeline", ref.Pipeline),
				zap.String("branch", ref.Branch),
				zap.Error(s.err),
			)
			s.builds = nil
		}

		uc.log.Debug("builds fetched",
			zap.String("pipeline", ref.Pipeline),
			zap.String("branch", ref.Branch),
			zap.Int("builds", len(s.builds)),
		)
		reports = append(reports, domain.NewPipelineReport(ref.Pipeline, s.builds))
	}

	if errs != nil {
		return nil, errs
	}
	return reports, nil
}

// Body renders the markdown list for already collected reports.
func (uc *ReportUseCase) Body(reports []domain.PipelineReport) string {
	return AssembleReport(reports, uc.opts.Selection)
}

// Render writes the heading, the list and the optional notice.
func (uc *ReportUseCase) Render(w io.Writer, reports []domain.PipelineReport) error {
	now := uc.opts.Now()

	if _, err := fmt.Fprintf(w, "### Releases for %s\n\n", ReleaseDate(now)); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, uc.Body(reports)); err != nil {
		return err
	}

	if n := uc.opts.Notice; n != nil {
		if _, err := fmt.Fprintln(w, ReleaseNotice(now, n.MinutesAhead, n.RoundTo, n.Timezone)); err != nil {
			return err
		}
	}

	return nil
}

func (uc *ReportUseCase) Run(ctx context.Context, refs []domain.PipelineRef, w io.Writer) error {
	reports, err := uc.Collect(ctx, refs)
	if err != nil {
		return err
	}
	return uc.Render(w, reports)
}
