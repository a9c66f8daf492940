package application

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davarch/release-reporter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var refs = []domain.PipelineRef{
	{Pipeline: "beamer", Branch: "main"},
	{Pipeline: "mr-yum", Branch: "master"},
	{Pipeline: "crew-bff", Branch: "main"},
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 5, 10, 7, 0, 0, time.UTC)
}

func newFetcher() *domain.MockFetcher {
	return &domain.MockFetcher{
		Builds: map[string][]domain.Build{
			"beamer": {
				{Message: "Add banner", State: domain.StateRunning, Author: &domain.Author{Name: "Bob"}, Number: 42, WebURL: "https://x/42"},
				{Message: "Old", State: domain.StatePassed, Number: 41},
			},
			"crew-bff": {
				{Message: "Green", State: domain.StatePassed, Number: 5},
			},
		},
		Errs: map[string]error{
			"mr-yum": errors.New("buildkite mr-yum: 500 Internal Server Error"),
		},
	}
}

func TestCollect_LenientSkipsFailedPipeline(t *testing.T) {
	f := newFetcher()
	uc := NewReportUseCase(zap.NewNop(), f, ReportOptions{Now: fixedNow})

	reports, err := uc.Collect(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, 3, f.Called)
	assert.Equal(t, "beamer", reports[0].Pipeline)
	assert.Equal(t, 42, reports[0].Number)
	assert.Equal(t, "mr-yum", reports[1].Pipeline)
	assert.Empty(t, reports[1].Builds)
	assert.Equal(t, 0, reports[1].Number)
	assert.Equal(t, "crew-bff", reports[2].Pipeline)
}

func TestCollect_StrictAbortsAfterAllFetches(t *testing.T) {
	f := newFetcher()
	f.Errs["crew-bff"] = errors.New("dial tcp: refused")
	uc := NewReportUseCase(zap.NewNop(), f, ReportOptions{Fetch: domain.FetchStrict, Now: fixedNow})

	reports, err := uc.Collect(context.Background(), refs)
	require.Error(t, err)
	assert.Nil(t, reports)
	assert.Equal(t, 3, f.Called)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "mr-yum@master")
}

func TestCollect_StrictAllGreen(t *testing.T) {
	f := newFetcher()
	f.Errs = nil
	uc := NewReportUseCase(zap.NewNop(), f, ReportOptions{Fetch: domain.FetchStrict, Now: fixedNow})

	reports, err := uc.Collect(context.Background(), refs)
	require.NoError(t, err)
	assert.Len(t, reports, 3)
}

func TestRun_WritesHeadingReportAndNotice(t *testing.T) {
	uc := NewReportUseCase(zap.NewNop(), newFetcher(), ReportOptions{
		Now:    fixedNow,
		Notice: &Notice{MinutesAhead: 30, RoundTo: 15, Timezone: "AEST/AEDT"},
	})

	var out bytes.Buffer
	require.NoError(t, uc.Run(context.Background(), refs, &out))

	want := "### Releases for Tuesday, March 5, 2024\n" +
		"\n" +
		"- `beamer` build [42](https://x/42), Add banner *by Bob*\n" +
		"\n" +
		"Will :big-red-button: in approx. 30mins at 10:30 AEST/AEDT if no objections.\n"
	assert.Equal(t, want, out.String())
}

func TestRun_WithoutNotice(t *testing.T) {
	uc := NewReportUseCase(zap.NewNop(), newFetcher(), ReportOptions{Now: fixedNow})

	var out bytes.Buffer
	require.NoError(t, uc.Run(context.Background(), refs, &out))
	assert.NotContains(t, out.String(), "big-red-button")
}

func TestRun_StrictFailureWritesNothing(t *testing.T) {
	uc := NewReportUseCase(zap.NewNop(), newFetcher(), ReportOptions{Fetch: domain.FetchStrict, Now: fixedNow})

	var out bytes.Buffer
	assert.Error(t, uc.Run(context.Background(), refs, &out))
	assert.Empty(t, out.String())
}
