package domain

import "context"

type BuildFetcher interface {
	FetchBuilds(ctx context.Context, ref PipelineRef) ([]Build, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, body, url string) error
}
