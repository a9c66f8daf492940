package domain

type BuildState string

const (
	StateFailed    BuildState = "failed"
	StateRunning   BuildState = "running"
	StatePassed    BuildState = "passed"
	StateBlocked   BuildState = "blocked"
	StateCanceled  BuildState = "canceled"
	StateScheduled BuildState = "scheduled"
	StateSkipped   BuildState = "skipped"
)

type Author struct {
	Name string
}

// Build is one CI run as reported by Buildkite. Number is 0 and WebURL is
// empty when the provider omits them.
type Build struct {
	Message string
	State   BuildState
	Blocked bool
	Author  *Author
	Number  int
	WebURL  string
}

type PipelineRef struct {
	Pipeline string
	Branch   string
}

// PipelineReport holds the builds of one pipeline, newest first, plus the
// number and link of the most recent one.
type PipelineReport struct {
	Pipeline string
	Builds   []Build
	Number   int
	URL      string
}

func NewPipelineReport(pipeline string, builds []Build) PipelineReport {
	r := PipelineReport{Pipeline: pipeline, Builds: builds}
	if len(builds) > 0 {
		r.Number = builds[0].Number
		r.URL = builds[0].WebURL
	}
	return r
}
