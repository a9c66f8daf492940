package application

import (
	"fmt"
	"strings"

	"github.com/davarch/release-reporter/internal/domain"
)

// AssembleReport renders one markdown list entry per pipeline that has
// release candidates. Pipelines without candidates produce no output.
func AssembleReport(reports []domain.PipelineReport, policy domain.SelectionPolicy) string {
	var sb strings.Builder

	for _, r := range reports {
		candidates := policy.Select(r.Builds)
		if len(candidates) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "- `%s` build %s", r.Pipeline, BuildLink(r))

		if len(candidates) == 1 {
			sb.WriteString(", " + domain.FormatNote(candidates[0]) + "\n")
			continue
		}

		sb.WriteString(":\n")
		for _, b := range candidates {
			sb.WriteString("    - " + domain.FormatNote(b) + "\n")
		}
	}

	return sb.String()
}

func BuildLink(r domain.PipelineReport) string {
	return fmt.Sprintf("[%d](%s)", r.Number, r.URL)
}

// CountCandidates returns the number of release candidates across reports.
func CountCandidates(reports []domain.PipelineReport, policy domain.SelectionPolicy) (total int, failed bool) {
	for _, r := range reports {
		for _, b := range policy.Select(r.Builds) {
			total++
			if b.State == domain.StateFailed {
				failed = true
			}
		}
	}
	return total, failed
}
