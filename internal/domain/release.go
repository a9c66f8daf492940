package domain

import "fmt"

// NeedsRelease reports whether a build still has to go through the manual
// release gate.
func NeedsRelease(b Build) bool {
	return b.State == StateFailed || b.State == StateRunning || b.Blocked
}

// SelectReleaseCandidates returns the leading run of builds that need a
// release, stopping at the first one that does not. Builds must be newest first.
func SelectReleaseCandidates(builds []Build) []Build {
	var out []Build
	for _, b := range builds {
		if !NeedsRelease(b) {
			break
		}
		out = append(out, b)
	}
	return out
}

// FilterReleaseCandidates returns every build that needs a release, wherever
// it appears.
func FilterReleaseCandidates(builds []Build) []Build {
	var out []Build
	for _, b := range builds {
		if NeedsRelease(b) {
			out = append(out, b)
		}
	}
	return out
}

type SelectionPolicy string

const (
	SelectPrefix SelectionPolicy = "prefix"
	SelectAll    SelectionPolicy = "all"
)

func ParseSelectionPolicy(s string) (SelectionPolicy, error) {
	switch SelectionPolicy(s) {
	case "", SelectPrefix:
		return SelectPrefix, nil
	case SelectAll:
		return SelectAll, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q (want prefix or all)", s)
	}
}

func (p SelectionPolicy) Select(builds []Build) []Build {
	if p == SelectAll {
		return FilterReleaseCandidates(builds)
	}
	return SelectReleaseCandidates(builds)
}

// FetchPolicy decides what a failed fetch does to the whole run.
type FetchPolicy string

const (
	// FetchLenient treats a failed pipeline as having no builds.
	FetchLenient FetchPolicy = "lenient"
	// FetchStrict aborts the run when any pipeline fails.
	FetchStrict FetchPolicy = "strict"
)

func ParseFetchPolicy(s string) (FetchPolicy, error) {
	switch FetchPolicy(s) {
	case "", FetchLenient:
		return FetchLenient, nil
	case FetchStrict:
		return FetchStrict, nil
	default:
		return "", fmt.Errorf("unknown fetch policy %q (want lenient or strict)", s)
	}
}
