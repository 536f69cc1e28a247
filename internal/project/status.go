package project

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// State classifies a recorded dependency against the latest release.
type State string

const (
	StateUpToDate State = "up-to-date"
	StateOutdated State = "outdated"
	StateAhead    State = "ahead"
	StateUnknown  State = "unknown"
)

// Status is the outcome of comparing recorded and latest versions.
type Status struct {
	State    State
	Recorded string
	Latest   string
	Reason   string // set when State is StateUnknown
}

// CompareVersions compares two version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b. A leading "v" is tolerated.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// Check compares the record's dependency version with latest.
func (r *Record) Check(latest string) Status {
	st := Status{Recorded: r.Dependency.Version, Latest: latest}

	if r.Dependency.Version == "" {
		st.State = StateUnknown
		st.Reason = "no dependency version recorded"
		return st
	}

	cmp, err := CompareVersions(r.Dependency.Version, latest)
	if err != nil {
		st.State = StateUnknown
		st.Reason = err.Error()
		return st
	}

	switch cmp {
	case -1:
		st.State = StateOutdated
	case 1:
		st.State = StateAhead
	default:
		st.State = StateUpToDate
	}
	return st
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
