package entities

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version, or the NonSemver escape hatch for
// tokens like "latest" that cannot be given semver precedence. Ordering
// between two NonSemver values, or between a Version and a NonSemver value,
// is undefined; callers must check IsSemver before comparing.
type Version struct {
	raw string
	sv  *semver.Version
}

// ParseVersion parses a version string such as "5.1.2", "5.1.2-beta1", or
// "5.1.2+meta". It never returns an error: tokens that are not semver-ish
// produce a NonSemver Version, which the analyzer reports as a finding
// rather than rejecting outright.
func ParseVersion(raw string) Version {
	sv, err := semver.NewVersion(raw)
	if err != nil {
		return Version{raw: raw}
	}
	return Version{raw: raw, sv: sv}
}

// IsSemver reports whether the version parsed as a semantic version.
func (v Version) IsSemver() bool { return v.sv != nil }

// String returns the original, unnormalized input string.
func (v Version) String() string { return v.raw }

// Major, Minor, and Patch return the respective segments. Calling these on a
// NonSemver value returns zero.
func (v Version) Major() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Major()
}

func (v Version) Minor() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Minor()
}

func (v Version) Patch() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Patch()
}

// Prerelease returns the pre-release component, e.g. "beta1" in "5.1.2-beta1".
func (v Version) Prerelease() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.Prerelease()
}

// IsPrerelease reports whether the version carries a non-empty pre-release
// component.
func (v Version) IsPrerelease() bool { return v.Prerelease() != "" }

// Compare orders two semver Versions following semver precedence (build
// metadata ignored). Both values must satisfy IsSemver(); callers that
// cannot guarantee this should use CompareSafe.
func (v Version) Compare(other Version) int {
	return v.sv.Compare(other.sv)
}

// CompareSafe orders two Versions, treating NonSemver values as always
// greater than any semver value (so they sort to the end and are visibly
// anomalous) and equal to each other.
func (v Version) CompareSafe(other Version) int {
	switch {
	case v.IsSemver() && other.IsSemver():
		return v.Compare(other)
	case v.IsSemver():
		return -1
	case other.IsSemver():
		return 1
	default:
		return 0
	}
}

// NextMinor returns the version with patch reset to zero and minor
// incremented, e.g. 5.1.2 -> 5.2.0. Valid only for semver Versions.
func (v Version) NextMinor() Version {
	if v.sv == nil {
		return v
	}
	next := fmt.Sprintf("%d.%d.0", v.sv.Major(), v.sv.Minor()+1)
	return ParseVersion(next)
}

// NextMajor returns the version with minor and patch reset to zero and major
// incremented, e.g. 5.1.2 -> 6.0.0. Valid only for semver Versions.
func (v Version) NextMajor() Version {
	if v.sv == nil {
		return v
	}
	next := fmt.Sprintf("%d.0.0", v.sv.Major()+1)
	return ParseVersion(next)
}

// IsZero reports whether the version is exactly 0.0.0 with no pre-release or
// build metadata — the sentinel the analyzer checks for "broad-constraint".
func (v Version) IsZero() bool {
	return v.sv != nil && v.sv.Major() == 0 && v.sv.Minor() == 0 && v.sv.Patch() == 0 && v.Prerelease() == ""
}
