package version

import (
	"strings"

	"github.com/monphare/monphare/internal/domain/entities"
)

// Bounds reduces a Constraint's predicate list to the single (lower, upper)
// interval the analyzer tests ranges against, per spec.md §4.2's range
// algebra: each predicate tightens one side of the interval; conjunction
// picks the tightest lower bound and the tightest upper bound seen.
//
// A wildcard-only constraint, or one with no bound-producing predicates,
// returns a fully open Range (both bounds BoundNone).
func Bounds(c entities.Constraint) entities.Range {
	var r entities.Range

	for _, pred := range c.Predicates {
		switch pred.Op {
		case entities.OpWildcard:
			// admits everything; contributes no bound.
		case entities.OpEq:
			tightenLower(&r, entities.Bound{Kind: entities.BoundInclusive, Value: pred.Value})
			tightenUpper(&r, entities.Bound{Kind: entities.BoundInclusive, Value: pred.Value})
		case entities.OpGe:
			tightenLower(&r, entities.Bound{Kind: entities.BoundInclusive, Value: pred.Value})
		case entities.OpGt:
			tightenLower(&r, entities.Bound{Kind: entities.BoundExclusive, Value: pred.Value})
		case entities.OpLe:
			tightenUpper(&r, entities.Bound{Kind: entities.BoundInclusive, Value: pred.Value})
		case entities.OpLt:
			tightenUpper(&r, entities.Bound{Kind: entities.BoundExclusive, Value: pred.Value})
		case entities.OpNe:
			// a point exclusion does not narrow an interval; the analyzer's
			// range checks treat != as advisory only and ignore it here.
		case entities.OpPessimistic:
			lower, upper := pessimisticRange(pred.Value)
			tightenLower(&r, lower)
			tightenUpper(&r, upper)
		}
	}

	return r
}

// pessimisticRange expands a "~> v" predicate into its lower/upper bounds.
// Two segments (major.minor) lock the major version, allowing minor and
// patch to float up to the next major release. Three or more segments
// (major.minor.patch[...]) lock major.minor, allowing only patch to float.
func pessimisticRange(v entities.Version) (entities.Bound, entities.Bound) {
	lower := entities.Bound{Kind: entities.BoundInclusive, Value: v}

	segments := strings.Count(v.String(), ".") + 1

	var upper entities.Version
	if segments >= 3 {
		upper = v.NextMinor()
	} else {
		upper = v.NextMajor()
	}

	return lower, entities.Bound{Kind: entities.BoundExclusive, Value: upper}
}

// tightenLower replaces r.Lower with candidate if candidate admits fewer
// versions from below, i.e. candidate's value is greater, or equal but
// stricter (exclusive beats inclusive at the same value).
func tightenLower(r *entities.Range, candidate entities.Bound) {
	if r.Lower.Kind == entities.BoundNone {
		r.Lower = candidate
		return
	}

	cmp := candidate.Value.CompareSafe(r.Lower.Value)
	switch {
	case cmp > 0:
		r.Lower = candidate
	case cmp == 0 && candidate.Kind == entities.BoundExclusive && r.Lower.Kind == entities.BoundInclusive:
		r.Lower = candidate
	}
}

// tightenUpper replaces r.Upper with candidate if candidate admits fewer
// versions from above, i.e. candidate's value is smaller, or equal but
// stricter (exclusive beats inclusive at the same value).
func tightenUpper(r *entities.Range, candidate entities.Bound) {
	if r.Upper.Kind == entities.BoundNone {
		r.Upper = candidate
		return
	}

	cmp := candidate.Value.CompareSafe(r.Upper.Value)
	switch {
	case cmp < 0:
		r.Upper = candidate
	case cmp == 0 && candidate.Kind == entities.BoundExclusive && r.Upper.Kind == entities.BoundInclusive:
		r.Upper = candidate
	}
}

// Admits reports whether v falls within r. A BoundNone side admits anything
// on that side.
func Admits(r entities.Range, v entities.Version) bool {
	switch r.Lower.Kind {
	case entities.BoundInclusive:
		if v.CompareSafe(r.Lower.Value) < 0 {
			return false
		}
	case entities.BoundExclusive:
		if v.CompareSafe(r.Lower.Value) <= 0 {
			return false
		}
	}

	switch r.Upper.Kind {
	case entities.BoundInclusive:
		if v.CompareSafe(r.Upper.Value) > 0 {
			return false
		}
	case entities.BoundExclusive:
		if v.CompareSafe(r.Upper.Value) >= 0 {
			return false
		}
	}

	return true
}

// HasUpperBound reports whether r constrains versions from above at all.
func HasUpperBound(r entities.Range) bool {
	return r.Upper.Kind != entities.BoundNone
}

// Overlaps reports whether two ranges admit at least one common version.
// The deprecation matcher does not use it; it tests only a ref's lower
// bound with Admits.
func Overlaps(a, b entities.Range) bool {
	if a.Upper.Kind != entities.BoundNone && b.Lower.Kind != entities.BoundNone {
		cmp := a.Upper.Value.CompareSafe(b.Lower.Value)
		if cmp < 0 || (cmp == 0 && (a.Upper.Kind == entities.BoundExclusive || b.Lower.Kind == entities.BoundExclusive)) {
			return false
		}
	}

	if b.Upper.Kind != entities.BoundNone && a.Lower.Kind != entities.BoundNone {
		cmp := b.Upper.Value.CompareSafe(a.Lower.Value)
		if cmp < 0 || (cmp == 0 && (b.Upper.Kind == entities.BoundExclusive || a.Lower.Kind == entities.BoundExclusive)) {
			return false
		}
	}

	return true
}
