package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/version"
)

func mustParse(t *testing.T, raw string) entities.Constraint {
	t.Helper()
	c, err := version.Parse(raw)
	require.NoError(t, err)
	return *c
}

func TestBounds(t *testing.T) {
	t.Parallel()

	t.Run("should leave both bounds open for a wildcard", func(t *testing.T) {
		t.Parallel()

		// given
		c := mustParse(t, "*")

		// when
		r := version.Bounds(c)

		// then
		assert.Equal(t, entities.BoundNone, r.Lower.Kind)
		assert.Equal(t, entities.BoundNone, r.Upper.Kind)
	})

	t.Run("should pin both bounds inclusive for equality", func(t *testing.T) {
		t.Parallel()

		// given
		c := mustParse(t, "1.2.3")

		// when
		r := version.Bounds(c)

		// then
		assert.Equal(t, entities.BoundInclusive, r.Lower.Kind)
		assert.Equal(t, "1.2.3", r.Lower.Value.String())
		assert.Equal(t, entities.BoundInclusive, r.Upper.Kind)
	})

	t.Run("should combine >= and < into a half-open interval", func(t *testing.T) {
		t.Parallel()

		// given
		c := mustParse(t, ">= 1.0.0, < 2.0.0")

		// when
		r := version.Bounds(c)

		// then
		assert.Equal(t, entities.BoundInclusive, r.Lower.Kind)
		assert.Equal(t, "1.0.0", r.Lower.Value.String())
		assert.Equal(t, entities.BoundExclusive, r.Upper.Kind)
		assert.Equal(t, "2.0.0", r.Upper.Value.String())
	})

	t.Run("should expand a two-segment pessimistic operator to the next major", func(t *testing.T) {
		t.Parallel()

		// given
		c := mustParse(t, "~> 5.1")

		// when
		r := version.Bounds(c)

		// then
		assert.Equal(t, entities.BoundInclusive, r.Lower.Kind)
		assert.Equal(t, entities.BoundExclusive, r.Upper.Kind)
		assert.Equal(t, uint64(6), r.Upper.Value.Major())
		assert.Equal(t, uint64(0), r.Upper.Value.Minor())
	})

	t.Run("should expand a three-segment pessimistic operator to the next minor", func(t *testing.T) {
		t.Parallel()

		// given
		c := mustParse(t, "~> 5.1.2")

		// when
		r := version.Bounds(c)

		// then
		assert.Equal(t, uint64(5), r.Upper.Value.Major())
		assert.Equal(t, uint64(2), r.Upper.Value.Minor())
	})

	t.Run("should tighten the lower bound across multiple >= predicates", func(t *testing.T) {
		t.Parallel()

		// given
		c := mustParse(t, ">= 1.0.0, >= 2.0.0")

		// when
		r := version.Bounds(c)

		// then
		assert.Equal(t, "2.0.0", r.Lower.Value.String())
	})
}

func TestAdmits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		constraint string
		candidate  string
		expected   bool
	}{
		{name: "should admit a version inside a half-open range", constraint: ">= 1.0.0, < 2.0.0", candidate: "1.5.0", expected: true},
		{name: "should reject a version at the exclusive upper bound", constraint: ">= 1.0.0, < 2.0.0", candidate: "2.0.0", expected: false},
		{name: "should admit a version at the inclusive lower bound", constraint: ">= 1.0.0, < 2.0.0", candidate: "1.0.0", expected: true},
		{name: "should reject a version below the lower bound", constraint: ">= 1.0.0", candidate: "0.9.0", expected: false},
		{name: "should admit anything under a wildcard", constraint: "*", candidate: "99.0.0", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			r := version.Bounds(mustParse(t, tt.constraint))
			v := entities.ParseVersion(tt.candidate)

			// when
			result := version.Admits(r, v)

			// then
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHasUpperBound(t *testing.T) {
	t.Parallel()

	t.Run("should report false for an unbounded range", func(t *testing.T) {
		t.Parallel()

		// given
		r := version.Bounds(mustParse(t, ">= 1.0.0"))

		// when / then
		assert.False(t, version.HasUpperBound(r))
	})

	t.Run("should report true once an upper bound is present", func(t *testing.T) {
		t.Parallel()

		// given
		r := version.Bounds(mustParse(t, "~> 1.0"))

		// when / then
		assert.True(t, version.HasUpperBound(r))
	})
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	t.Run("should detect overlapping ranges", func(t *testing.T) {
		t.Parallel()

		// given
		a := version.Bounds(mustParse(t, ">= 1.0.0, < 2.0.0"))
		b := version.Bounds(mustParse(t, ">= 1.5.0, < 3.0.0"))

		// when / then
		assert.True(t, version.Overlaps(a, b))
	})

	t.Run("should detect disjoint ranges sharing an exclusive edge", func(t *testing.T) {
		t.Parallel()

		// given
		a := version.Bounds(mustParse(t, ">= 1.0.0, < 2.0.0"))
		b := version.Bounds(mustParse(t, ">= 2.0.0, < 3.0.0"))

		// when / then
		assert.False(t, version.Overlaps(a, b))
	})

	t.Run("should treat two fully open ranges as overlapping", func(t *testing.T) {
		t.Parallel()

		// given
		a := version.Bounds(mustParse(t, "*"))
		b := version.Bounds(mustParse(t, "*"))

		// when / then
		assert.True(t, version.Overlaps(a, b))
	})
}
