// Package version parses Terraform/OpenTofu version-constraint strings into
// entities.Constraint values and reduces them to the (lower, upper) interval
// the analyzer checks ranges against.
//
// Grounded on other_examples/santosr2-uptool's internal/resolve/semver.go
// (ParseConstraint and its pessimistic/caret builders), adapted from
// Masterminds/semver-backed constraint objects onto MonPhare's own closed
// Predicate/Constraint types so the analyzer can inspect bounds directly
// instead of re-deriving them from a semver.Constraints value.
package version

import (
	"fmt"
	"strings"

	"github.com/monphare/monphare/internal/domain/entities"
)

// ParseError names the one predicate that failed to parse, alongside the
// full raw constraint it came from. The parser never partially accepts a
// constraint: a single bad predicate fails the whole string, and the caller
// emits one unparseable-constraint finding with Raw preserved verbatim.
type ParseError struct {
	Raw       string
	Offending string
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable constraint %q: predicate %q: %s", e.Raw, e.Offending, e.Reason)
}

var operatorPrefixes = []struct {
	prefix string
	op     entities.Operator
}{
	{"==", entities.OpEq},
	{"!=", entities.OpNe},
	{">=", entities.OpGe},
	{"<=", entities.OpLe},
	{"~>", entities.OpPessimistic},
	{">", entities.OpGt},
	{"<", entities.OpLt},
	{"=", entities.OpEq},
}

// Parse splits raw on commas and parses each comma-separated token into a
// Predicate. Whitespace around commas, operators, and values is tolerated.
// An empty or whitespace-only raw string returns a *ParseError, since
// spec.md treats a present-but-empty version attribute as malformed rather
// than absent (absence is represented by a nil *entities.Constraint, never
// by calling Parse with "").
func Parse(raw string) (*entities.Constraint, error) {
	tokens := strings.Split(raw, ",")

	predicates := make([]entities.Predicate, 0, len(tokens))
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			return nil, &ParseError{Raw: raw, Offending: token, Reason: "empty predicate"}
		}

		pred, err := parsePredicate(trimmed)
		if err != nil {
			return nil, &ParseError{Raw: raw, Offending: trimmed, Reason: err.Error()}
		}
		predicates = append(predicates, pred)
	}

	return &entities.Constraint{Raw: raw, Predicates: predicates}, nil
}

// parsePredicate parses one trimmed "<op><value>" or bare "<value>" or "*"
// token into a Predicate.
func parsePredicate(token string) (entities.Predicate, error) {
	if token == "*" {
		return entities.Predicate{Op: entities.OpWildcard}, nil
	}

	for _, candidate := range operatorPrefixes {
		if !strings.HasPrefix(token, candidate.prefix) {
			continue
		}

		valueStr := strings.TrimSpace(strings.TrimPrefix(token, candidate.prefix))
		if valueStr == "" {
			return entities.Predicate{}, fmt.Errorf("operator %q without a value", candidate.prefix)
		}

		value, err := parseValue(valueStr)
		if err != nil {
			return entities.Predicate{}, err
		}

		return entities.Predicate{Op: candidate.op, Value: value}, nil
	}

	// No recognized operator prefix: a bare version string means "=".
	value, err := parseValue(token)
	if err != nil {
		return entities.Predicate{}, err
	}
	return entities.Predicate{Op: entities.OpEq, Value: value}, nil
}

// parseValue rejects values that cannot be parsed as semver at all: a
// version predicate's value must be segmentable into numeric components, even
// if entities.Version tolerates a NonSemver fallback for the ref-level
// version attribute elsewhere. Terraform itself rejects a constraint operand
// like "~> abc", so we do too.
func parseValue(raw string) (entities.Version, error) {
	v := entities.ParseVersion(raw)
	if !v.IsSemver() {
		return entities.Version{}, fmt.Errorf("%q is not a valid version number", raw)
	}
	return v, nil
}
