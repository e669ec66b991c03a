package config

import (
	"fmt"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/version"
)

// BuildDeprecationTable converts the YAML deprecation sections into the
// entities.DeprecationTable the analyzer consumes, parsing each rule's Range
// string with internal/domain/version the same way a module's own version
// attribute is parsed.
func BuildDeprecationTable(cfg DeprecationsConfig) (entities.DeprecationTable, error) {
	table := entities.EmptyDeprecationTable()

	for kindName, rules := range cfg.Runtime {
		kind := entities.RuntimeTerraform
		if kindName == "opentofu" {
			kind = entities.RuntimeOpenTofu
		}
		built, err := buildRules(rules)
		if err != nil {
			return table, err
		}
		table.Runtime[kind] = built
	}

	for source, rules := range cfg.Modules {
		built, err := buildRules(rules)
		if err != nil {
			return table, err
		}
		table.Modules[source] = built
	}

	for source, rules := range cfg.Providers {
		built, err := buildRules(rules)
		if err != nil {
			return table, err
		}
		table.Providers[source] = built
	}

	return table, nil
}

func buildRules(rules []DeprecationRuleConfig) ([]entities.DeprecationRule, error) {
	out := make([]entities.DeprecationRule, 0, len(rules))

	for _, rule := range rules {
		built := entities.DeprecationRule{
			Reason:      rule.Reason,
			Replacement: rule.Replacement,
			Severity:    entities.Severity(rule.Severity),
		}

		if len(rule.Refs) > 0 {
			built.MatchKind = entities.MatchGitRef
			built.MatchRefs = rule.Refs
		} else {
			constraint, err := version.Parse(rule.Range)
			if err != nil {
				return nil, fmt.Errorf("deprecation rule range %q: %w", rule.Range, err)
			}
			built.MatchKind = entities.MatchConstraint
			built.MatchRange = version.Bounds(*constraint)
		}

		out = append(out, built)
	}

	return out, nil
}
