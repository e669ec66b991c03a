package hclextract

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/monphare/monphare/internal/domain/classifier"
	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/domain/version"
)

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "module", LabelNames: []string{"name"}},
		{Type: "terraform"},
		{Type: "tofu"},
	},
}

var terraformBlockSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "required_version"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "required_providers"},
	},
}

// fileRefs holds everything extracted from a single file, in declaration
// order, before being merged into the repository-wide ExtractResult.
type fileRefs struct {
	Modules   []entities.ModuleRef
	Providers []entities.ProviderRef
	Runtimes  []entities.RuntimeRef
}

// parseStructured runs the primary hcl/v2 parse over one file's content. It
// returns ok=false when the structured parse cannot make sense of the file
// at all, signaling the caller to retry with the regex fallback.
func parseStructured(content []byte, path string) (fileRefs, bool) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() || file == nil || file.Body == nil {
		return fileRefs{}, false
	}

	root, _, diags := file.Body.PartialContent(rootSchema)
	if diags.HasErrors() {
		return fileRefs{}, false
	}

	var refs fileRefs

	for _, block := range root.Blocks {
		switch block.Type {
		case "module":
			if ref, ok := decodeModuleBlock(block); ok {
				refs.Modules = append(refs.Modules, ref)
			}
		case "terraform":
			providers, runtime := decodeRuntimeBlock(block, entities.RuntimeTerraform)
			refs.Providers = append(refs.Providers, providers...)
			if runtime != nil {
				refs.Runtimes = append(refs.Runtimes, *runtime)
			}
		case "tofu":
			providers, runtime := decodeRuntimeBlock(block, entities.RuntimeOpenTofu)
			refs.Providers = append(refs.Providers, providers...)
			if runtime != nil {
				refs.Runtimes = append(refs.Runtimes, *runtime)
			}
		}
	}

	return refs, true
}

func decodeModuleBlock(block *hcl.Block) (entities.ModuleRef, bool) {
	name := ""
	if len(block.Labels) > 0 {
		name = block.Labels[0]
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return entities.ModuleRef{}, false
	}

	sourceAttr, hasSource := attrs["source"]
	if !hasSource {
		return entities.ModuleRef{}, false
	}

	rawSource, ok := attrStringValue(sourceAttr)
	if !ok {
		return entities.ModuleRef{}, false
	}

	ref := entities.ModuleRef{
		Name:      name,
		RawSource: rawSource,
		Source:    classifier.Classify(rawSource),
		Location:  entities.Location{Path: block.DefRange.Filename, Line: block.DefRange.Start.Line},
	}

	if versionAttr, hasVersion := attrs["version"]; hasVersion {
		ref.Constraint = parseConstraintAttr(versionAttr)
	}

	if dependsOnAttr, hasDependsOn := attrs["depends_on"]; hasDependsOn {
		ref.DependsOn = moduleDependsOnNames(dependsOnAttr)
	}

	return ref, true
}

// decodeRuntimeBlock reads a "terraform" or "tofu" block's
// required_providers entries and required_version attribute.
func decodeRuntimeBlock(block *hcl.Block, kind entities.RuntimeKind) ([]entities.ProviderRef, *entities.RuntimeRef) {
	content, _, diags := block.Body.PartialContent(terraformBlockSchema)
	if diags.HasErrors() {
		return nil, nil
	}

	var providers []entities.ProviderRef
	for _, inner := range content.Blocks.OfType("required_providers") {
		providers = append(providers, decodeRequiredProviders(inner)...)
	}

	var runtime *entities.RuntimeRef
	if attr, ok := content.Attributes["required_version"]; ok {
		constraint := parseConstraintAttr(attr)
		runtime = &entities.RuntimeRef{
			Kind:       kind,
			Constraint: constraint,
			Location:   entities.Location{Path: block.DefRange.Filename, Line: block.DefRange.Start.Line},
		}
	}

	return providers, runtime
}

func decodeRequiredProviders(block *hcl.Block) []entities.ProviderRef {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil
	}

	refs := make([]entities.ProviderRef, 0, len(attrs))
	for alias, attr := range attrs {
		val, valDiags := attr.Expr.Value(&hcl.EvalContext{})
		if valDiags.HasErrors() {
			continue
		}

		ref := entities.ProviderRef{
			Alias:    alias,
			Location: entities.Location{Path: block.DefRange.Filename, Line: attr.Range.Start.Line},
		}

		switch {
		case val.Type() == cty.String:
			// Shorthand form: alias = "namespace/name"
			ref.CanonicalSource = val.AsString()
		case val.Type().IsObjectType():
			if val.Type().HasAttribute("source") {
				if sourceVal := val.GetAttr("source"); sourceVal.Type() == cty.String {
					ref.CanonicalSource = sourceVal.AsString()
				}
			}
			if val.Type().HasAttribute("version") {
				if versionVal := val.GetAttr("version"); versionVal.Type() == cty.String {
					ref.Constraint = parseConstraintString(versionVal.AsString())
				}
			}
		default:
			continue
		}

		refs = append(refs, ref)
	}

	return refs
}

func attrStringValue(attr *hcl.Attribute) (string, bool) {
	val, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() || val.Type() != cty.String {
		return "", false
	}
	return val.AsString(), true
}

// moduleDependsOnNames reads a depends_on attribute's list of
// "module.<name>" references without evaluating them as values — they are
// traversal expressions, not literals, so hcl.Attribute.Expr.Value would
// fail against an empty EvalContext. Each element that resolves to a
// two-step "module.<name>" traversal contributes <name>; anything else
// (resource references, indexing) is ignored.
func moduleDependsOnNames(attr *hcl.Attribute) []string {
	exprs, diags := hcl.ExprList(attr.Expr)
	if diags.HasErrors() {
		return nil
	}

	var out []string
	for _, expr := range exprs {
		traversal, travDiags := hcl.AbsTraversalForExpr(expr)
		if travDiags.HasErrors() || len(traversal) < 2 {
			continue
		}

		root, ok := traversal[0].(hcl.TraverseRoot)
		if !ok || root.Name != "module" {
			continue
		}

		if attrStep, ok := traversal[1].(hcl.TraverseAttr); ok {
			out = append(out, attrStep.Name)
		}
	}
	return out
}

// parseConstraintAttr reads a version-ish attribute's literal string value
// and parses it as a Constraint. A non-literal value (interpolation,
// variable reference) cannot be evaluated with an empty EvalContext; it is
// kept as an unparseable Constraint whose Raw is the fixed placeholder
// "<interpolated>" (the expression's source text is not kept), so the
// analyzer can still emit unparseable-constraint.
func parseConstraintAttr(attr *hcl.Attribute) *entities.Constraint {
	raw, ok := attrStringValue(attr)
	if !ok {
		// Not a literal string: an interpolation or variable reference such
		// as "${var.tf_version}". Preserved with an empty predicate list so
		// the analyzer reports unparseable-constraint instead of treating
		// the ref as unconstrained.
		return &entities.Constraint{Raw: "<interpolated>"}
	}
	return parseConstraintString(raw)
}

// parseConstraintString parses raw as a Constraint, preserving the raw
// string with an empty predicate list when parsing fails so that callers can
// distinguish a declared-but-unparseable constraint from no declaration.
func parseConstraintString(raw string) *entities.Constraint {
	c, err := version.Parse(raw)
	if err != nil {
		return &entities.Constraint{Raw: raw}
	}
	return c
}
