package entities

import "fmt"

// SourceKind is the closed tag of a ModuleSource variant.
type SourceKind int

const (
	SourceRegistry SourceKind = iota
	SourceGit
	SourceLocal
	SourceS3
	SourceUnknown
)

func (k SourceKind) String() string {
	switch k {
	case SourceRegistry:
		return "registry"
	case SourceGit:
		return "git"
	case SourceLocal:
		return "local"
	case SourceS3:
		return "s3"
	case SourceUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ModuleSource is the classifier's tagged-variant output. Exactly one of the
// field groups below is populated, selected by Kind. Implementers should
// prefer the Canonical() method over re-deriving an identity key from the
// raw fields, so every caller agrees on grouping.
type ModuleSource struct {
	Kind SourceKind

	// Registry fields.
	Namespace string
	Name      string
	Provider  string

	// Git fields.
	GitURL string
	GitRef string

	// Local fields.
	LocalPath string

	// S3 fields.
	S3URL string

	// Unknown fields.
	Raw string
}

// Canonical returns the identity key used to group refs pointing at the same
// underlying module or provider across files and repositories.
func (m ModuleSource) Canonical() string {
	switch m.Kind {
	case SourceRegistry:
		return fmt.Sprintf("%s/%s/%s", m.Namespace, m.Name, m.Provider)
	case SourceGit:
		return m.GitURL
	case SourceLocal:
		return m.LocalPath
	case SourceS3:
		return m.S3URL
	case SourceUnknown:
		return m.Raw
	default:
		return m.Raw
	}
}

// RegistryTriplet returns the "namespace/name/provider" form, valid only
// when Kind is SourceRegistry.
func (m ModuleSource) RegistryTriplet() string {
	return fmt.Sprintf("%s/%s/%s", m.Namespace, m.Name, m.Provider)
}
