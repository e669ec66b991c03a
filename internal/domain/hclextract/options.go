package hclextract

// Options controls how Extract walks a repository's working tree.
type Options struct {
	// ExcludePatterns are doublestar glob patterns (e.g. "**/examples/**",
	// "vendor/**") matched against each file's path relative to the
	// repository root. A matching file is skipped.
	ExcludePatterns []string

	// MaxDepth caps how many directory levels below the root are visited.
	// Zero means unlimited.
	MaxDepth int

	// ContinueOnError keeps walking past a file that neither parser could
	// make sense of, recording a ParseIssue instead of aborting. When
	// false, the first such file aborts the whole extraction.
	ContinueOnError bool
}
