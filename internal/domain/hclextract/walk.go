package hclextract

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// discoverFiles walks root and returns every ".tf" and ".tofu" file beneath it,
// relative to root, honoring opts.ExcludePatterns and opts.MaxDepth.
// Results are sorted lexicographically, matching the cross-file ordering
// the extractor guarantees.
func discoverFiles(root string, opts Options) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("resolving relative path for %s: %w", path, relErr)
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if opts.MaxDepth > 0 && depth(rel) > opts.MaxDepth {
				return fs.SkipDir
			}
			if matchesAny(opts.ExcludePatterns, rel) {
				return fs.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".tf" && ext != ".tofu" {
			return nil
		}
		if matchesAny(opts.ExcludePatterns, rel) {
			return nil
		}

		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func depth(relPath string) int {
	return strings.Count(filepath.ToSlash(relPath), "/") + 1
}

func matchesAny(patterns []string, relPath string) bool {
	slashed := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}
