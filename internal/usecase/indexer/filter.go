package indexer

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects files by glob patterns on their path relative to the
// collection directory. ** matches across directories.
type Filter struct {
	Include []string
	Exclude []string
}

// Match reports whether relPath passes the filter.
// Empty Include admits everything; Exclude wins over Include.
func (f Filter) Match(relPath string) bool {
	if len(f.Include) > 0 && !matchesAny(relPath, f.Include) {
		return false
	}
	return !matchesAny(relPath, f.Exclude)
}

// matchesAny checks relPath and its base name against every pattern.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// Validate reports the first malformed pattern.
func (f Filter) Validate() error {
	for _, p := range append(append([]string{}, f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return &PatternError{Pattern: p}
		}
	}
	return nil
}

// PatternError reports an invalid glob pattern.
type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid glob pattern: " + e.Pattern
}
