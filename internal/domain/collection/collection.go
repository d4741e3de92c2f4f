package collection

import (
	"fmt"
	"regexp"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Collection is one region's independently indexed partition (immutable value object).
type Collection struct {
	name      string
	vectorDim int
}

// ValidateName checks a collection name: ^[a-zA-Z0-9_-]+$, 1-64 chars.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates a Collection.
func New(name string, vectorDim int) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	if vectorDim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive")
	}
	return Collection{name: name, vectorDim: vectorDim}, nil
}

// Name returns the collection name (region code).
func (c Collection) Name() string { return c.name }

// VectorDim returns the embedding dimension of the collection's vector field.
func (c Collection) VectorDim() int { return c.vectorDim }
