package document

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Record is one indexed unit: a source file reduced to its searchable text.
// Immutable value object; the source path doubles as the document identifier.
type Record struct {
	id         string
	filename   string
	path       string
	text       string
	textLength int
}

// NewRecord validates and creates a Record for the file at sourcePath.
// Text must contain at least one non-whitespace character.
func NewRecord(sourcePath, text string) (Record, error) {
	if sourcePath == "" {
		return Record{}, fmt.Errorf("document path is required")
	}
	if strings.TrimSpace(text) == "" {
		return Record{}, fmt.Errorf("document text is empty")
	}

	slashed := filepath.ToSlash(sourcePath)
	return Record{
		id:         sourcePath,
		filename:   path.Base(slashed),
		path:       sourcePath,
		text:       text,
		textLength: utf8.RuneCountInString(text),
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id, filename, sourcePath, text string, textLength int) Record {
	return Record{
		id:         id,
		filename:   filename,
		path:       sourcePath,
		text:       text,
		textLength: textLength,
	}
}

// ID returns the document identifier.
func (r Record) ID() string { return r.id }

// Filename returns the last path segment.
func (r Record) Filename() string { return r.filename }

// Path returns the full source path.
func (r Record) Path() string { return r.path }

// Text returns the indexed body.
func (r Record) Text() string { return r.text }

// TextLength returns the length of Text in characters.
func (r Record) TextLength() int { return r.textLength }
