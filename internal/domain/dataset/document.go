package dataset

import (
	"fmt"
	"strings"
)

// Document is an indexable dataset: metadata plus the description text that
// was embedded, plus the embedding itself (immutable value object).
type Document struct {
	meta    Metadata
	content string
	vector  []float32
}

// NewDocument validates and creates a Document ready for indexing.
func NewDocument(meta Metadata, content string, vector []float32) (Document, error) {
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(vector) == 0 {
		return Document{}, fmt.Errorf("vector is required")
	}
	return Document{meta: meta, content: content, vector: vector}, nil
}

// Metadata returns the dataset metadata.
func (d *Document) Metadata() Metadata { return d.meta }

// Content returns the text that was embedded.
func (d *Document) Content() string { return d.content }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }
