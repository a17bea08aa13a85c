// Package shortid provides short job identifier generation.
package shortid

import (
	"fmt"

	"github.com/google/uuid"
)

// Length of generated identifiers. Eight hex characters keeps artifact names
// short while leaving a large enough space that per-job prefixes stay unique
// within a shared download directory.
const Length = 8

// Generator creates short random identifiers derived from UUIDv4s.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns the first eight characters of a random UUID.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid4: %w", err)
	}
	return id.String()[:Length], nil
}
