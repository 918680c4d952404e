// Package store persists rendered figures so the CLI and the figure server
// can hand them out later without re-rendering.
//
// Backends:
//   - memory: in-process storage for tests and one-shot CLI runs
//   - mongo: MongoDB-backed storage for shared deployments
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Figure is one rendered figure with the metadata needed to find it again.
type Figure struct {
	ID         string    `json:"id" bson:"_id"`
	Kind       string    `json:"kind" bson:"kind"` // plot.Kind* constant
	Title      string    `json:"title" bson:"title"`
	Stations   []string  `json:"stations,omitempty" bson:"stations,omitempty"`
	TraceCount int       `json:"trace_count" bson:"trace_count"`
	SVG        []byte    `json:"svg" bson:"svg"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewFigure builds a figure document with a generated ID.
func NewFigure(kind, title string, svg []byte) *Figure {
	return &Figure{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		SVG:       svg,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for figure storage backends.
type Store interface {
	// Get retrieves a figure by ID. Missing figures return a
	// FIGURE_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Figure, error)

	// Put stores or replaces a figure.
	Put(ctx context.Context, fig *Figure) error

	// List returns all stored figures, newest first, without SVG payloads.
	List(ctx context.Context) ([]*Figure, error)

	// Delete removes a figure. Deleting a missing figure is not an error.
	Delete(ctx context.Context, id string) error

	Close(ctx context.Context) error
}
