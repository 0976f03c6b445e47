// Package store persists named dependency graphs for the HTTP server. The
// memory backend serves development and tests; the mongo backend serves
// deployments where graphs outlive the process.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hferras/depsolve/pkg/cache"
	"github.com/hferras/depsolve/pkg/graphio"
)

// ErrNotFound is returned when no document exists for the requested ID.
var ErrNotFound = errors.New("graph not found")

// Document is one stored graph. Hash is the content hash of the serialized
// graph and doubles as the cache-key component for query results.
type Document struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Graph     graphio.Graph `json:"graph" bson:"graph"`
	Hash      string        `json:"hash" bson:"hash"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// NewDocument builds a document for g with a fresh UUID and content hash.
func NewDocument(name string, g graphio.Graph) (*Document, error) {
	data, err := graphio.Marshal(g)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Graph:     g,
		Hash:      cache.Hash(data),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Store is the persistence interface. Save upserts by ID and refreshes
// UpdatedAt; Get and Delete report [ErrNotFound] for unknown IDs.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}
