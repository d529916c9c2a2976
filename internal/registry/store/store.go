package store

import (
	"context"

	"clientregistry/internal/registry/models"
)

// Store is the persistence boundary for client records. Implementations
// assign ids on Create and report missing records with
// sentinel.ErrNotFound and uniqueness violations with sentinel.ErrConflict.
//
// Stores are interface-driven to keep the domain logic testable and to
// allow swapping in-memory and Postgres persistence without rewiring
// business code.
type Store interface {
	// List returns records matching the search term, ordered by id.
	// An empty term returns everything.
	List(ctx context.Context, search string) ([]models.Client, error)
	Get(ctx context.Context, id models.ClientID) (models.Client, error)
	Create(ctx context.Context, draft models.Draft) (models.Client, error)
	Update(ctx context.Context, id models.ClientID, draft models.Draft) (models.Client, error)
	Delete(ctx context.Context, id models.ClientID) error
}
