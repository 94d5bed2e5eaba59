// Package customer defines the customer data model and the store
// interface the resolution engine consumes. The persistent store itself
// lives outside this engine; the engine only queries it and annotates
// match scores on read-only projections.
package customer

import (
	"context"
	"time"
)

// Record is a customer row as the ledger stores it.
type Record struct {
	ID        string
	Name      string
	Nickname  string
	Phone     string
	Landmark  string
	Notes     string
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchResult is the read-only projection returned by searches. The
// engine never mutates the underlying record; MatchScore is the only
// field it writes.
type SearchResult struct {
	ID         string
	Name       string
	Nickname   string
	Phone      string
	Landmark   string
	Balance    float64
	MatchScore float64
}

// Project returns the search projection of a record.
func (r Record) Project() SearchResult {
	return SearchResult{
		ID:       r.ID,
		Name:     r.Name,
		Nickname: r.Nickname,
		Phone:    r.Phone,
		Landmark: r.Landmark,
		Balance:  r.Balance,
	}
}

// Fields carries a partial update; nil pointers leave the column as-is.
type Fields struct {
	Name     *string
	Nickname *string
	Phone    *string
	Landmark *string
	Notes    *string
	Balance  *float64
}

// Store is the external customer store collaborator.
//
// FindAll uses case-insensitive substring semantics: the filter is
// tokenized on whitespace, each token may match any of name, nickname,
// landmark or notes (OR across fields), and all tokens must match (AND
// across tokens). An empty filter returns every record.
//
// FindByID returns errors.ErrNotFound (wrapped) for an unknown ID.
// Store outages surface as errors distinct from not-found; callers must
// never fold them into an empty result.
type Store interface {
	FindAll(ctx context.Context, filter string) ([]Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	Create(ctx context.Context, data Record) (*Record, error)
	Update(ctx context.Context, id string, fields Fields) (*Record, error)
}
