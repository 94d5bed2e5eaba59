package customer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vyapari/grahak/errors"
)

// MemStore is an in-memory Store with the documented filter semantics.
// It backs tests and lets integrators run the engine without a
// persistence service. Safe for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	recs map[string]Record
	seq  map[string]int // insertion order, for stable enumeration
	next int
	now  func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		recs: make(map[string]Record),
		seq:  make(map[string]int),
		now:  time.Now,
	}
}

// FindAll returns records matching the filter in insertion order.
func (s *MemStore) FindAll(ctx context.Context, filter string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapStore(err, "findAll")
	}

	tokens := strings.Fields(strings.ToLower(filter))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.recs {
		if matchesFilter(rec, tokens) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

// matchesFilter requires every token to hit at least one of the
// substring-searchable fields.
func matchesFilter(rec Record, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	haystacks := []string{
		strings.ToLower(rec.Name),
		strings.ToLower(rec.Nickname),
		strings.ToLower(rec.Landmark),
		strings.ToLower(rec.Notes),
	}
	for _, tok := range tokens {
		hit := false
		for _, h := range haystacks {
			if h != "" && strings.Contains(h, tok) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (s *MemStore) FindByID(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapStore(err, "findByID")
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "findByID")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[id]
	if !ok {
		return nil, errors.NewNotFoundError("customer %s", id)
	}
	out := rec
	return &out, nil
}

func (s *MemStore) Create(ctx context.Context, data Record) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapStore(err, "create")
	}
	if strings.TrimSpace(data.Name) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "create: customer name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	ts := s.now()
	data.CreatedAt = ts
	data.UpdatedAt = ts
	s.recs[data.ID] = data
	s.seq[data.ID] = s.next
	s.next++

	out := data
	return &out, nil
}

func (s *MemStore) Update(ctx context.Context, id string, fields Fields) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapStore(err, "update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return nil, errors.NewNotFoundError("customer %s", id)
	}
	if fields.Name != nil {
		rec.Name = *fields.Name
	}
	if fields.Nickname != nil {
		rec.Nickname = *fields.Nickname
	}
	if fields.Phone != nil {
		rec.Phone = *fields.Phone
	}
	if fields.Landmark != nil {
		rec.Landmark = *fields.Landmark
	}
	if fields.Notes != nil {
		rec.Notes = *fields.Notes
	}
	if fields.Balance != nil {
		rec.Balance = *fields.Balance
	}
	rec.UpdatedAt = s.now()
	s.recs[id] = rec

	out := rec
	return &out, nil
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}
