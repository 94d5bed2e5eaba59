package convo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyapari/grahak/customer"
	"github.com/vyapari/grahak/errors"
	"github.com/vyapari/grahak/match"
	"github.com/vyapari/grahak/nickname"
)

// countingStore wraps a MemStore and counts collaborator calls.
type countingStore struct {
	*customer.MemStore
	findAlls  int
	findByIDs int
	creates   int
}

func (s *countingStore) FindAll(ctx context.Context, filter string) ([]customer.Record, error) {
	s.findAlls++
	return s.MemStore.FindAll(ctx, filter)
}

func (s *countingStore) FindByID(ctx context.Context, id string) (*customer.Record, error) {
	s.findByIDs++
	return s.MemStore.FindByID(ctx, id)
}

func (s *countingStore) Create(ctx context.Context, data customer.Record) (*customer.Record, error) {
	s.creates++
	return s.MemStore.Create(ctx, data)
}

// failingStore simulates a store outage on every call.
type failingStore struct{}

func (failingStore) FindAll(context.Context, string) ([]customer.Record, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) FindByID(context.Context, string) (*customer.Record, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Create(context.Context, customer.Record) (*customer.Record, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Update(context.Context, string, customer.Fields) (*customer.Record, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	store    *countingStore
	memory   *Memory
	resolver *Resolver
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &countingStore{MemStore: customer.NewMemStore()}
	ctx := context.Background()
	for _, rec := range []customer.Record{
		{Name: "Rahul Sharma", Nickname: "Raju", Landmark: "ATM ke paas", Phone: "9876543210"},
		{Name: "Amit Patel", Landmark: "Station Road"},
		{Name: "Amit Sharma", Landmark: "Mandir ke samne"},
		{Name: "Pooja Verma"},
	} {
		_, err := store.MemStore.Create(ctx, rec)
		require.NoError(t, err)
	}

	clk := newFakeClock()
	memory := NewMemory(WithTTL(5*time.Minute), WithClock(clk.Now))
	t.Cleanup(memory.Close)

	resolver := NewResolver(store, match.NewEngine(nickname.Default()), memory)
	return &fixture{store: store, memory: memory, resolver: resolver, clock: clk}
}

func TestSearchWithContextColdThenWarm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.resolver.SearchWithContext(ctx, "Rahul", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, SourceStore, out.Source)
	require.NotEmpty(t, out.Customers)
	assert.Equal(t, "Rahul Sharma", out.Customers[0].Name)
	storeCalls := f.store.findAlls

	// Follow-up turn resolves against the cached candidates: the
	// nickname scores 0.9 against the cached Rahul Sharma.
	out, err = f.resolver.SearchWithContext(ctx, "Raju", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, out.Source)
	require.NotEmpty(t, out.Customers)
	assert.Equal(t, "Rahul Sharma", out.Customers[0].Name)
	assert.Equal(t, storeCalls, f.store.findAlls, "warm path must not touch the store")
}

func TestSearchWithContextExpiryFallsThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.SearchWithContext(ctx, "Rahul", "conv-1")
	require.NoError(t, err)
	before := f.store.findAlls

	f.clock.Advance(6 * time.Minute)

	out, err := f.resolver.SearchWithContext(ctx, "Rahul", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, SourceStore, out.Source, "expired cache is treated as absent")
	assert.Greater(t, f.store.findAlls, before)
}

func TestSearchWithContextNoMatchIsEmptyNotError(t *testing.T) {
	f := newFixture(t)

	out, err := f.resolver.SearchWithContext(context.Background(), "Zubin", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, SourceStore, out.Source)
	assert.Empty(t, out.Customers)
}

func TestSearchWithContextValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.resolver.SearchWithContext(ctx, "", "conv-1")
	assert.True(t, errors.Is(err, errors.ErrEmptyQuery))

	_, err = f.resolver.SearchWithContext(ctx, "Rahul", "")
	assert.True(t, errors.Is(err, errors.ErrInvalidID))
}

func TestSearchWithContextStoreOutagePropagates(t *testing.T) {
	memory := NewMemory()
	t.Cleanup(memory.Close)
	r := NewResolver(failingStore{}, match.NewEngine(nickname.Default()), memory)

	out, err := r.SearchWithContext(context.Background(), "Rahul", "conv-1")
	require.Error(t, err)
	assert.Nil(t, out, "an outage must never masquerade as an empty result")
	assert.True(t, errors.IsStoreUnavailable(err))
}

func TestResolveAmbiguityExactMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.resolver.ResolveAmbiguity(ctx, "Rahul Sharma", "conv-1")
	require.NoError(t, err)
	require.NotNil(t, res.Exact)
	assert.False(t, res.NeedsConfirmation)
	assert.Equal(t, "Rahul Sharma", res.Exact.Name)

	// the exact match becomes the active customer, served from cache
	before := f.store.findByIDs
	active, err := f.resolver.GetActiveCustomer(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, res.Exact.ID, active.ID)
	assert.Equal(t, before, f.store.findByIDs, "active customer comes from the conversation cache")
}

func TestResolveAmbiguityNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.ResolveAmbiguity(context.Background(), "Amit", "conv-1")
	require.NoError(t, err)
	assert.Nil(t, res.Exact)
	assert.True(t, res.NeedsConfirmation)

	var names []string
	for _, c := range res.Candidates {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Amit Patel", "Amit Sharma"}, names)
}

func TestResolveAmbiguitySingleHighSimilarity(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.ResolveAmbiguity(context.Background(), "Pooja", "conv-1")
	require.NoError(t, err)
	require.NotNil(t, res.Exact)
	assert.False(t, res.NeedsConfirmation)
	assert.Equal(t, "Pooja Verma", res.Exact.Name)
}

func TestResolveAmbiguitySingleLowSimilarity(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.ResolveAmbiguity(context.Background(), "Poonam", "conv-1")
	require.NoError(t, err)
	assert.Nil(t, res.Exact)
	assert.True(t, res.NeedsConfirmation)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Pooja Verma", res.Candidates[0].Name)
}

func TestResolveAmbiguityNoMatch(t *testing.T) {
	f := newFixture(t)

	res, err := f.resolver.ResolveAmbiguity(context.Background(), "Zubin", "conv-1")
	require.NoError(t, err)
	assert.Nil(t, res.Exact)
	assert.False(t, res.NeedsConfirmation)
	assert.Empty(t, res.Candidates)
}

func TestResolveAmbiguityTieIsSurfaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// two customers with the same name both rank 1.0
	_, err := f.store.MemStore.Create(ctx, customer.Record{Name: "Sunil Gupta", Landmark: "Chowk"})
	require.NoError(t, err)
	_, err = f.store.MemStore.Create(ctx, customer.Record{Name: "Sunil Gupta", Landmark: "Bazaar"})
	require.NoError(t, err)

	res, err := f.resolver.ResolveAmbiguity(ctx, "Sunil Gupta", "conv-1")
	require.NoError(t, err)
	assert.Nil(t, res.Exact, "a tie above the auto-accept threshold is never silently taken")
	assert.True(t, res.NeedsConfirmation)
	assert.Len(t, res.Candidates, 2)
}

func TestCreateCustomerFastDuplicateGuard(t *testing.T) {
	f := newFixture(t)

	out, err := f.resolver.CreateCustomerFast(context.Background(), "Rahul Sharma", "conv-1")
	require.NoError(t, err)
	assert.True(t, out.DuplicateFound)
	assert.Nil(t, out.Customer)
	require.NotEmpty(t, out.Suggestions)
	assert.Equal(t, "Rahul Sharma", out.Suggestions[0].Name)
	assert.Equal(t, 0, f.store.creates, "refused create must issue zero create calls")
}

func TestCreateCustomerFastSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.resolver.CreateCustomerFast(ctx, "Kiran Rao", "conv-1")
	require.NoError(t, err)
	assert.False(t, out.DuplicateFound)
	require.NotNil(t, out.Customer)
	assert.Equal(t, 1, f.store.creates)

	active, err := f.resolver.GetActiveCustomer(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, out.Customer.ID, active.ID)
}

func TestConfirmSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.store.MemStore.FindAll(ctx, "raju")
	require.NoError(t, err)
	require.Len(t, all, 1)
	id := all[0].ID

	landmark := "Bus stand ke paas"
	rec, err := f.resolver.ConfirmSelection(ctx, id, "conv-1", &customer.Fields{Landmark: &landmark})
	require.NoError(t, err)
	assert.Equal(t, "Bus stand ke paas", rec.Landmark)

	// pronoun reference resolves without a fresh store lookup
	before := f.store.findByIDs
	active, err := f.resolver.GetActiveCustomer(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, id, active.ID)
	assert.Equal(t, before, f.store.findByIDs)
}

func TestConfirmSelectionUnknownID(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.ConfirmSelection(context.Background(), "missing", "conv-1", nil)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetActiveCustomerNoneIsNil(t *testing.T) {
	f := newFixture(t)

	active, err := f.resolver.GetActiveCustomer(context.Background(), "conv-fresh")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestInvalidateKeepsActiveClearClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.resolver.ResolveAmbiguity(ctx, "Rahul Sharma", "conv-1")
	require.NoError(t, err)
	require.NotNil(t, res.Exact)

	f.resolver.InvalidateConversationCache("conv-1")
	active, err := f.resolver.GetActiveCustomer(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, active, "invalidation keeps the active customer")

	f.resolver.ClearConversationCache("conv-1")
	active, err = f.resolver.GetActiveCustomer(ctx, "conv-1")
	require.NoError(t, err)
	assert.Nil(t, active, "clear tears the conversation down")
}
