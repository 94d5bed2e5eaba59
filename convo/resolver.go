package convo

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vyapari/grahak/customer"
	"github.com/vyapari/grahak/errors"
	"github.com/vyapari/grahak/match"
	"github.com/vyapari/grahak/rank"
)

// Resolver thresholds. CacheFloor is the minimum composite score for a
// cached candidate to count as a hit; AutoAccept is the composite score
// above which the top candidate is taken without confirmation, provided
// it leads the runner-up by AutoAcceptGap. Two candidates both above
// AutoAccept within the gap are surfaced as ambiguous rather than
// silently taking enumeration order.
const (
	CacheFloor         = 0.35
	AutoAccept         = 0.9
	AutoAcceptGap      = 0.05
	SimilarThreshold   = 0.65
	ConfirmSimilarity  = 0.85
	DuplicateThreshold = 0.95
)

// Source says where a search was served from.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
)

// SearchOutcome is a ranked search result set. An empty Customers slice
// is a legitimate no-match; store failures surface as errors, never as
// an empty outcome.
type SearchOutcome struct {
	Customers []customer.SearchResult
	Source    Source
}

// Resolution is the outcome of an ambiguity resolution. Exactly one of
// three shapes: Exact set (unique confident match, active customer
// updated); NeedsConfirmation with Candidates (caller must prompt);
// both empty (no match).
type Resolution struct {
	Exact             *customer.SearchResult
	Candidates        []customer.SearchResult
	NeedsConfirmation bool
}

// CreateOutcome is the result of a duplicate-guarded create. When
// DuplicateFound is set no record was created and Suggestions holds the
// conflicting customers.
type CreateOutcome struct {
	Customer       *customer.Record
	DuplicateFound bool
	Suggestions    []customer.SearchResult
}

// Resolver turns name fragments into customer records using the ranking
// engine over conversation-scoped cached candidates, falling back to the
// external customer store.
type Resolver struct {
	store   customer.Store
	matcher *match.Engine
	memory  *Memory
	logger  *zap.SugaredLogger

	cacheFloor         float64
	autoAccept         float64
	autoAcceptGap      float64
	similarThreshold   float64
	confirmSimilarity  float64
	duplicateThreshold float64
}

// ResolverOption overrides a resolver threshold.
type ResolverOption func(*Resolver)

// WithCacheFloor overrides the cached-candidate hit floor.
func WithCacheFloor(f float64) ResolverOption {
	return func(r *Resolver) { r.cacheFloor = f }
}

// WithAutoAccept overrides the unique-match acceptance threshold and the
// lead it must hold over the runner-up.
func WithAutoAccept(threshold, gap float64) ResolverOption {
	return func(r *Resolver) {
		r.autoAccept = threshold
		r.autoAcceptGap = gap
	}
}

// WithSimilarThreshold overrides the similar-candidate gathering
// threshold.
func WithSimilarThreshold(f float64) ResolverOption {
	return func(r *Resolver) { r.similarThreshold = f }
}

// WithDuplicateThreshold overrides the create duplicate guard.
func WithDuplicateThreshold(f float64) ResolverOption {
	return func(r *Resolver) { r.duplicateThreshold = f }
}

// NewResolver wires the resolver. All collaborators are required except
// the logger.
func NewResolver(store customer.Store, matcher *match.Engine, memory *Memory, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:   store,
		matcher: matcher,
		memory:  memory,

		cacheFloor:         CacheFloor,
		autoAccept:         AutoAccept,
		autoAcceptGap:      AutoAcceptGap,
		similarThreshold:   SimilarThreshold,
		confirmSimilarity:  ConfirmSimilarity,
		duplicateThreshold: DuplicateThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetLogger sets the logger for debug output.
func (r *Resolver) SetLogger(logger *zap.SugaredLogger) {
	r.logger = logger
}

// SearchWithContext resolves a query against the conversation's cached
// candidates first; only when the cache is cold, expired, or yields no
// hit above CacheFloor does it fall through to the customer store. Store
// results are cached on the conversation for the next turn.
func (r *Resolver) SearchWithContext(ctx context.Context, query, conversationID string) (*SearchOutcome, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.Wrap(errors.ErrEmptyQuery, "searchWithContext")
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "searchWithContext: conversation id")
	}

	start := time.Now()

	// Warm path: re-score what this conversation already saw.
	if snap, ok := r.memory.Snapshot(conversationID); ok && len(snap.RecentCustomers) > 0 {
		hits := rescore(query, snap.RecentCustomers, r.cacheFloor)
		if len(hits) > 0 {
			r.memory.Remember(conversationID, query, hits)
			if r.logger != nil {
				r.logger.Debugw("search served from conversation cache",
					"query", query,
					"conversation_id", conversationID,
					"hits", len(hits),
					"time_us", time.Since(start).Microseconds(),
				)
			}
			return &SearchOutcome{Customers: hits, Source: SourceCache}, nil
		}
	}

	// Cold path: the store filter ANDs tokens, so stop words must go.
	filter := strings.Join(rank.Tokenize(query), " ")
	records, err := r.store.FindAll(ctx, filter)
	if err != nil {
		return nil, storeFailure(err, "searchWithContext: store query")
	}

	results := make([]customer.SearchResult, 0, len(records))
	for _, rec := range records {
		sr := rec.Project()
		sr.MatchScore = rank.Score(query, sr)
		results = append(results, sr)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	r.memory.Remember(conversationID, query, results)
	if r.logger != nil {
		r.logger.Debugw("search served from store",
			"query", query,
			"conversation_id", conversationID,
			"results", len(results),
			"time_us", time.Since(start).Microseconds(),
		)
	}
	return &SearchOutcome{Customers: results, Source: SourceStore}, nil
}

// rescore runs the ranking engine over cached candidates and keeps those
// clearing the cache floor, sorted descending.
func rescore(query string, cached []customer.SearchResult, floor float64) []customer.SearchResult {
	var hits []customer.SearchResult
	for _, c := range cached {
		c.MatchScore = rank.Score(query, c)
		if c.MatchScore >= floor {
			hits = append(hits, c)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].MatchScore > hits[j].MatchScore
	})
	return hits
}

// ResolveAmbiguity decides between exact-match, needs-confirmation and
// no-match for a name fragment. A top composite score above AutoAccept
// wins outright only when it leads the runner-up by AutoAcceptGap;
// otherwise candidates are compared to each other through the match
// engine at SimilarThreshold, which is deliberately independent of the
// composite ranking.
func (r *Resolver) ResolveAmbiguity(ctx context.Context, query, conversationID string) (*Resolution, error) {
	outcome, err := r.SearchWithContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}

	ranked := outcome.Customers
	if len(ranked) > 0 && ranked[0].MatchScore > r.autoAccept {
		leads := len(ranked) == 1 ||
			ranked[1].MatchScore <= r.autoAccept ||
			ranked[0].MatchScore-ranked[1].MatchScore >= r.autoAcceptGap
		if leads {
			top := ranked[0]
			r.memory.SetActive(conversationID, top.ID)
			return &Resolution{Exact: &top}, nil
		}
		// Two confident candidates within the gap: surface the tie.
		return &Resolution{
			Candidates:        ranked[:2],
			NeedsConfirmation: true,
		}, nil
	}

	similar, err := r.gatherSimilar(ctx, query)
	if err != nil {
		return nil, err
	}

	switch {
	case len(similar) == 0:
		return &Resolution{}, nil
	case len(similar) == 1 && similar[0].MatchScore >= r.confirmSimilarity:
		top := similar[0]
		r.memory.SetActive(conversationID, top.ID)
		return &Resolution{Exact: &top}, nil
	default:
		return &Resolution{Candidates: similar, NeedsConfirmation: true}, nil
	}
}

// gatherSimilar compares the query against every stored name through the
// match engine at the lower similar-candidate threshold.
func (r *Resolver) gatherSimilar(ctx context.Context, query string) ([]customer.SearchResult, error) {
	records, err := r.store.FindAll(ctx, "")
	if err != nil {
		return nil, storeFailure(err, "resolveAmbiguity: enumerating customers")
	}

	var similar []customer.SearchResult
	for _, rec := range records {
		// A fragment like "Amit" must find "Amit Patel", so the full
		// name and each of its words are candidate strings.
		names := append([]string{rec.Name}, strings.Fields(rec.Name)...)
		var best *match.Result
		for _, n := range names {
			res, err := r.matcher.MatchThreshold(query, n, r.similarThreshold)
			if err != nil {
				return nil, err
			}
			if res != nil && (best == nil || res.Score > best.Score) {
				best = res
			}
		}
		if best == nil {
			continue
		}
		sr := rec.Project()
		sr.MatchScore = best.Score
		similar = append(similar, sr)
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].MatchScore > similar[j].MatchScore
	})
	return similar, nil
}

// CreateCustomerFast creates a customer after a duplicate guard: if any
// existing name is similar above DuplicateThreshold the create is
// refused and the conflicting customers are returned as suggestions.
// A refusal is a structured outcome, not an error.
func (r *Resolver) CreateCustomerFast(ctx context.Context, name, conversationID string) (*CreateOutcome, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Wrap(errors.ErrEmptyQuery, "createCustomerFast: name")
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "createCustomerFast: conversation id")
	}

	records, err := r.store.FindAll(ctx, "")
	if err != nil {
		return nil, storeFailure(err, "createCustomerFast: duplicate check")
	}

	var dupes []customer.SearchResult
	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, rec := range records {
		score := match.Similarity(lowered, strings.ToLower(strings.TrimSpace(rec.Name)))
		if score >= r.duplicateThreshold {
			sr := rec.Project()
			sr.MatchScore = score
			dupes = append(dupes, sr)
		}
	}
	if len(dupes) > 0 {
		if r.logger != nil {
			r.logger.Debugw("create refused, duplicate customer",
				"name", name,
				"suggestions", len(dupes),
			)
		}
		return &CreateOutcome{DuplicateFound: true, Suggestions: dupes}, nil
	}

	rec, err := r.store.Create(ctx, customer.Record{Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, storeFailure(err, "createCustomerFast: create")
	}

	sr := rec.Project()
	sr.MatchScore = 1.0
	r.memory.Remember(conversationID, name, []customer.SearchResult{sr})
	r.memory.SetActive(conversationID, rec.ID)
	return &CreateOutcome{Customer: rec}, nil
}

// ConfirmSelection pins the active customer for the conversation,
// reduces the cached candidates to just that customer, and optionally
// applies field updates.
func (r *Resolver) ConfirmSelection(ctx context.Context, customerID, conversationID string, updates *customer.Fields) (*customer.Record, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "confirmSelection: customer id")
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "confirmSelection: conversation id")
	}

	var rec *customer.Record
	var err error
	if updates != nil {
		rec, err = r.store.Update(ctx, customerID, *updates)
	} else {
		rec, err = r.store.FindByID(ctx, customerID)
	}
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		return nil, storeFailure(err, "confirmSelection")
	}

	sr := rec.Project()
	sr.MatchScore = 1.0
	r.memory.Remember(conversationID, "", []customer.SearchResult{sr})
	r.memory.SetActive(conversationID, rec.ID)
	return rec, nil
}

// GetActiveCustomer returns the customer the conversation's pronouns
// refer to, served from the cached candidates when possible and with a
// single store lookup otherwise. Returns (nil, nil) when the
// conversation has no active customer.
func (r *Resolver) GetActiveCustomer(ctx context.Context, conversationID string) (*customer.SearchResult, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.Wrap(errors.ErrInvalidID, "getActiveCustomer: conversation id")
	}

	snap, ok := r.memory.Snapshot(conversationID)
	if !ok || snap.ActiveCustomerID == "" {
		return nil, nil
	}
	for _, c := range snap.RecentCustomers {
		if c.ID == snap.ActiveCustomerID {
			out := c
			return &out, nil
		}
	}

	rec, err := r.store.FindByID(ctx, snap.ActiveCustomerID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		return nil, storeFailure(err, "getActiveCustomer")
	}
	sr := rec.Project()
	return &sr, nil
}

// InvalidateConversationCache drops the cached candidates while keeping
// the active customer pointer and live subscriptions.
func (r *Resolver) InvalidateConversationCache(conversationID string) {
	r.memory.Invalidate(conversationID)
}

// ClearConversationCache tears down the whole conversation context,
// cancelling its live subscriptions.
func (r *Resolver) ClearConversationCache(conversationID string) {
	r.memory.Clear(conversationID)
}

// storeFailure classifies a collaborator error as a store outage unless
// it already is one. Outages must stay distinguishable from no-match
// outcomes all the way up.
func storeFailure(err error, context string) error {
	if errors.IsStoreUnavailable(err) || errors.IsValidation(err) {
		return errors.Wrap(err, context)
	}
	return errors.WrapStore(err, context)
}
