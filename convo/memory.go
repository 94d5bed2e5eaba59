// Package convo holds per-conversation state for the resolution engine:
// cached search candidates, the "active customer" a pronoun like "usko"
// refers to, and live subscription handles. It also hosts the Resolver,
// which orchestrates ranking, matching and the customer store to turn a
// name fragment into one customer.
package convo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vyapari/grahak/customer"
	"github.com/vyapari/grahak/errors"
)

// Defaults for context lifetime. A shopkeeper exchange is short; five
// idle minutes means the conversation moved on.
const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 5 * time.Minute

	// maxRecent caps the cached candidate list per conversation
	maxRecent = 10
)

// Context is the per-conversation state. Fields are owned by Memory and
// must only be touched under its lock; callers get copies.
type Context struct {
	ConversationID   string
	RecentCustomers  []customer.SearchResult // most-recent-first, len <= maxRecent
	LastSearch       string
	ActiveCustomerID string
	Timestamp        time.Time

	subs map[string]context.CancelFunc
}

// Memory is an explicitly constructed, injectable store of conversation
// contexts. There is exactly one Context per conversation ID at any
// time; contexts are created lazily and evicted after the TTL by an
// owned background sweep. Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	contexts map[string]*Context

	ttl        time.Duration
	sweepEvery time.Duration
	now        func() time.Time
	logger     *zap.SugaredLogger

	sweepOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithTTL overrides the idle lifetime of a conversation context.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithSweepInterval overrides how often the background sweep runs.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(m *Memory) { m.sweepEvery = d }
}

// WithClock injects the time source, for TTL tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *zap.SugaredLogger) MemoryOption {
	return func(m *Memory) { m.logger = logger }
}

// NewMemory creates a conversation memory. Call StartSweep to begin
// background eviction and Close to tear everything down.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		contexts:   make(map[string]*Context),
		ttl:        DefaultTTL,
		sweepEvery: DefaultSweepInterval,
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSweep starts the background eviction goroutine. The sweep runs on
// a single ticker loop, so it can never overlap with itself. Safe to
// call once; subsequent calls are no-ops.
func (m *Memory) StartSweep() {
	m.sweepOnce.Do(func() {
		go func() {
			defer close(m.done)
			ticker := time.NewTicker(m.sweepEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					m.Sweep()
				case <-m.stop:
					return
				}
			}
		}()
	})
}

// Close stops the sweep and clears every context, cancelling all live
// subscriptions.
func (m *Memory) Close() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	m.sweepOnce.Do(func() { close(m.done) }) // sweep never started
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.contexts {
		cancelSubs(c)
		delete(m.contexts, id)
	}
}

// Sweep evicts every context idle longer than the TTL. Exported so
// composition roots with their own schedulers can drive eviction
// themselves.
func (m *Memory) Sweep() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.contexts {
		if now.Sub(c.Timestamp) > m.ttl {
			cancelSubs(c)
			delete(m.contexts, id)
			if m.logger != nil {
				m.logger.Debugw("conversation context evicted", "conversation_id", id)
			}
		}
	}
}

// get returns the live context for a conversation, lazily creating it.
// An expired context is torn down and treated as absent. Caller must
// hold m.mu.
func (m *Memory) get(conversationID string) *Context {
	c, ok := m.contexts[conversationID]
	if ok && m.now().Sub(c.Timestamp) > m.ttl {
		cancelSubs(c)
		delete(m.contexts, conversationID)
		ok = false
	}
	if !ok {
		c = &Context{
			ConversationID: conversationID,
			Timestamp:      m.now(),
			subs:           make(map[string]context.CancelFunc),
		}
		m.contexts[conversationID] = c
	}
	return c
}

// Snapshot returns a copy of the conversation context, or false if none
// exists (or it has expired).
func (m *Memory) Snapshot(conversationID string) (Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[conversationID]
	if !ok || m.now().Sub(c.Timestamp) > m.ttl {
		return Context{}, false
	}
	out := *c
	out.RecentCustomers = append([]customer.SearchResult(nil), c.RecentCustomers...)
	out.subs = nil
	return out, true
}

// Remember caches search results for a conversation (most-recent-first,
// capped) and refreshes its timestamp.
func (m *Memory) Remember(conversationID, query string, results []customer.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.get(conversationID)
	if len(results) > maxRecent {
		results = results[:maxRecent]
	}
	c.RecentCustomers = append([]customer.SearchResult(nil), results...)
	c.LastSearch = query
	c.Timestamp = m.now()
}

// SetActive records the active customer for pronoun resolution and
// refreshes the context timestamp.
func (m *Memory) SetActive(conversationID, customerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.get(conversationID)
	c.ActiveCustomerID = customerID
	c.Timestamp = m.now()
}

// AddSubscription registers a cancellable live-update handle (balance
// polling and the like) owned by the conversation. Replacing an existing
// handle under the same key cancels the old one.
func (m *Memory) AddSubscription(conversationID, key string, cancel context.CancelFunc) error {
	if cancel == nil {
		return errors.Wrap(errors.ErrInvalidID, "nil subscription cancel")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.get(conversationID)
	if old, ok := c.subs[key]; ok {
		old()
	}
	c.subs[key] = cancel
	return nil
}

// Invalidate clears the cached candidates of a conversation while
// preserving the active customer and live subscriptions.
func (m *Memory) Invalidate(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[conversationID]
	if !ok {
		return
	}
	c.RecentCustomers = nil
	c.LastSearch = ""
	c.Timestamp = m.now()
}

// Clear tears down the whole conversation context, cancelling its live
// subscriptions.
func (m *Memory) Clear(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[conversationID]
	if !ok {
		return
	}
	cancelSubs(c)
	delete(m.contexts, conversationID)
}

// Len returns the number of live contexts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}

func cancelSubs(c *Context) {
	for key, cancel := range c.subs {
		cancel()
		delete(c.subs, key)
	}
}
