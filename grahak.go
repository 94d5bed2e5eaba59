// Package grahak resolves customer names for a Hindi/English ledger
// assistant. It ties together transliteration, phonetic matching,
// nickname lookup, composite ranking and conversation memory behind one
// Engine that a caller can stand up from a single Config.
package grahak

import (
	"go.uber.org/zap"

	"github.com/vyapari/grahak/config"
	"github.com/vyapari/grahak/convo"
	"github.com/vyapari/grahak/customer"
	"github.com/vyapari/grahak/match"
	"github.com/vyapari/grahak/nickname"
)

// Engine is the assembled resolution stack. The zero value is not
// usable; build one with New.
type Engine struct {
	Store    customer.Store
	Matcher  *match.Engine
	Memory   *convo.Memory
	Resolver *convo.Resolver
}

// Option configures the assembled engine.
type Option func(*options)

type options struct {
	store  customer.Store
	logger *zap.SugaredLogger
}

// WithStore substitutes the customer store. Without it the engine runs
// on an in-memory store, which is what the tests and the demo ledger
// use.
func WithStore(s customer.Store) Option {
	return func(o *options) { o.store = s }
}

// WithLogger sets the logger threaded through the match engine and the
// conversation memory.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = logger }
}

// New assembles the resolution stack from cfg. The nickname dictionary
// is the built-in one unless cfg.Nicknames.Path names a TOML overlay.
// The conversation sweep is started; call Close when done.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = customer.NewMemStore()
	}

	dict := nickname.Default()
	if cfg.Nicknames.Path != "" {
		var err error
		dict, err = nickname.LoadTOML(cfg.Nicknames.Path)
		if err != nil {
			return nil, err
		}
	}

	matcher := match.NewEngine(dict,
		match.WithThreshold(cfg.Match.Threshold),
		match.WithSamePersonThreshold(cfg.Match.SamePersonThreshold),
	)
	matcher.SetLogger(o.logger)

	memory := convo.NewMemory(
		convo.WithTTL(cfg.Conversation.TTL()),
		convo.WithSweepInterval(cfg.Conversation.SweepInterval()),
		convo.WithLogger(o.logger),
	)
	memory.StartSweep()

	resolver := convo.NewResolver(o.store, matcher, memory,
		convo.WithCacheFloor(cfg.Rank.CacheFloor),
		convo.WithAutoAccept(cfg.Rank.AutoAccept, cfg.Rank.AutoAcceptGap),
		convo.WithSimilarThreshold(cfg.Match.SimilarThreshold),
		convo.WithDuplicateThreshold(cfg.Match.DuplicateThreshold),
	)

	return &Engine{
		Store:    o.store,
		Matcher:  matcher,
		Memory:   memory,
		Resolver: resolver,
	}, nil
}

// Close stops the conversation sweep and drops all cached contexts.
func (e *Engine) Close() {
	e.Memory.Close()
}
