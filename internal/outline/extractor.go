package outline

// Implementation Plan:
// 1. Each Refresh takes the next sequence number and installs a new Pending
// 2. Parsing and tree building run on their own goroutine
// 3. A completion commits to the tree cache only while its sequence is the latest
// 4. Superseded completions still resolve their own Pending, then are dropped
// 5. Parser failures resolve the Pending with the error and commit nothing
// 6. A committed Pending is released; later lookups are served from the cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
	"github.com/mvp-joe/project-outline/internal/extraction"
	"github.com/tliron/commonlog"
)

// ErrNotExtracted is returned when no extraction was ever requested for a unit.
var ErrNotExtracted = errors.New("no outline extracted")

// Parser turns source text into a raw unit.
type Parser interface {
	Parse(ctx context.Context, source []byte) (*extraction.Unit, error)
}

// ParserResolver selects the parser for a unit, usually by file extension.
type ParserResolver func(uri string) (Parser, error)

// Extract parses text and builds its outline in one step.
func Extract(ctx context.Context, parser Parser, text string, opts Options) (*Tree, error) {
	unit, err := parser.Parse(ctx, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	return Build(unit, NewDocument(text), opts), nil
}

// Pending is the deferred result of one extraction request.
type Pending struct {
	ID  uuid.UUID
	Seq uint64

	done chan struct{}
	tree *Tree
	err  error
}

func newPending(seq uint64) *Pending {
	return &Pending{
		ID:   uuid.New(),
		Seq:  seq,
		done: make(chan struct{}),
	}
}

// Done is closed once the request has resolved.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the request resolves or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Tree, error) {
	select {
	case <-p.done:
		return p.tree, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pending) resolve(tree *Tree, err error) {
	p.tree = tree
	p.err = err
	close(p.done)
}

// unitState tracks the latest request of one unit. pending is nil once that
// request has committed, so committed trees are only held by the cache.
type unitState struct {
	seq     uint64
	pending *Pending
}

// Extractor runs extractions for many units and keeps the latest committed
// outline of each.
type Extractor struct {
	resolve ParserResolver
	log     commonlog.Logger

	mu    sync.Mutex
	seq   uint64 // monotonic across all units
	units map[string]*unitState
	trees otter.Cache[string, *Tree]
	wg    sync.WaitGroup
}

// NewExtractor creates an extractor that retains up to capacity committed trees.
func NewExtractor(resolve ParserResolver, capacity int) (*Extractor, error) {
	if resolve == nil {
		return nil, fmt.Errorf("parser resolver is required")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	trees, err := otter.MustBuilder[string, *Tree](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create tree cache: %w", err)
	}

	return &Extractor{
		resolve: resolve,
		log:     commonlog.GetLogger("outline.extractor"),
		units:   make(map[string]*unitState),
		trees:   trees,
	}, nil
}

// Refresh requests a new extraction of uri from text. The returned Pending
// becomes the unit's current request immediately; any earlier request still
// in flight can no longer commit.
func (e *Extractor) Refresh(ctx context.Context, uri string, text string, opts Options) *Pending {
	e.mu.Lock()
	u, ok := e.units[uri]
	if !ok {
		u = &unitState{}
		e.units[uri] = u
	}
	e.seq++
	u.seq = e.seq
	p := newPending(u.seq)
	u.pending = p
	e.mu.Unlock()

	e.log.Debugf("extraction %s requested for %s (seq %d)", p.ID, uri, p.Seq)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(ctx, uri, text, opts, p)
	}()

	return p
}

func (e *Extractor) run(ctx context.Context, uri string, text string, opts Options, p *Pending) {
	tree, err := e.extract(ctx, uri, text, opts)

	e.mu.Lock()
	u, ok := e.units[uri]
	latest := ok && u.seq == p.Seq
	if latest && err == nil {
		e.trees.Set(uri, tree)
		u.pending = nil
	}
	e.mu.Unlock()

	switch {
	case err != nil:
		e.log.Errorf("extraction %s for %s failed: %s", p.ID, uri, err.Error())
	case !latest:
		e.log.Debugf("extraction %s for %s superseded (seq %d), discarding", p.ID, uri, p.Seq)
	default:
		e.log.Debugf("extraction %s for %s committed (seq %d)", p.ID, uri, p.Seq)
	}

	p.resolve(tree, err)
}

func (e *Extractor) extract(ctx context.Context, uri string, text string, opts Options) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser, err := e.resolve(uri)
	if err != nil {
		return nil, err
	}
	return Extract(ctx, parser, text, opts)
}

// Tree returns the unit's most recently issued request, resolved or not.
// Once that request has committed, a resolved Pending carrying the cached
// tree is returned instead; it is absent when the cache evicted the tree.
func (e *Extractor) Tree(uri string) (*Pending, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.units[uri]
	if !ok {
		return nil, false
	}
	if u.pending != nil {
		return u.pending, true
	}
	tree, ok := e.trees.Get(uri)
	if !ok {
		return nil, false
	}
	p := newPending(u.seq)
	p.resolve(tree, nil)
	return p, true
}

// Latest returns the most recently committed outline of uri.
func (e *Extractor) Latest(uri string) (*Tree, bool) {
	return e.trees.Get(uri)
}

// Current waits for the unit's latest request. If that request failed, the
// last committed outline is returned alongside the error when there is one.
func (e *Extractor) Current(ctx context.Context, uri string) (*Tree, error) {
	p, ok := e.Tree(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExtracted, uri)
	}
	tree, err := p.Wait(ctx)
	if err != nil {
		if prev, ok := e.Latest(uri); ok {
			return prev, err
		}
		return nil, err
	}
	return tree, nil
}

// Forget drops all state for uri. Requests still in flight will not commit.
func (e *Extractor) Forget(uri string) {
	e.mu.Lock()
	delete(e.units, uri)
	e.trees.Delete(uri)
	e.mu.Unlock()
}

// Close waits for in-flight extractions and releases the cache.
func (e *Extractor) Close() {
	e.wg.Wait()
	e.trees.Close()
}
