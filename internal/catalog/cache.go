package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// State is the lifecycle of one cached resource.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// slot memoizes one load. Concurrent callers share the in-flight load.
type slot[T any] struct {
	mu    sync.Mutex
	state State
	done  chan struct{}
	value T
	err   error
}

func (s *slot[T]) get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	switch s.state {
	case StateReady, StateError:
		v, err := s.value, s.err
		s.mu.Unlock()
		return v, err
	case StateLoading:
		done := s.done
		s.mu.Unlock()
		select {
		case <-done:
			return s.get(ctx, load)
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	s.state = StateLoading
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	v, err := load(ctx)

	s.mu.Lock()
	switch {
	case err == nil:
		s.state, s.value, s.err = StateReady, v, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Cancelled loads leave the slot empty.
		s.state = StateEmpty
	default:
		var zero T
		s.state, s.value, s.err = StateError, zero, err
	}
	close(done)
	s.mu.Unlock()
	return v, err
}

func (s *slot[T]) current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading {
		// Left to finish; waiters already hold its done channel.
		return
	}
	var zero T
	s.state, s.value, s.err = StateEmpty, zero, nil
}

// Cache memoizes catalog loads for one session. It is owned by the
// composition root and handed to consumers; there is no package-level
// cache. Successful and failed loads are both kept until Reset, except
// loads that failed because their context was cancelled.
type Cache struct {
	loader *Loader
	logger *zap.Logger

	genMu      sync.Mutex
	generation uint64

	index     slot[*Index]
	summaries slot[[]EventSummary]
	shared    slot[map[string]SharedItem]
	tools     slot[[]Tool]
}

// NewCache creates an empty cache over loader.
func NewCache(loader *Loader, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{loader: loader, logger: logger}
}

// Index returns the catalog index, loading it on first use.
func (c *Cache) Index(ctx context.Context) (*Index, error) {
	return c.index.get(ctx, c.loader.LoadIndex)
}

// Summaries returns the summary of every indexed event.
func (c *Cache) Summaries(ctx context.Context) ([]EventSummary, error) {
	return c.summaries.get(ctx, func(ctx context.Context) ([]EventSummary, error) {
		idx, err := c.Index(ctx)
		if err != nil {
			return nil, err
		}
		return c.loader.LoadEventSummaries(ctx, idx.EventPaths)
	})
}

// SharedItems returns the merged shared registry.
func (c *Cache) SharedItems(ctx context.Context) (map[string]SharedItem, error) {
	return c.shared.get(ctx, func(ctx context.Context) (map[string]SharedItem, error) {
		idx, err := c.Index(ctx)
		if err != nil {
			return nil, err
		}
		return c.loader.LoadSharedItems(ctx, idx.SharedPaths)
	})
}

// Tools returns every indexed tool.
func (c *Cache) Tools(ctx context.Context) ([]Tool, error) {
	return c.tools.get(ctx, func(ctx context.Context) ([]Tool, error) {
		idx, err := c.Index(ctx)
		if err != nil {
			return nil, err
		}
		return c.loader.LoadTools(ctx, idx.ToolPaths)
	})
}

// Event loads one event's full detail. Details are not memoized; only the
// index lookup is. It returns ErrNotFound when no document has the id.
func (c *Cache) Event(ctx context.Context, id string) (*Event, error) {
	idx, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := c.loader.LoadEventByID(ctx, idx.EventPaths, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrNotFound
	}
	return ev, nil
}

// State reports the lifecycle of the event summary list, which is what
// list consumers render from.
func (c *Cache) State() State {
	return c.summaries.current()
}

// Generation increments on every Reset. Consumers holding results from an
// older generation should treat them as stale.
func (c *Cache) Generation() uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.generation
}

// Reset empties every settled slot. Loads in flight are left to finish.
func (c *Cache) Reset() {
	c.genMu.Lock()
	c.generation++
	c.genMu.Unlock()

	c.index.reset()
	c.summaries.reset()
	c.shared.reset()
	c.tools.reset()
	c.logger.Debug("catalog cache reset")
}
