package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/a2companion/internal/catalog"
	"github.com/abhisek/a2companion/internal/store"
)

// ErrEmptyEventID is returned when an operation names no event.
var ErrEmptyEventID = errors.New("progress: empty event id")

// Store reads and writes progress documents through a KVRepo.
//
// Every operation loads the full document, applies its change and writes
// the full document back. A mutex serializes operations within one Store;
// two processes sharing a database may still lose updates (last write wins).
type Store struct {
	repo   store.KVRepo
	logger *zap.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report discarded documents.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store backed by repo.
func New(repo store.KVRepo, opts ...Option) *Store {
	s := &Store{repo: repo, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load returns the stored document. A missing, unparsable or foreign-version
// document yields a fresh empty one; it is never repaired.
func (s *Store) load(ctx context.Context) (*document, error) {
	raw, err := s.repo.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if raw == nil {
		return newDocument(), nil
	}

	doc, err := decode(raw)
	if err != nil {
		s.logger.Warn("discarding stored progress",
			zap.String("key", StorageKey),
			zap.Int("bytes", len(raw)),
			zap.Error(err),
		)
		return newDocument(), nil
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc *document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.repo.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Read returns the progress of one event version. An entry that does not
// exist yet is created empty and persisted before it is returned.
func (s *Store) Read(ctx context.Context, eventID string, version catalog.Num) (*EventProgress, error) {
	if eventID == "" {
		return nil, ErrEmptyEventID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	key := EventKey(eventID, version)
	if ev, ok := doc.Events[key]; ok {
		return ev.clone(), nil
	}

	ev := &EventProgress{EventID: eventID, EventVersion: version, Tasks: map[string]TaskState{}}
	doc.Events[key] = ev
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Debug("created progress entry", zap.String("event", key))
	return ev.clone(), nil
}

// Update applies fn to the state of one task and persists the result. A
// task that was never touched starts from the zero state.
func (s *Store) Update(ctx context.Context, eventID string, version catalog.Num, taskID string, fn func(TaskState) TaskState) (TaskState, error) {
	if eventID == "" {
		return TaskState{}, ErrEmptyEventID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return TaskState{}, err
	}

	key := EventKey(eventID, version)
	ev, ok := doc.Events[key]
	if !ok {
		ev = &EventProgress{EventID: eventID, EventVersion: version, Tasks: map[string]TaskState{}}
		doc.Events[key] = ev
	}

	next := fn(ev.Tasks[taskID])
	ev.Tasks[taskID] = next

	if err := s.save(ctx, doc); err != nil {
		return TaskState{}, err
	}
	s.logger.Debug("updated task progress",
		zap.String("event", key),
		zap.String("task", taskID),
		zap.Int("progress", next.ProgressValue),
	)
	return next, nil
}

// All returns every tracked event version, ordered by key. It does not
// write anything.
func (s *Store) All(ctx context.Context) ([]*EventProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(doc.Events))
	for k := range doc.Events {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*EventProgress, 0, len(keys))
	for _, k := range keys {
		out = append(out, doc.Events[k].clone())
	}
	return out, nil
}

// Reset deletes all stored progress.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	s.logger.Info("progress reset")
	return nil
}
