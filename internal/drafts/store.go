// Package drafts stages in-progress assessments and answers locally until
// they are reconciled with the canonical store.
//
// Writes are debounced per key. Storage failures never reach callers: a
// broken or missing backend turns the store into a logged no-op.
package drafts

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

const (
	DefaultAuthorDelay   = 1500 * time.Millisecond
	DefaultResponseDelay = time.Second
	DefaultRetention     = 7 * 24 * time.Hour

	authorPrefix   = "author:"
	responsePrefix = "response:"
)

type Config struct {
	AuthorDelay   time.Duration
	ResponseDelay time.Duration
	Retention     time.Duration
	// AfterFunc and Now default to the real clock
	AfterFunc AfterFunc
	Now       func() time.Time
}

type Store struct {
	backend   Backend
	scheduler *Scheduler
	logger    *slog.Logger
	cfg       Config
	degraded  atomic.Bool

	keysMu sync.Mutex
	keys   map[string]*keyState
}

// keyState serializes writes to one key. gen moves on every cancel, clear
// and immediate save; a debounced write that fires under an older gen is
// dropped. latest is the edit time of the newest snapshot handed to the key.
type keyState struct {
	mu     sync.Mutex
	gen    uint64
	latest time.Time
}

// NewStore wraps backend. A nil backend yields a store that persists nothing.
func NewStore(backend Backend, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AuthorDelay <= 0 {
		cfg.AuthorDelay = DefaultAuthorDelay
	}
	if cfg.ResponseDelay <= 0 {
		cfg.ResponseDelay = DefaultResponseDelay
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if backend == nil {
		backend = unavailableBackend{}
	}
	return &Store{
		backend:   backend,
		scheduler: NewScheduler(cfg.AfterFunc),
		logger:    logger,
		cfg:       cfg,
		keys:      make(map[string]*keyState),
	}
}

func (s *Store) key(key string) *keyState {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	ks, ok := s.keys[key]
	if !ok {
		ks = &keyState{}
		s.keys[key] = ks
	}
	return ks
}

// schedule debounces write under key. The write runs only if nothing has
// cancelled, cleared or overwritten the key since it was scheduled.
func (s *Store) schedule(key string, delay time.Duration, edited time.Time, write func(ctx context.Context)) {
	ks := s.key(key)
	ks.mu.Lock()
	gen := ks.gen
	ks.latest = edited
	ks.mu.Unlock()

	s.scheduler.Schedule(key, delay, func() {
		ks.mu.Lock()
		defer ks.mu.Unlock()
		if ks.gen != gen {
			return
		}
		write(context.Background())
	})
}

// saveNow writes immediately and supersedes any debounced write for key
func (s *Store) saveNow(ctx context.Context, key string, edited time.Time, v interface{}, savedAt time.Time) {
	ks := s.key(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.gen++
	ks.latest = edited
	s.put(ctx, key, v, savedAt)
}

// cancel drops the pending write for key. A write already running finishes
// before cancel returns.
func (s *Store) cancel(key string) {
	s.scheduler.Cancel(key)
	ks := s.key(key)
	ks.mu.Lock()
	ks.gen++
	ks.latest = time.Time{}
	ks.mu.Unlock()
}

func (s *Store) clear(ctx context.Context, key string) {
	s.scheduler.Cancel(key)
	ks := s.key(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	s.clearLocked(ctx, key, ks)
}

func (s *Store) clearLocked(ctx context.Context, key string, ks *keyState) {
	ks.gen++
	ks.latest = time.Time{}
	s.delete(ctx, key)
}

func authorKey(assessmentID string) string   { return authorPrefix + assessmentID }
func responseKey(assessmentID string) string { return responsePrefix + assessmentID }

// ScheduleAuthor persists snapshot once the author has been idle for the quiet period
func (s *Store) ScheduleAuthor(snapshot models.Assessment) {
	snap := snapshot.Clone()
	s.schedule(authorKey(snap.ID), s.cfg.AuthorDelay, snap.UpdatedAt, func(ctx context.Context) {
		draft := s.authorDraft(snap)
		s.put(ctx, authorKey(snap.ID), draft, draft.SavedAt)
	})
}

// SaveAuthor writes the author draft immediately
func (s *Store) SaveAuthor(ctx context.Context, snapshot models.Assessment) {
	draft := s.authorDraft(snapshot)
	s.saveNow(ctx, authorKey(snapshot.ID), snapshot.UpdatedAt, draft, draft.SavedAt)
}

func (s *Store) authorDraft(snapshot models.Assessment) models.AuthorDraft {
	return models.AuthorDraft{AssessmentID: snapshot.ID, Snapshot: snapshot, SavedAt: s.cfg.Now()}
}

// LoadAuthor returns the stored author draft, or nil when there is none or it cannot be read
func (s *Store) LoadAuthor(ctx context.Context, assessmentID string) *models.AuthorDraft {
	var draft models.AuthorDraft
	if !s.get(ctx, authorKey(assessmentID), &draft) {
		return nil
	}
	return &draft
}

// ClearAuthor cancels any pending write and deletes the stored author draft
func (s *Store) ClearAuthor(ctx context.Context, assessmentID string) {
	s.clear(ctx, authorKey(assessmentID))
}

// ClearSavedAuthor deletes the author draft once a snapshot edited at savedAt
// reached the canonical store. A pending or stored snapshot edited later is
// kept, along with its pending write. It reports whether the draft was cleared.
func (s *Store) ClearSavedAuthor(ctx context.Context, assessmentID string, savedAt time.Time) bool {
	key := authorKey(assessmentID)
	ks := s.key(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.latest.After(savedAt) {
		s.logger.Debug("Keeping newer author draft", "assessment_id", assessmentID, "edited_at", ks.latest)
		return false
	}
	var stored models.AuthorDraft
	if s.get(ctx, key, &stored) && stored.Snapshot.UpdatedAt.After(savedAt) {
		s.logger.Debug("Keeping newer author draft", "assessment_id", assessmentID, "edited_at", stored.Snapshot.UpdatedAt)
		return false
	}
	s.scheduler.Cancel(key)
	s.clearLocked(ctx, key, ks)
	return true
}

// CancelAuthor drops a pending write but keeps what is already stored
func (s *Store) CancelAuthor(assessmentID string) {
	s.cancel(authorKey(assessmentID))
}

func (s *Store) authorPending(assessmentID string) bool {
	return s.scheduler.Pending(authorKey(assessmentID))
}

// ScheduleResponse persists answers once the candidate has been idle for the quiet period
func (s *Store) ScheduleResponse(assessmentID string, answers models.AnswerMap) {
	snap := answers.Clone()
	s.schedule(responseKey(assessmentID), s.cfg.ResponseDelay, time.Time{}, func(ctx context.Context) {
		draft := s.responseDraft(assessmentID, snap)
		s.put(ctx, responseKey(assessmentID), draft, draft.SavedAt)
	})
}

func (s *Store) SaveResponse(ctx context.Context, assessmentID string, answers models.AnswerMap) {
	draft := s.responseDraft(assessmentID, answers)
	s.saveNow(ctx, responseKey(assessmentID), time.Time{}, draft, draft.SavedAt)
}

func (s *Store) responseDraft(assessmentID string, answers models.AnswerMap) models.ResponseDraft {
	return models.ResponseDraft{AssessmentID: assessmentID, Answers: answers, SavedAt: s.cfg.Now()}
}

func (s *Store) LoadResponse(ctx context.Context, assessmentID string) *models.ResponseDraft {
	var draft models.ResponseDraft
	if !s.get(ctx, responseKey(assessmentID), &draft) {
		return nil
	}
	if draft.Answers == nil {
		draft.Answers = models.AnswerMap{}
	}
	return &draft
}

func (s *Store) ClearResponse(ctx context.Context, assessmentID string) {
	s.clear(ctx, responseKey(assessmentID))
}

func (s *Store) CancelResponse(assessmentID string) {
	s.cancel(responseKey(assessmentID))
}

// ResponsePending reports whether answers are waiting out the quiet period
func (s *Store) ResponsePending(assessmentID string) bool {
	return s.scheduler.Pending(responseKey(assessmentID))
}

// Cleanup evicts drafts older than the retention window and returns how many went.
// It is meant to be called opportunistically, e.g. when a list is loaded.
func (s *Store) Cleanup(ctx context.Context) int {
	cutoff := s.cfg.Now().Add(-s.cfg.Retention)
	n, err := s.backend.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.fail("cleanup", "", err)
		return 0
	}
	if n > 0 {
		s.logger.Info("Expired drafts removed", "count", n, "cutoff", cutoff)
	}
	return n
}

// Close cancels every pending write and releases the backend. Stored drafts are kept.
func (s *Store) Close() error {
	s.scheduler.CancelAll()

	s.keysMu.Lock()
	states := make([]*keyState, 0, len(s.keys))
	for _, ks := range s.keys {
		states = append(states, ks)
	}
	s.keysMu.Unlock()

	for _, ks := range states {
		ks.mu.Lock()
		ks.gen++
		ks.mu.Unlock()
	}
	return s.backend.Close()
}

func (s *Store) put(ctx context.Context, key string, v interface{}, savedAt time.Time) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode draft", "key", key, "error", err)
		return
	}
	if err := s.backend.Put(ctx, key, data, savedAt); err != nil {
		s.fail("put", key, err)
		return
	}
	s.recovered()
	s.logger.Debug("Draft saved", "key", key, "bytes", len(data))
}

func (s *Store) get(ctx context.Context, key string, dest interface{}) bool {
	data, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.fail("get", key, err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("Discarding unreadable draft", "key", key, "error", err)
		s.delete(ctx, key)
		return false
	}
	return true
}

func (s *Store) delete(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.fail("delete", key, err)
	}
}

// fail logs the first failure loudly and the rest at debug level until a write succeeds again
func (s *Store) fail(op, key string, err error) {
	if s.degraded.CompareAndSwap(false, true) {
		s.logger.Warn("Draft storage unavailable, autosave disabled", "operation", op, "key", key, "error", err)
		return
	}
	s.logger.Debug("Draft storage operation skipped", "operation", op, "key", key, "error", err)
}

func (s *Store) recovered() {
	if s.degraded.CompareAndSwap(true, false) {
		s.logger.Info("Draft storage available again")
	}
}

// Degraded reports whether the last storage operation failed
func (s *Store) Degraded() bool {
	return s.degraded.Load()
}
