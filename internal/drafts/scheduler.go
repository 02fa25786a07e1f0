package drafts

import (
	"sort"
	"sync"
	"time"
)

// Timer is the part of *time.Timer the scheduler needs. It is an alias so
// fake clocks can satisfy AfterFunc without importing this package.
type Timer = interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f once d has elapsed
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type handle struct {
	timer Timer
}

// Scheduler owns debounce handles. Each key has at most one pending handle;
// scheduling again cancels the previous one so the quiet period restarts.
type Scheduler struct {
	mu        sync.Mutex
	pending   map[string]*handle
	afterFunc AfterFunc
}

// NewScheduler uses afterFunc to start timers; nil means time.AfterFunc
func NewScheduler(afterFunc AfterFunc) *Scheduler {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Scheduler{
		pending:   make(map[string]*handle),
		afterFunc: afterFunc,
	}
}

// Schedule runs fn after delay unless key is scheduled again or cancelled first
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}
	h := &handle{}
	s.pending[key] = h
	h.timer = s.afterFunc(delay, func() { s.fire(key, h, fn) })
}

func (s *Scheduler) fire(key string, h *handle, fn func()) {
	s.mu.Lock()
	if s.pending[key] != h {
		// superseded or cancelled after the timer had already fired
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()
	fn()
}

// Cancel drops the pending handle for key. It reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.pending[key]
	if !ok {
		return false
	}
	h.timer.Stop()
	delete(s.pending, key)
	return true
}

// CancelAll drops every pending handle
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, h := range s.pending {
		h.timer.Stop()
		delete(s.pending, key)
	}
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// keys lists the keys with a pending handle, sorted
func (s *Scheduler) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
