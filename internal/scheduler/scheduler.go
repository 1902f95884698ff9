package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/storage"
)

// Scheduler runs AI store maintenance on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	store   storage.Store
	ttl     time.Duration
	mu      sync.Mutex
	entryID cron.EntryID
	started bool
	now     func() time.Time
}

func New(store storage.Store, ttl time.Duration) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// SchedulePrune registers the prune job. spec is a standard 5 field cron
// expression or a descriptor such as "@hourly".
func (s *Scheduler) SchedulePrune(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Prune(); err != nil {
			logger.Error("AI store prune failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", spec, err)
	}
	s.entryID = entryID
	return nil
}

// Prune removes entries older than the TTL and flushes buffered stores.
// A TTL of zero keeps entries forever, so nothing is removed.
func (s *Scheduler) Prune() (int, error) {
	if s.ttl <= 0 {
		if f, ok := s.store.(storage.Flusher); ok {
			return 0, f.Flush()
		}
		return 0, nil
	}

	removed, err := s.store.Prune(s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if f, ok := s.store.(storage.Flusher); ok {
		if err := f.Flush(); err != nil {
			return removed, err
		}
	}
	logger.Info("AI store pruned", "removed", removed, "stats", s.store.Stats())
	return removed, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		<-s.cron.Stop().Done()
		s.started = false
	}
}
