package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"backend-raceplanner/internal/shared/logging"

	"github.com/jasonlvhit/gocron"
)

type SyncSource interface {
	UsersSyncedSince(ctx context.Context, since time.Time) ([]string, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, userID string) (int, error)
}

// Janitor drops cached history of athletes whose activities were synced since
// the previous sweep. It only talks to the activity store and the cache.
type Janitor struct {
	source SyncSource
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

func NewJanitor(source SyncSource, cache Invalidator, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Janitor{
		source:    source,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Sweep runs one invalidation pass and returns the number of dropped keys.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	startedAt := j.now()
	users, err := j.source.UsersSyncedSince(ctx, j.lastSweep)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, userID := range users {
		n, err := j.cache.Invalidate(ctx, userID)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	j.lastSweep = startedAt
	j.logger.Info("activity cache sweep", "users", len(users), "keys_removed", removed)
	return removed, nil
}

func (j *Janitor) sweepJob(ctx context.Context) {
	if _, err := j.Sweep(ctx); err != nil {
		j.logger.Warn("activity cache sweep failed", "error", err)
	}
}

// Schedule runs Sweep every interval minutes until the returned stop func is called.
func (j *Janitor) Schedule(ctx context.Context, everyMinutes uint64) (func(), error) {
	if everyMinutes == 0 {
		everyMinutes = 15
	}
	s := gocron.NewScheduler()
	if err := s.Every(everyMinutes).Minutes().Do(j.sweepJob, ctx); err != nil {
		return nil, fmt.Errorf("schedule activity cache sweep: %w", err)
	}
	stopped := s.Start()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.Clear()
			close(stopped)
		})
	}, nil
}
