package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SweepLockKey is the Redis key that elects the instance running a sweep.
const SweepLockKey = "seatplan:sweep:lock"

// releaseScript deletes the lock only if this instance still holds it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// Sweeper periodically archives expired temporary sub-rooms.  With a
// Redis client only one instance sweeps at a time; without one every
// instance sweeps and ArchiveExpired's per-row transactions keep it safe.
type Sweeper struct {
	archives *ArchiveService
	rdb      *redis.Client
	interval time.Duration
	lockTTL  time.Duration
	log      *slog.Logger
	metrics  *Metrics
	token    func() string
}

func NewSweeper(archives *ArchiveService, rdb *redis.Client, interval, lockTTL time.Duration, log *slog.Logger, m *Metrics) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		archives: archives,
		rdb:      rdb,
		interval: interval,
		lockTTL:  lockTTL,
		log:      log,
		metrics:  m,
		token:    uuid.NewString,
	}
}

// Run sweeps every interval until ctx is cancelled.  A non-positive
// interval disables the loop.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("expiry sweeper disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("expiry sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, _, err := s.SweepOnce(ctx); err != nil {
				s.log.Error("expiry sweep failed", "err", err)
			}
		}
	}
}

// SweepOnce runs one sweep if it can take the lock.  ran is false when
// another instance holds it.
func (s *Sweeper) SweepOnce(ctx context.Context) (archived int, ran bool, err error) {
	started := time.Now()
	if s.rdb != nil {
		token := s.token()
		ok, err := s.rdb.SetNX(ctx, SweepLockKey, token, s.lockTTL).Result()
		if err != nil {
			s.metrics.sweep("error", started)
			return 0, false, err
		}
		if !ok {
			s.metrics.sweep("skipped", started)
			return 0, false, nil
		}
		defer func() {
			// release with a fresh context so cancellation does not leak the lock
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.rdb.Eval(rctx, releaseScript, []string{SweepLockKey}, token).Err(); err != nil {
				s.log.Warn("release sweep lock", "err", err)
			}
		}()
	}

	archived, err = s.archives.ArchiveExpired(ctx)
	if err != nil {
		s.metrics.sweep("error", started)
	} else {
		s.metrics.sweep("ok", started)
	}
	if archived > 0 {
		s.log.Info("expired sub-rooms archived", "count", archived)
	}
	return archived, true, err
}
