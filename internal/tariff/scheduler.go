package tariff

import (
	"context"
	"sync"
	"time"

	"tariffsvc/internal/adapters"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SyncConfig controls the daily sync trigger. Hour and Minute are UTC
// wall-clock; gocron schedules the first fire later today or tomorrow,
// whichever comes first.
type SyncConfig struct {
	Hour         uint
	Minute       uint
	RunOnStartup bool
	FetchDelay   time.Duration
}

type Scheduler struct {
	repo   adapters.TariffRepository
	lock   adapters.SyncLocker
	client adapters.RatesClient
	cache  adapters.CacheProvider
	cfg    SyncConfig
	// -----
	mu    sync.Mutex // guards sched: the ctx goroutine and callers shut down concurrently
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if runErr := RunSync(jobCtx, execID, s.repo, s.lock, s.client, s.cache, s.cfg.FetchDelay); runErr != nil {
			logrus.Errorf("Tariff sync run %s failed: %v", execID, runErr)
		}
	}

	opts := []gocron.JobOption{
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if s.cfg.RunOnStartup {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.cfg.Hour, s.cfg.Minute, 0))),
		gocron.NewTask(job),
		opts...,
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()
	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

func NewScheduler(
	repo adapters.TariffRepository,
	lock adapters.SyncLocker,
	client adapters.RatesClient,
	cache adapters.CacheProvider,
	cfg SyncConfig,
) *Scheduler {
	if cfg.Hour > 23 {
		cfg.Hour = 0
	}
	if cfg.Minute > 59 {
		cfg.Minute = 0
	}
	return &Scheduler{repo: repo, lock: lock, client: client, cache: cache, cfg: cfg}
}
