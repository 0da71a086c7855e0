package ingest

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/0-0Dibakar/AI-Powered-News/config"
	"github.com/0-0Dibakar/AI-Powered-News/internal/cache"
)

const schedulerLockKey = "ingest:lock"

// Scheduler periodically runs the ingestion pipeline. A redis lock keeps
// multiple replicas from ingesting the same pass concurrently.
type Scheduler struct {
	Pipeline *Pipeline
	Cache    *cache.Cache
	Cfg      config.IngestConfig
	Logger   *log.Logger
	Stop     chan struct{}

	lastRun *time.Time
}

func NewScheduler(pipeline *Pipeline, c *cache.Cache, cfg config.IngestConfig, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	return &Scheduler{
		Pipeline: pipeline,
		Cache:    c,
		Cfg:      cfg.Normalize(),
		Logger:   logger,
		Stop:     make(chan struct{}),
	}
}

// Start launches the scheduler loop. It checks the schedule every minute
// and fires when the cron spec says a run is due.
func (s *Scheduler) Start() {
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	if !isDue(s.Cfg.CronSpec, s.lastRun) {
		return
	}
	ctx := context.Background()

	ok, err := s.Cache.Lock(ctx, schedulerLockKey, 10*time.Minute)
	if err != nil {
		s.Logger.Printf("lock failed: %v", err)
		return
	}
	if !ok {
		return
	}
	defer func() {
		if err := s.Cache.Unlock(ctx, schedulerLockKey); err != nil {
			s.Logger.Printf("unlock failed: %v", err)
		}
	}()

	now := time.Now()
	s.lastRun = &now
	if _, err := s.Pipeline.Run(ctx, s.Cfg.Categories); err != nil {
		s.Logger.Printf("ingest pass failed: %v", err)
	}
}

// isDue determines whether a run is due given the cron spec and the last
// run time. Supports "@daily", "@hourly" and 5-field cron expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		return !expr.Next(*last).After(now)
	}
}
