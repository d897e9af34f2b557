package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler submits a stock export on a cron schedule. A tick that finds the
// runner busy is skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	dir    string
	log    zerolog.Logger
	now    func() time.Time
}

func NewScheduler(runner *Runner, dir string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		dir:    dir,
		log:    log.With().Str("component", "scheduler").Logger(),
		now:    time.Now,
	}
}

// Start registers the export for spec (standard five-field cron syntax) and
// starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Trigger(); err != nil {
			s.log.Warn().Err(err).Msg("scheduled stock export skipped")
		}
	})
	if err != nil {
		return fmt.Errorf("register export schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", spec).Str("dir", s.dir).Msg("scheduled stock export enabled")
	return nil
}

// Stop halts the cron loop. The returned context is done once a running
// tick has returned; the export task itself is owned by the runner.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Trigger submits one stock export into the export directory right away.
func (s *Scheduler) Trigger() (*Handle, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, "stocks-"+s.now().Format("20060102-150405")+".csv")

	h, err := s.runner.Submit(context.Background(), NewExportStock(path))
	if errors.Is(err, ErrBusy) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("submit scheduled export: %w", err)
	}
	return h, nil
}
