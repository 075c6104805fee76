package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReminderSender is the part of the event service the scheduler drives.
type ReminderSender interface {
	SendReminders(ctx context.Context, window time.Duration) (int, error)
}

// Scheduler runs periodic background jobs.
type Scheduler struct {
	cron     *cron.Cron
	sender   ReminderSender
	schedule string
	window   time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// New creates a scheduler that sends event reminders on schedule (standard 5-field cron).
func New(sender ReminderSender, schedule string, window time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sender:   sender,
		schedule: schedule,
		window:   window,
		timeout:  2 * time.Minute,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runReminders); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to send event reminders")
	}
}

// RunOnce performs a single reminder pass.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	sent, err := s.sender.SendReminders(ctx, s.window)
	if err != nil {
		return 0, err
	}
	if sent > 0 {
		s.log.Info().
			Int("notifications", sent).
			Dur("window", s.window).
			Dur("took", time.Since(start)).
			Msg("event reminders sent")
	}
	return sent, nil
}
