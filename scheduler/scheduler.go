package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"veil_server/services"
)

// Scheduler owns the background cron jobs: the nightly credit sweep and the
// persona reply dispatcher. Both are cheap enough to run in-process next to
// the HTTP server.
type Scheduler struct {
	cron    *cron.Cron
	Users   services.UserStore
	Credits *services.CreditService
	Replies *services.PersonaReplyService
	Log     zerolog.Logger
}

func New(users services.UserStore, credits *services.CreditService, replies *services.PersonaReplyService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		Users:   users,
		Credits: credits,
		Replies: replies,
		Log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the jobs and launches the cron loop. The reply dispatcher
// runs every dispatchInterval; the credit sweep at midnight UTC. Refresh
// stays lazy on the read path too, the sweep just keeps balances warm for
// users who have not logged in yet.
func (s *Scheduler) Start(dispatchInterval time.Duration) error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", dispatchInterval), s.dispatchReplies); err != nil {
		return fmt.Errorf("failed to schedule reply dispatcher: %w", err)
	}
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.sweepCredits); err != nil {
		return fmt.Errorf("failed to schedule credit sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) dispatchReplies() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.Replies.DispatchDue(ctx)
}

func (s *Scheduler) sweepCredits() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ids, err := s.Users.ListActiveIDs(ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("credit sweep could not list users")
		return
	}
	refreshed := 0
	for _, id := range ids {
		if err := s.Credits.RefreshIfDue(ctx, id); err != nil {
			s.Log.Warn().Err(err).Str("userId", id).Msg("credit refresh failed")
			continue
		}
		refreshed++
	}
	s.Log.Info().Int("users", len(ids)).Int("refreshed", refreshed).Msg("credit sweep finished")
}
