package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/jmichard/tourneyhub/internal/metrics"
	"github.com/jmichard/tourneyhub/internal/repo"
)

// Run starts a background scheduler that refreshes the users_total and
// tournaments_total gauges from the store every minute. It stops when ctx is
// canceled. An initial refresh runs immediately so the gauges are populated
// before the first tick.
func Run(ctx context.Context, userRepo *repo.UserRepo, tournamentRepo *repo.TournamentRepo) {
	refresh := func() {
		if n, err := userRepo.Count(ctx); err != nil {
			slog.Warn("scheduler: count users", "error", err)
		} else {
			metrics.SetUsersTotal(n)
		}
		if n, err := tournamentRepo.Count(ctx); err != nil {
			slog.Warn("scheduler: count tournaments", "error", err)
		} else {
			metrics.SetTournamentsTotal(n)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc("@every 1m", refresh); err != nil {
		slog.Error("scheduler: add refresh job", "error", err)
		return
	}

	refresh()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}
