package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/questx-lab/contest-backoffice/internal/domain/cron"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadNotifier()
	s.loadStorage()
	s.loadRepos()
	s.loadDomains()
	defer s.stop()

	signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewWeeklyContestCronJob(
		s.weeklyContestDomain, s.configs.Contest.WeeklyCheckInterval))
	cronJobManager.Register(cron.NewAutoDrawCronJob(
		s.weeklyContestDomain, s.configs.Contest.DrawInterval))
	// A signal only stops scheduling, the running pass keeps s.ctx.
	cronJobManager.Start(s.ctx)

	<-signalCtx.Done()
	cronJobManager.Stop(s.ctx)
	cronJobManager.Wait()
	s.weeklyContestDomain.WaitNotifications()

	s.logger.Infof("Cron jobs stopped")
	return nil
}
