package cron

import (
	"context"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/domain"
)

const defaultDrawInterval = 5 * time.Minute

// AutoDrawCronJob draws every contest which is due, once per interval.
type AutoDrawCronJob struct {
	weeklyContestDomain domain.WeeklyContestDomain
	interval            time.Duration
}

func NewAutoDrawCronJob(
	weeklyContestDomain domain.WeeklyContestDomain, interval time.Duration,
) *AutoDrawCronJob {
	if interval <= 0 {
		interval = defaultDrawInterval
	}

	return &AutoDrawCronJob{
		weeklyContestDomain: weeklyContestDomain,
		interval:            interval,
	}
}

func (job *AutoDrawCronJob) Do(ctx context.Context) error {
	_, err := job.weeklyContestDomain.PerformAutoDraws(ctx, time.Now())
	return err
}

func (job *AutoDrawCronJob) RunNow() bool {
	return true
}

func (job *AutoDrawCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
