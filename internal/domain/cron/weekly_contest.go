package cron

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/domain"
	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

const defaultWeeklyCheckInterval = time.Hour

// WeeklyContestCronJob makes sure the current week has its contest.
type WeeklyContestCronJob struct {
	weeklyContestDomain domain.WeeklyContestDomain
	interval            time.Duration
}

func NewWeeklyContestCronJob(
	weeklyContestDomain domain.WeeklyContestDomain, interval time.Duration,
) *WeeklyContestCronJob {
	if interval <= 0 {
		interval = defaultWeeklyCheckInterval
	}

	return &WeeklyContestCronJob{
		weeklyContestDomain: weeklyContestDomain,
		interval:            interval,
	}
}

func (job *WeeklyContestCronJob) Do(ctx context.Context) error {
	c, err := job.weeklyContestDomain.CreateWeeklyContest(ctx, contest.System)
	if err != nil {
		if errors.Is(err, contest.ErrDuplicateWeeklyContest) {
			return nil
		}

		return err
	}

	xcontext.Logger(ctx).Infof("Created weekly contest %s", c.WeeklyKey.String)
	return nil
}

func (job *WeeklyContestCronJob) RunNow() bool {
	return true
}

func (job *WeeklyContestCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
