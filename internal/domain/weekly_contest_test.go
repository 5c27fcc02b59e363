package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/client"
	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/testutil"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

// 2024-03-13 is the Wednesday of ISO week 2024-W11.
var testNow = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

func newTestWeeklyContestDomain(notifier client.Notifier) *weeklyContestDomain {
	d := NewWeeklyContestDomain(
		repository.NewContestRepository(),
		repository.NewUserRepository(),
		repository.NewContestStatsRepository(),
		notifier,
		nil,
	)
	d.clock = func() time.Time { return testNow }
	return d
}

func joinContest(t *testing.T, ctx context.Context, c *entity.Contest, userIDs ...string) {
	for _, id := range userIDs {
		_, err := contest.AddParticipant(c, id, c.StartDate.Add(time.Hour))
		require.NoError(t, err)
	}

	require.NoError(t, repository.NewContestRepository().UpdateAggregate(ctx, c))
}

func Test_weeklyContestDomain_CurrentWeekKey(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestWeeklyContestDomain(nil)
	require.Equal(t, "2024-W11", d.CurrentWeekKey(ctx))

	d.clock = func() time.Time { return time.Date(2021, 1, 3, 23, 0, 0, 0, time.UTC) }
	require.Equal(t, "2020-W53", d.CurrentWeekKey(ctx))

	d.clock = func() time.Time { return time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC) }
	require.Equal(t, "2025-W01", d.CurrentWeekKey(ctx))
}

func Test_weeklyContestDomain_CreateWeeklyContest(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestWeeklyContestDomain(nil)

	c, err := d.FindCurrentWeeklyContest(ctx)
	require.NoError(t, err)
	require.Nil(t, c)

	c, err = d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	require.Equal(t, "2024-W11", c.WeeklyKey.String)
	require.Equal(t, 11, c.WeekNumber)
	require.Equal(t, 2024, c.Year)
	require.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), c.StartDate)
	require.Equal(t, time.Date(2024, 3, 17, 23, 59, 59, 0, time.UTC), c.EndDate)
	require.Equal(t, c.EndDate.Add(time.Hour), c.DrawDate)
	require.Equal(t, entity.ContestStatusActive, c.Status)
	require.True(t, c.AutoDrawEnabled)
	require.False(t, c.CreatedBy.Valid)
	require.Equal(t, 3, c.MaxWinners)
	require.Len(t, c.Prizes, 3)

	_, err = d.CreateWeeklyContest(ctx, contest.Admin(testutil.AdminID))
	require.ErrorIs(t, err, contest.ErrDuplicateWeeklyContest)

	found, err := d.FindCurrentWeeklyContest(ctx)
	require.NoError(t, err)
	require.Equal(t, c.ID, found.ID)

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalContests)
}

func Test_weeklyContestDomain_CreateWeeklyContest_DrawBeforeEnd(t *testing.T) {
	cfg := testutil.MockConfigs()
	cfg.Contest.DrawDelay = -2 * time.Hour
	ctx := xcontext.WithConfigs(testutil.MockContext(), cfg)
	d := newTestWeeklyContestDomain(nil)

	_, err := d.CreateWeeklyContest(ctx, contest.System)
	require.ErrorIs(t, err, contest.ErrInvalidSchedule)

	c, err := d.FindCurrentWeeklyContest(ctx)
	require.NoError(t, err)
	require.Nil(t, c)

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.TotalContests)

	// A zero delay draws right at the end of the week.
	cfg.Contest.DrawDelay = 0
	ctx = xcontext.WithConfigs(ctx, cfg)
	c, err = d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	require.Equal(t, c.EndDate, c.DrawDate)
}

func Test_weeklyContestDomain_Create(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.AdminID)
	d := newTestWeeklyContestDomain(nil)

	resp, err := d.Create(ctx, &model.CreateWeeklyContestRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.AdminID, resp.Contest.CreatedBy)

	current, err := d.GetCurrent(ctx, &model.GetCurrentWeeklyContestRequest{})
	require.NoError(t, err)
	require.Equal(t, "2024-W11", current.WeekKey)
	require.NotNil(t, current.Contest)
	require.Equal(t, resp.Contest.ID, current.Contest.ID)
}

func Test_weeklyContestDomain_PerformAutoDraws(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 5)
	notifier := &testutil.MockNotifier{}
	d := newTestWeeklyContestDomain(notifier)

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	joinContest(t, ctx, c, players...)

	// Not due yet.
	report, err := d.PerformAutoDraws(ctx, c.EndDate)
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{}, report)

	drawAt := c.DrawDate.Add(time.Minute)
	report, err = d.PerformAutoDraws(ctx, drawAt)
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{Checked: 1, Drawn: 1}, report)

	drawn, err := repository.NewContestRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ContestStatusCompleted, drawn.Status)
	require.True(t, drawn.DrawCompleted)
	require.True(t, drawn.DrawCompletedAt.Valid)
	require.True(t, drawAt.Equal(drawn.DrawCompletedAt.Time))
	require.Len(t, drawn.Participants, 5)
	require.Equal(t, 5, drawn.CurrentParticipants)
	require.Len(t, drawn.Winners, 3)

	winners := map[string]bool{}
	for i, w := range drawn.Winners {
		require.Equal(t, i+1, w.Position)
		require.Contains(t, players, w.UserID)
		require.False(t, winners[w.UserID])
		winners[w.UserID] = true
	}

	for _, p := range drawn.Participants {
		require.Equal(t, winners[p.UserID], p.IsWinner)
	}

	require.Equal(t, "Gold", drawn.Winners[0].Prize)
	require.Equal(t, 100.0, drawn.Winners[0].PrizeAmount)

	d.WaitNotifications()
	notifications := notifier.Notifications()
	require.Len(t, notifications, 3)
	for _, n := range notifications {
		require.True(t, winners[n.UserID])
		require.Equal(t, c.ID, n.ContestID)
		require.Equal(t, fmt.Sprintf("%s@example.com", n.UserID), n.Email)
	}

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalWinners)
	require.Equal(t, 175.0, stats.TotalGains)

	// The contest is never drawn twice.
	report, err = d.PerformAutoDraws(ctx, drawAt.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{}, report)
}

func Test_weeklyContestDomain_drawContest_AlreadyDrawn(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 5)
	notifier := &testutil.MockNotifier{}
	d := newTestWeeklyContestDomain(notifier)
	contestRepo := repository.NewContestRepository()

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	joinContest(t, ctx, c, players...)

	// Both workers loaded the contest before any of them drew it.
	first, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	second, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	drawAt := c.DrawDate.Add(time.Minute)
	outcome, err := d.drawContest(ctx, first, drawAt)
	require.NoError(t, err)
	require.Equal(t, drawDone, outcome)

	outcome, err = d.drawContest(ctx, second, drawAt)
	require.NoError(t, err)
	require.Equal(t, drawSkipped, outcome)

	d.WaitNotifications()
	require.Len(t, notifier.Notifications(), 3)

	drawn, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, drawn.Winners, 3)
	for i, w := range drawn.Winners {
		require.Equal(t, first.Winners[i].UserID, w.UserID)
	}

	stats, err := repository.NewContestStatsRepository().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalWinners)
}

func Test_weeklyContestDomain_drawContest_AdminEdit(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 5)
	notifier := &testutil.MockNotifier{}
	d := newTestWeeklyContestDomain(notifier)
	contestRepo := repository.NewContestRepository()
	statsRepo := repository.NewContestStatsRepository()

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	joinContest(t, ctx, c, players...)
	drawAt := c.DrawDate.Add(time.Minute)

	// The draw loaded the contest, then an admin picked a winner.
	stale, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	edited, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	amount := 999.0
	winner, err := contest.SelectWinner(edited, contest.Selection{
		UserID:      players[0],
		Position:    1,
		PrizeAmount: &amount,
		By:          contest.Admin(testutil.AdminID),
	}, drawAt)
	require.NoError(t, err)
	require.NoError(t, saveContest(ctx, contestRepo, statsRepo, edited,
		repository.StatsDelta{Winners: 1, Gains: winner.PrizeAmount}, drawAt))

	outcome, err := d.drawContest(ctx, stale, drawAt)
	require.NoError(t, err)
	require.Equal(t, drawSkipped, outcome)

	d.WaitNotifications()
	require.Empty(t, notifier.Notifications())

	current, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, current.DrawCompleted)
	require.Len(t, current.Winners, 1)
	require.Equal(t, players[0], current.Winners[0].UserID)
	require.Equal(t, 999.0, current.Winners[0].PrizeAmount)

	stats, err := statsRepo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalWinners)
	require.Equal(t, 999.0, stats.TotalGains)

	// The next pass draws from the fresh contest and keeps the admin's winner.
	report, err := d.PerformAutoDraws(ctx, drawAt)
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{Checked: 1, Drawn: 1}, report)

	drawn, err := contestRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, drawn.DrawCompleted)
	require.Len(t, drawn.Winners, 3)
	require.Equal(t, players[0], drawn.Winners[0].UserID)

	var gains float64
	for _, w := range drawn.Winners {
		gains += w.PrizeAmount
	}

	stats, err = statsRepo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(len(drawn.Winners)), stats.TotalWinners)
	require.InDelta(t, gains, stats.TotalGains, 1e-9)
}

func Test_weeklyContestDomain_PerformAutoDraws_Eligibility(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 4)
	d := newTestWeeklyContestDomain(&testutil.MockNotifier{})

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	joinContest(t, ctx, c, players...)

	// player1 is already a winner, player2 and player3 are inactive.
	_, err = contest.SelectWinner(c, contest.Selection{
		UserID: players[0], Position: 1, By: contest.Admin(testutil.AdminID),
	}, c.EndDate)
	require.NoError(t, err)
	require.NoError(t, repository.NewContestRepository().UpdateAggregate(ctx, c))
	require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).
		Where("id IN (?)", players[1:3]).Update("is_active", false).Error)

	report, err := d.PerformAutoDraws(ctx, c.DrawDate)
	require.NoError(t, err)
	require.Equal(t, 1, report.Drawn)

	drawn, err := repository.NewContestRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, drawn.Winners, 2)
	require.Equal(t, players[0], drawn.Winners[0].UserID)
	require.Equal(t, players[3], drawn.Winners[1].UserID)
	d.WaitNotifications()
}

func Test_weeklyContestDomain_PerformAutoDraws_NoParticipant(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestWeeklyContestDomain(&testutil.MockNotifier{})

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)

	report, err := d.PerformAutoDraws(ctx, c.DrawDate)
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{Checked: 1, Drawn: 1}, report)

	drawn, err := repository.NewContestRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, drawn.DrawCompleted)
	require.Equal(t, entity.ContestStatusCompleted, drawn.Status)
	require.Empty(t, drawn.Winners)
}

func Test_weeklyContestDomain_PerformAutoDraws_NotificationFailure(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 5)
	notifier := &testutil.MockNotifier{
		NotifyWinnerFunc: func(context.Context, *model.WinnerNotification) error {
			return errors.New("broker is down")
		},
	}
	d := newTestWeeklyContestDomain(notifier)

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	joinContest(t, ctx, c, players...)

	report, err := d.PerformAutoDraws(ctx, c.DrawDate)
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{Checked: 1, Drawn: 1}, report)

	d.WaitNotifications()
	require.Equal(t, int64(3), d.NotificationFailures())

	drawn, err := repository.NewContestRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, drawn.DrawCompleted)
}

func Test_weeklyContestDomain_PerformAutoDraws_LeaseHeld(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 5)
	notifier := &testutil.MockNotifier{}
	d := newTestWeeklyContestDomain(notifier)

	released := false
	d.redisClient = &testutil.MockRedisClient{
		SetNXFunc: func(context.Context, string, string, time.Duration) (bool, error) {
			return false, nil
		},
		DelIfEqualFunc: func(context.Context, string, string) (bool, error) {
			released = true
			return true, nil
		},
	}

	c, err := d.CreateWeeklyContest(ctx, contest.System)
	require.NoError(t, err)
	joinContest(t, ctx, c, players...)

	report, err := d.PerformAutoDraws(ctx, c.DrawDate)
	require.NoError(t, err)
	require.Equal(t, model.DrawReport{Checked: 1, Skipped: 1}, report)
	require.False(t, released)

	d.WaitNotifications()
	require.Empty(t, notifier.Notifications())

	pending, err := repository.NewContestRepository().GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, pending.DrawCompleted)
}

func Test_weeklyContestDomain_PerformAutoDraws_Uniform(t *testing.T) {
	ctx := testutil.MockContext()
	players := testutil.CreateUsers(ctx, 3)
	d := newTestWeeklyContestDomain(nil)
	contestRepo := repository.NewContestRepository()

	const rounds = 300
	for i := 0; i < rounds; i++ {
		c := &entity.Contest{
			Base:            entity.Base{ID: fmt.Sprintf("contest%d", i)},
			StartDate:       testNow.Add(-48 * time.Hour),
			EndDate:         testNow.Add(-24 * time.Hour),
			DrawDate:        testNow.Add(-time.Hour),
			Status:          entity.ContestStatusActive,
			MaxWinners:      1,
			AutoDrawEnabled: true,
		}
		for _, id := range players {
			c.Participants = append(c.Participants, entity.ContestParticipant{UserID: id, JoinedAt: c.StartDate})
		}
		require.NoError(t, contestRepo.Create(ctx, c))
	}

	report, err := d.PerformAutoDraws(ctx, testNow)
	require.NoError(t, err)
	require.Equal(t, rounds, report.Drawn)

	contests, err := contestRepo.GetList(ctx, repository.ContestFilter{})
	require.NoError(t, err)
	require.Len(t, contests, rounds)

	counts := map[string]int{}
	for _, c := range contests {
		require.Len(t, c.Winners, 1)
		counts[c.Winners[0].UserID]++
	}

	for _, id := range players {
		require.InDelta(t, rounds/3, counts[id], 45, "player %s won %d times", id, counts[id])
	}
}
