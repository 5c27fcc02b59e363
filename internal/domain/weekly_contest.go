package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/contest-backoffice/internal/client"
	"github.com/questx-lab/contest-backoffice/internal/common"
	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/crypto"
	"github.com/questx-lab/contest-backoffice/pkg/dateutil"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/questx-lab/contest-backoffice/pkg/xredis"
	"gorm.io/gorm"
)

type WeeklyContestDomain interface {
	CurrentWeekKey(ctx context.Context) string
	FindCurrentWeeklyContest(ctx context.Context) (*entity.Contest, error)
	CreateWeeklyContest(ctx context.Context, actor contest.Actor) (*entity.Contest, error)
	PerformAutoDraws(ctx context.Context, now time.Time) (model.DrawReport, error)

	GetCurrent(context.Context, *model.GetCurrentWeeklyContestRequest) (*model.GetCurrentWeeklyContestResponse, error)
	Create(context.Context, *model.CreateWeeklyContestRequest) (*model.CreateWeeklyContestResponse, error)
	ForceAutoDraw(context.Context, *model.ForceAutoDrawRequest) (*model.ForceAutoDrawResponse, error)

	NotificationFailures() int64
	WaitNotifications()
}

type drawOutcome int

const (
	drawDone drawOutcome = iota
	drawSkipped
)

type weeklyContestDomain struct {
	contestRepo repository.ContestRepository
	userRepo    repository.UserRepository
	statsRepo   repository.ContestStatsRepository
	notifier    client.Notifier

	// redisClient is optional. Without it the draw relies on the conditional
	// update alone.
	redisClient xredis.Client

	clock func() time.Time

	notifications        sync.WaitGroup
	notificationFailures *xsync.Counter
}

func NewWeeklyContestDomain(
	contestRepo repository.ContestRepository,
	userRepo repository.UserRepository,
	statsRepo repository.ContestStatsRepository,
	notifier client.Notifier,
	redisClient xredis.Client,
) *weeklyContestDomain {
	return &weeklyContestDomain{
		contestRepo:          contestRepo,
		userRepo:             userRepo,
		statsRepo:            statsRepo,
		notifier:             notifier,
		redisClient:          redisClient,
		clock:                time.Now,
		notificationFailures: new(xsync.Counter),
	}
}

func (d *weeklyContestDomain) currentWeek(ctx context.Context) (dateutil.Week, *time.Location) {
	loc := xcontext.Configs(ctx).Contest.Location()
	return dateutil.WeekOf(d.clock(), loc), loc
}

// CurrentWeekKey returns the ISO week of now, in form of YYYY-Www, as seen in
// the configured timezone.
func (d *weeklyContestDomain) CurrentWeekKey(ctx context.Context) string {
	week, _ := d.currentWeek(ctx)
	return week.Key()
}

// FindCurrentWeeklyContest returns nil without error when the current week
// has no contest yet.
func (d *weeklyContestDomain) FindCurrentWeeklyContest(ctx context.Context) (*entity.Contest, error) {
	c, err := d.contestRepo.GetByWeeklyKey(ctx, d.CurrentWeekKey(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get the current weekly contest: %v", err)
		return nil, errorx.Unknown
	}

	return c, nil
}

func (d *weeklyContestDomain) CreateWeeklyContest(
	ctx context.Context, actor contest.Actor,
) (*entity.Contest, error) {
	week, loc := d.currentWeek(ctx)

	existing, err := d.FindCurrentWeeklyContest(ctx)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, contest.ErrDuplicateWeeklyContest
	}

	cfg := xcontext.Configs(ctx).Contest
	start := week.Start(loc).UTC()
	end := week.End(loc).UTC()

	title := week.Key()
	if cfg.TitlePrefix != "" {
		title = fmt.Sprintf("%s %s", cfg.TitlePrefix, week.Key())
	}

	drawDate := end.Add(cfg.DrawDelay)
	if err := contest.ValidateSchedule(start, end, drawDate); err != nil {
		xcontext.Logger(ctx).Errorf("Invalid weekly contest schedule %s - %s, draw at %s", start, end, drawDate)
		return nil, err
	}

	c := &entity.Contest{
		Base:            entity.Base{ID: uuid.NewString()},
		Title:           title,
		WeeklyKey:       sql.NullString{Valid: true, String: week.Key()},
		WeekNumber:      week.Number,
		Year:            week.Year,
		StartDate:       start,
		EndDate:         end,
		DrawDate:        drawDate,
		Status:          entity.ContestStatusActive,
		MaxWinners:      maxWinnersFromConfig(ctx),
		Prizes:          prizesFromConfig(ctx),
		AutoDrawEnabled: true,
		CreatedBy:       actor.NullString(),
		UpdatedBy:       actor.NullString(),
	}

	if err := d.insertContest(ctx, c); err != nil {
		// A concurrent creator may have won the unique weekly key.
		if existing, findErr := d.FindCurrentWeeklyContest(ctx); findErr == nil && existing != nil {
			return nil, contest.ErrDuplicateWeeklyContest
		}

		xcontext.Logger(ctx).Errorf("Cannot create weekly contest: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Weekly contest %s is created by %s", week.Key(), actor)
	return c, nil
}

func (d *weeklyContestDomain) insertContest(ctx context.Context, c *entity.Contest) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.contestRepo.Create(ctx, c); err != nil {
		return err
	}

	if err := d.statsRepo.Adjust(ctx, repository.StatsDelta{Contests: 1}, d.clock()); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

// PerformAutoDraws draws every contest which is due at now. A contest which
// fails is counted and logged, the others are still drawn.
func (d *weeklyContestDomain) PerformAutoDraws(ctx context.Context, now time.Time) (model.DrawReport, error) {
	report := model.DrawReport{}

	contests, err := d.contestRepo.GetDueForDraw(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contests due for draw: %v", err)
		return report, errorx.Unknown
	}

	report.Checked = len(contests)
	for i := range contests {
		outcome, err := d.drawContest(ctx, &contests[i], now)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot draw contest %s: %v", contests[i].ID, err)
			report.Failed++
			continue
		}

		switch outcome {
		case drawDone:
			report.Drawn++
		case drawSkipped:
			report.Skipped++
		}
	}

	if report.Checked > 0 {
		xcontext.Logger(ctx).Infof("Auto draw pass: checked=%d drawn=%d skipped=%d failed=%d",
			report.Checked, report.Drawn, report.Skipped, report.Failed)
	}

	return report, nil
}

func (d *weeklyContestDomain) drawContest(
	ctx context.Context, c *entity.Contest, now time.Time,
) (drawOutcome, error) {
	if d.redisClient != nil {
		key := common.RedisKeyContestDraw(c.ID)
		token := uuid.NewString()
		ttl := xcontext.Configs(ctx).Contest.DrawLockTTL
		if ttl <= 0 {
			ttl = time.Minute
		}

		ok, err := d.redisClient.SetNX(ctx, key, token, ttl)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot take draw lease of contest %s: %v", c.ID, err)
		} else if !ok {
			xcontext.Logger(ctx).Infof("Contest %s is being drawn by another worker", c.ID)
			return drawSkipped, nil
		} else {
			defer func() {
				if _, err := d.redisClient.DelIfEqual(ctx, key, token); err != nil {
					xcontext.Logger(ctx).Warnf("Cannot release draw lease of contest %s: %v", c.ID, err)
				}
			}()
		}
	}

	participantIDs := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		participantIDs = append(participantIDs, p.UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, participantIDs)
	if err != nil {
		return drawSkipped, fmt.Errorf("cannot get participants: %w", err)
	}

	userByID := make(map[string]entity.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	pool := []string{}
	for _, id := range contest.Eligible(c) {
		if u, ok := userByID[id]; ok && u.IsActive {
			pool = append(pool, id)
		}
	}

	ordered := make([]string, 0, contest.MaxWinners(c))
	for _, w := range c.Winners {
		ordered = append(ordered, w.UserID)
	}

	free := contest.MaxWinners(c) - len(ordered)
	if free < 0 {
		free = 0
	}

	for _, i := range crypto.SampleWithoutReplacement(len(pool), free) {
		ordered = append(ordered, pool[i])
	}

	change, err := contest.SelectMultipleWinners(c, ordered, contest.System, now)
	if err != nil {
		return drawSkipped, err
	}

	if err := d.completeDraw(ctx, c, change, now); err != nil {
		if errors.Is(err, contest.ErrDrawAlreadyCompleted) {
			xcontext.Logger(ctx).Infof("Contest %s was already drawn, discard the result", c.ID)
			return drawSkipped, nil
		}

		if errors.Is(err, errConcurrentUpdate) {
			xcontext.Logger(ctx).Infof("Contest %s changed while drawing, retry on the next pass", c.ID)
			return drawSkipped, nil
		}

		return drawSkipped, err
	}

	for _, w := range c.Winners {
		u := userByID[w.UserID]
		d.notifyWinner(ctx, &model.WinnerNotification{
			ContestID:    c.ID,
			ContestTitle: c.Title,
			UserID:       w.UserID,
			Email:        u.Email,
			Name:         u.Name,
			Position:     w.Position,
			Prize:        w.Prize,
			PrizeAmount:  w.PrizeAmount,
		})
	}

	xcontext.Logger(ctx).Infof("Contest %s is drawn with %d winners out of %d eligible participants",
		c.ID, len(c.Winners), len(pool))
	return drawDone, nil
}

func (d *weeklyContestDomain) completeDraw(
	ctx context.Context, c *entity.Contest, change contest.WinnerChange, now time.Time,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.contestRepo.CompleteDraw(ctx, c, now); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		current, err := d.contestRepo.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}

		if current.DrawCompleted {
			return contest.ErrDrawAlreadyCompleted
		}

		return errConcurrentUpdate
	}

	delta := repository.StatsDelta{Winners: change.WinnerDelta(), Gains: change.GainDelta()}
	if err := d.statsRepo.Adjust(ctx, delta, now); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

// notifyWinner never blocks the draw. Failures are only logged and counted.
func (d *weeklyContestDomain) notifyWinner(ctx context.Context, notification *model.WinnerNotification) {
	if d.notifier == nil {
		return
	}

	// The request context may be canceled as soon as the draw returns.
	notifyCtx := xcontext.WithLogger(context.Background(), xcontext.Logger(ctx))
	notifyCtx = xcontext.WithConfigs(notifyCtx, xcontext.Configs(ctx))

	d.notifications.Add(1)
	go func() {
		defer d.notifications.Done()

		if err := d.notifier.NotifyWinner(notifyCtx, notification); err != nil {
			d.notificationFailures.Inc()
			xcontext.Logger(notifyCtx).Errorf("Cannot notify winner %s of contest %s: %v",
				notification.UserID, notification.ContestID, err)
		}
	}()
}

// NotificationFailures returns how many winner notifications failed so far.
func (d *weeklyContestDomain) NotificationFailures() int64 {
	return d.notificationFailures.Value()
}

// WaitNotifications blocks until every pending notification is sent.
func (d *weeklyContestDomain) WaitNotifications() {
	d.notifications.Wait()
}

func (d *weeklyContestDomain) GetCurrent(
	ctx context.Context, req *model.GetCurrentWeeklyContestRequest,
) (*model.GetCurrentWeeklyContestResponse, error) {
	c, err := d.FindCurrentWeeklyContest(ctx)
	if err != nil {
		return nil, err
	}

	resp := &model.GetCurrentWeeklyContestResponse{WeekKey: d.CurrentWeekKey(ctx)}
	if c != nil {
		converted := model.ConvertContest(c, true)
		resp.Contest = &converted
	}

	return resp, nil
}

func (d *weeklyContestDomain) Create(
	ctx context.Context, req *model.CreateWeeklyContestRequest,
) (*model.CreateWeeklyContestResponse, error) {
	c, err := d.CreateWeeklyContest(ctx, contest.Admin(xcontext.RequestUserID(ctx)))
	if err != nil {
		return nil, err
	}

	return &model.CreateWeeklyContestResponse{Contest: model.ConvertContest(c, false)}, nil
}

func (d *weeklyContestDomain) ForceAutoDraw(
	ctx context.Context, req *model.ForceAutoDrawRequest,
) (*model.ForceAutoDrawResponse, error) {
	report, err := d.PerformAutoDraws(ctx, d.clock())
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Auto draw is forced by %s", xcontext.RequestUserID(ctx))
	return &model.ForceAutoDrawResponse{Report: report}, nil
}
