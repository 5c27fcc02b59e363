package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/internal/domain/ranking"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/dateutil"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm"
)

type StandaloneWinnerDomain interface {
	Create(context.Context, *model.CreateStandaloneWinnerRequest) (*model.CreateStandaloneWinnerResponse, error)
	Update(context.Context, *model.UpdateStandaloneWinnerRequest) (*model.UpdateStandaloneWinnerResponse, error)
	Delete(context.Context, *model.DeleteStandaloneWinnerRequest) (*model.DeleteStandaloneWinnerResponse, error)
	GetList(context.Context, *model.GetListStandaloneWinnerRequest) (*model.GetListStandaloneWinnerResponse, error)
}

type standaloneWinnerDomain struct {
	winnerRepo repository.StandaloneWinnerRepository
	statsRepo  repository.ContestStatsRepository
	clock      func() time.Time
}

func NewStandaloneWinnerDomain(
	winnerRepo repository.StandaloneWinnerRepository,
	statsRepo repository.ContestStatsRepository,
) *standaloneWinnerDomain {
	return &standaloneWinnerDomain{
		winnerRepo: winnerRepo,
		statsRepo:  statsRepo,
		clock:      time.Now,
	}
}

func (d *standaloneWinnerDomain) weekOf(ctx context.Context, t time.Time) string {
	return dateutil.WeekOf(t, xcontext.Configs(ctx).Contest.Location()).Key()
}

// loadRanking returns the active winners of a week as stored, together with
// the compacted ranking built from them.
func (d *standaloneWinnerDomain) loadRanking(
	ctx context.Context, weekOfYear string,
) ([]ranking.Slot, *ranking.Ranking, error) {
	winners, err := d.winnerRepo.GetActiveByWeek(ctx, weekOfYear)
	if err != nil {
		return nil, nil, err
	}

	stored := make([]ranking.Slot, 0, len(winners))
	for _, w := range winners {
		stored = append(stored, ranking.Slot{Key: w.ID, Position: w.Position})
	}

	return stored, ranking.New(stored), nil
}

func (d *standaloneWinnerDomain) Create(
	ctx context.Context, req *model.CreateStandaloneWinnerRequest,
) (*model.CreateStandaloneWinnerResponse, error) {
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty first name")
	}

	if req.Amount < 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be non-negative")
	}

	if req.Position < 0 {
		return nil, errorx.New(errorx.BadRequest, "Position must be positive")
	}

	drawDate := req.DrawDate
	if drawDate.IsZero() {
		drawDate = d.clock()
	}

	actor := contest.Admin(xcontext.RequestUserID(ctx))
	winner := &entity.StandaloneWinner{
		Base:       entity.Base{ID: uuid.NewString()},
		FirstName:  firstName,
		LastName:   strings.TrimSpace(req.LastName),
		UserID:     sql.NullString{Valid: req.UserID != "", String: req.UserID},
		Prize:      req.Prize,
		Amount:     req.Amount,
		DrawDate:   drawDate.UTC(),
		WeekOfYear: d.weekOf(ctx, drawDate),
		IsActive:   true,
		CreatedBy:  actor.NullString(),
		UpdatedBy:  actor.NullString(),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	stored, ranks, err := d.loadRanking(ctx, winner.WeekOfYear)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winners of week %s: %v", winner.WeekOfYear, err)
		return nil, errorx.Unknown
	}

	target := req.Position
	if target == 0 {
		target = ranks.Len() + 1
	}

	winner.Position, err = ranks.Insert(winner.ID, target)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot rank winner: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.winnerRepo.Create(ctx, winner); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create standalone winner: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.winnerRepo.UpdatePositions(ctx, ranking.Diff(stored, ranks.Slots())); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update winner positions: %v", err)
		return nil, errorx.Unknown
	}

	delta := repository.StatsDelta{Winners: 1, Gains: winner.Amount}
	if err := d.statsRepo.Adjust(ctx, delta, winner.DrawDate); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot adjust contest stats: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateStandaloneWinnerResponse{Winner: model.ConvertStandaloneWinner(winner)}, nil
}

func (d *standaloneWinnerDomain) getActive(ctx context.Context, id string) (*entity.StandaloneWinner, error) {
	winner, err := d.winnerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found winner")
		}

		xcontext.Logger(ctx).Errorf("Cannot get standalone winner: %v", err)
		return nil, errorx.Unknown
	}

	if !winner.IsActive {
		return nil, errorx.New(errorx.NotFound, "Not found winner")
	}

	return winner, nil
}

func (d *standaloneWinnerDomain) Update(
	ctx context.Context, req *model.UpdateStandaloneWinnerRequest,
) (*model.UpdateStandaloneWinnerResponse, error) {
	if req.Amount != nil && *req.Amount < 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be non-negative")
	}

	if req.Position < 0 {
		return nil, errorx.New(errorx.BadRequest, "Position must be positive")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	winner, err := d.getActive(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	oldAmount := winner.Amount
	if name := strings.TrimSpace(req.FirstName); name != "" {
		winner.FirstName = name
	}

	if name := strings.TrimSpace(req.LastName); name != "" {
		winner.LastName = name
	}

	if req.UserID != nil {
		winner.UserID = sql.NullString{Valid: *req.UserID != "", String: *req.UserID}
	}

	if req.Prize != "" {
		winner.Prize = req.Prize
	}

	if req.Amount != nil {
		winner.Amount = *req.Amount
	}

	oldWeek := winner.WeekOfYear
	if req.DrawDate != nil && !req.DrawDate.IsZero() {
		winner.DrawDate = req.DrawDate.UTC()
		winner.WeekOfYear = d.weekOf(ctx, winner.DrawDate)
	}

	if winner.WeekOfYear != oldWeek {
		// Leave the old week, then enter the new one like a new winner.
		stored, ranks, err := d.loadRanking(ctx, oldWeek)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get winners of week %s: %v", oldWeek, err)
			return nil, errorx.Unknown
		}

		ranks.Remove(winner.ID)
		if err := d.winnerRepo.UpdatePositions(ctx, ranking.Diff(stored, ranks.Slots())); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update winner positions: %v", err)
			return nil, errorx.Unknown
		}

		stored, ranks, err = d.loadRanking(ctx, winner.WeekOfYear)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get winners of week %s: %v", winner.WeekOfYear, err)
			return nil, errorx.Unknown
		}

		target := req.Position
		if target == 0 {
			target = ranks.Len() + 1
		}

		if winner.Position, err = ranks.Insert(winner.ID, target); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot rank winner: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.winnerRepo.UpdatePositions(ctx, ranking.Diff(stored, ranks.Slots())); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update winner positions: %v", err)
			return nil, errorx.Unknown
		}
	} else if req.Position > 0 && req.Position != winner.Position {
		stored, ranks, err := d.loadRanking(ctx, winner.WeekOfYear)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get winners of week %s: %v", winner.WeekOfYear, err)
			return nil, errorx.Unknown
		}

		if winner.Position, err = ranks.Move(winner.ID, req.Position); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot move winner: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.winnerRepo.UpdatePositions(ctx, ranking.Diff(stored, ranks.Slots())); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update winner positions: %v", err)
			return nil, errorx.Unknown
		}
	}

	winner.UpdatedBy = contest.Admin(xcontext.RequestUserID(ctx)).NullString()
	if err := d.winnerRepo.Update(ctx, winner); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update standalone winner: %v", err)
		return nil, errorx.Unknown
	}

	delta := repository.StatsDelta{Gains: winner.Amount - oldAmount}
	if err := d.statsRepo.Adjust(ctx, delta, winner.DrawDate); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot adjust contest stats: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateStandaloneWinnerResponse{Winner: model.ConvertStandaloneWinner(winner)}, nil
}

// Delete deactivates the winner and closes the gap it leaves in its week.
func (d *standaloneWinnerDomain) Delete(
	ctx context.Context, req *model.DeleteStandaloneWinnerRequest,
) (*model.DeleteStandaloneWinnerResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	winner, err := d.getActive(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.winnerRepo.Deactivate(ctx, winner.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found winner")
		}

		xcontext.Logger(ctx).Errorf("Cannot deactivate standalone winner: %v", err)
		return nil, errorx.Unknown
	}

	stored, ranks, err := d.loadRanking(ctx, winner.WeekOfYear)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winners of week %s: %v", winner.WeekOfYear, err)
		return nil, errorx.Unknown
	}

	if err := d.winnerRepo.UpdatePositions(ctx, ranking.Diff(stored, ranks.Slots())); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update winner positions: %v", err)
		return nil, errorx.Unknown
	}

	delta := repository.StatsDelta{Winners: -1, Gains: -winner.Amount}
	if err := d.statsRepo.Adjust(ctx, delta, winner.DrawDate); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot adjust contest stats: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteStandaloneWinnerResponse{}, nil
}

func (d *standaloneWinnerDomain) GetList(
	ctx context.Context, req *model.GetListStandaloneWinnerRequest,
) (*model.GetListStandaloneWinnerResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	if req.WeekOfYear != "" {
		if _, err := dateutil.ParseWeekKey(req.WeekOfYear); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Week must be in form of YYYY-Www")
		}
	}

	winners, err := d.winnerRepo.GetList(ctx, repository.StandaloneWinnerFilter{
		WeekOfYear:      req.WeekOfYear,
		IncludeInactive: req.IncludeInactive,
		Offset:          offset,
		Limit:           limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get standalone winners: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetListStandaloneWinnerResponse{Winners: []model.StandaloneWinner{}}
	for i := range winners {
		resp.Winners = append(resp.Winners, model.ConvertStandaloneWinner(&winners[i]))
		if winners[i].IsActive {
			resp.TotalAmount += winners[i].Amount
		}
	}

	return resp, nil
}
