package domain

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm"
)

var errConcurrentUpdate = errorx.New(errorx.Conflict, "Contest was modified by another request, please retry")

func getContest(ctx context.Context, contestRepo repository.ContestRepository, id string) (*entity.Contest, error) {
	if id == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty contest id")
	}

	c, err := contestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found contest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get contest: %v", err)
		return nil, errorx.Unknown
	}

	return c, nil
}

// saveContest writes the aggregate and the matching ledger adjustment in one
// transaction.
func saveContest(
	ctx context.Context,
	contestRepo repository.ContestRepository,
	statsRepo repository.ContestStatsRepository,
	c *entity.Contest,
	delta repository.StatsDelta,
	now time.Time,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := contestRepo.UpdateAggregate(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errConcurrentUpdate
		}

		xcontext.Logger(ctx).Errorf("Cannot update contest: %v", err)
		return errorx.Unknown
	}

	if err := statsRepo.Adjust(ctx, delta, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot adjust contest stats: %v", err)
		return errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return errorx.Unknown
	}

	return nil
}

// pagination applies the configured default and cap on limit.
func pagination(ctx context.Context, offset, limit int) (int, int, error) {
	cfg := xcontext.Configs(ctx).ApiServer
	if offset < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Offset must be non-negative")
	}

	if limit == 0 {
		limit = cfg.DefaultLimit
	}

	if limit < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		return 0, 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", cfg.MaxLimit)
	}

	return offset, limit, nil
}

func prizesFromConfig(ctx context.Context) []entity.ContestPrize {
	result := []entity.ContestPrize{}
	for _, p := range xcontext.Configs(ctx).Contest.Prizes {
		result = append(result, entity.ContestPrize{Label: p.Label, Amount: p.Amount})
	}

	return result
}

func maxWinnersFromConfig(ctx context.Context) int {
	if n := xcontext.Configs(ctx).Contest.MaxWinners; n > 0 {
		return n
	}

	return contest.DefaultMaxWinners
}
