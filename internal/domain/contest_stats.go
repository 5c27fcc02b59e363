package domain

import (
	"context"
	"regexp"

	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type ContestStatsDomain interface {
	Get(context.Context, *model.GetContestStatsRequest) (*model.GetContestStatsResponse, error)
	Update(context.Context, *model.UpdateContestStatsRequest) (*model.UpdateContestStatsResponse, error)
}

type contestStatsDomain struct {
	statsRepo repository.ContestStatsRepository
}

func NewContestStatsDomain(statsRepo repository.ContestStatsRepository) *contestStatsDomain {
	return &contestStatsDomain{statsRepo: statsRepo}
}

func (d *contestStatsDomain) Get(
	ctx context.Context, req *model.GetContestStatsRequest,
) (*model.GetContestStatsResponse, error) {
	for _, month := range []string{req.From, req.To} {
		if month != "" && !monthPattern.MatchString(month) {
			return nil, errorx.New(errorx.BadRequest, "Month must be in form of YYYY-MM")
		}
	}

	stats, err := d.statsRepo.Get(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contest stats: %v", err)
		return nil, errorx.Unknown
	}

	months, err := d.statsRepo.GetMonths(ctx, req.From, req.To)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get monthly contest stats: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetContestStatsResponse{
		Stats:  model.ConvertContestStats(stats),
		Months: []model.ContestStatsMonth{},
	}

	for _, m := range months {
		resp.Months = append(resp.Months, model.ConvertContestStatsMonth(m))
	}

	return resp, nil
}

// Update overwrites the given totals, the others are kept.
func (d *contestStatsDomain) Update(
	ctx context.Context, req *model.UpdateContestStatsRequest,
) (*model.UpdateContestStatsResponse, error) {
	if (req.TotalGains != nil && *req.TotalGains < 0) ||
		(req.TotalPlacesSold != nil && *req.TotalPlacesSold < 0) ||
		(req.TotalWinners != nil && *req.TotalWinners < 0) ||
		(req.TotalContests != nil && *req.TotalContests < 0) {
		return nil, errorx.New(errorx.BadRequest, "Stats must be non-negative")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	stats, err := d.statsRepo.Get(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contest stats: %v", err)
		return nil, errorx.Unknown
	}

	if req.TotalGains != nil {
		stats.TotalGains = *req.TotalGains
	}

	if req.TotalPlacesSold != nil {
		stats.TotalPlacesSold = *req.TotalPlacesSold
	}

	if req.TotalWinners != nil {
		stats.TotalWinners = *req.TotalWinners
	}

	if req.TotalContests != nil {
		stats.TotalContests = *req.TotalContests
	}

	if err := d.statsRepo.Set(ctx, stats); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set contest stats: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Contest stats are overwritten by %s", xcontext.RequestUserID(ctx))
	return &model.UpdateContestStatsResponse{Stats: model.ConvertContestStats(stats)}, nil
}
