package domain

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/contest-backoffice/internal/common"
	"github.com/questx-lab/contest-backoffice/internal/domain/contest"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/internal/model"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/pkg/enum"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/storage"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

type ContestDomain interface {
	Create(context.Context, *model.CreateContestRequest) (*model.CreateContestResponse, error)
	Get(context.Context, *model.GetContestRequest) (*model.GetContestResponse, error)
	GetList(context.Context, *model.GetListContestRequest) (*model.GetListContestResponse, error)
	Update(context.Context, *model.UpdateContestRequest) (*model.UpdateContestResponse, error)
	UploadBanner(context.Context, *model.UploadContestBannerRequest) (*model.UploadContestBannerResponse, error)

	AddParticipant(context.Context, *model.AddParticipantRequest) (*model.AddParticipantResponse, error)
	RemoveParticipant(context.Context, *model.RemoveParticipantRequest) (*model.RemoveParticipantResponse, error)
	GetListParticipant(context.Context, *model.GetListParticipantRequest) (*model.GetListParticipantResponse, error)

	SelectWinner(context.Context, *model.SelectWinnerRequest) (*model.SelectWinnerResponse, error)
	RemoveWinner(context.Context, *model.RemoveWinnerRequest) (*model.RemoveWinnerResponse, error)
	SelectMultipleWinners(context.Context, *model.SelectMultipleWinnersRequest) (*model.SelectMultipleWinnersResponse, error)
}

type contestDomain struct {
	contestRepo repository.ContestRepository
	userRepo    repository.UserRepository
	statsRepo   repository.ContestStatsRepository
	storage     storage.Storage
	clock       func() time.Time
}

func NewContestDomain(
	contestRepo repository.ContestRepository,
	userRepo repository.UserRepository,
	statsRepo repository.ContestStatsRepository,
	fileStorage storage.Storage,
) *contestDomain {
	return &contestDomain{
		contestRepo: contestRepo,
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		storage:     fileStorage,
		clock:       time.Now,
	}
}

func (d *contestDomain) Create(
	ctx context.Context, req *model.CreateContestRequest,
) (*model.CreateContestResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	if err := contest.ValidateSchedule(req.StartDate, req.EndDate, req.DrawDate); err != nil {
		return nil, err
	}

	maxWinners := req.MaxWinners
	if maxWinners == 0 {
		maxWinners = maxWinnersFromConfig(ctx)
	}

	if maxWinners < 0 || maxWinners > maxWinnersFromConfig(ctx) {
		return nil, errorx.New(errorx.BadRequest, "Max winners must be in range 1..%d", maxWinnersFromConfig(ctx))
	}

	prizes := prizesFromConfig(ctx)
	if len(req.Prizes) > 0 {
		if len(req.Prizes) > maxWinners {
			return nil, errorx.New(errorx.BadRequest, "Got more prizes than winner positions")
		}

		prizes = []entity.ContestPrize{}
		for _, p := range req.Prizes {
			if p.Amount < 0 {
				return nil, errorx.New(errorx.BadRequest, "Prize amount must be non-negative")
			}

			prizes = append(prizes, entity.ContestPrize{Label: p.Label, Amount: p.Amount})
		}
	}

	var maxParticipants sql.NullInt64
	if req.MaxParticipants != nil {
		if *req.MaxParticipants <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Max participants must be positive")
		}

		maxParticipants = sql.NullInt64{Valid: true, Int64: *req.MaxParticipants}
	}

	status := entity.ContestStatusDraft
	if req.Activate {
		status = entity.ContestStatusActive
	}

	actor := contest.Admin(xcontext.RequestUserID(ctx))
	c := &entity.Contest{
		Base:            entity.Base{ID: uuid.NewString()},
		Title:           title,
		Description:     req.Description,
		StartDate:       req.StartDate.UTC(),
		EndDate:         req.EndDate.UTC(),
		DrawDate:        req.DrawDate.UTC(),
		Status:          status,
		MaxParticipants: maxParticipants,
		MaxWinners:      maxWinners,
		Prizes:          prizes,
		AutoDrawEnabled: req.AutoDrawEnabled,
		CreatedBy:       actor.NullString(),
		UpdatedBy:       actor.NullString(),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.contestRepo.Create(ctx, c); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create contest: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.statsRepo.Adjust(ctx, repository.StatsDelta{Contests: 1}, d.clock()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot adjust contest stats: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateContestResponse{Contest: model.ConvertContest(c, false)}, nil
}

func (d *contestDomain) Get(
	ctx context.Context, req *model.GetContestRequest,
) (*model.GetContestResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ID)
	if err != nil {
		return nil, err
	}

	return &model.GetContestResponse{Contest: model.ConvertContest(c, true)}, nil
}

func (d *contestDomain) GetList(
	ctx context.Context, req *model.GetListContestRequest,
) (*model.GetListContestResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	filter := repository.ContestFilter{Offset: offset, Limit: limit}
	if req.Status != "" {
		status, err := enum.ToEnum[entity.ContestStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid contest status")
		}

		filter.Status = status
	}

	contests, err := d.contestRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contest list: %v", err)
		return nil, errorx.Unknown
	}

	total, err := d.contestRepo.Count(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count contests: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetListContestResponse{Contests: []model.Contest{}, Total: total}
	for i := range contests {
		resp.Contests = append(resp.Contests, model.ConvertContest(&contests[i], false))
	}

	return resp, nil
}

func (d *contestDomain) Update(
	ctx context.Context, req *model.UpdateContestRequest,
) (*model.UpdateContestResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		c.Title = title
	}

	if req.Description != "" {
		c.Description = req.Description
	}

	if req.MaxParticipants != nil {
		switch {
		case *req.MaxParticipants <= 0:
			c.MaxParticipants = sql.NullInt64{}
		case *req.MaxParticipants < int64(len(c.Participants)):
			return nil, errorx.New(errorx.BadRequest,
				"Max participants cannot be less than the current participants (%d)", len(c.Participants))
		default:
			c.MaxParticipants = sql.NullInt64{Valid: true, Int64: *req.MaxParticipants}
		}
	}

	if req.AutoDrawEnabled != nil {
		c.AutoDrawEnabled = *req.AutoDrawEnabled
	}

	if req.Status != "" && req.Status != string(c.Status) {
		status, err := enum.ToEnum[entity.ContestStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid contest status")
		}

		if err := contest.Transition(c, status); err != nil {
			return nil, err
		}
	}

	c.UpdatedBy = contest.Admin(xcontext.RequestUserID(ctx)).NullString()
	if err := saveContest(ctx, d.contestRepo, d.statsRepo, c, repository.StatsDelta{}, d.clock()); err != nil {
		return nil, err
	}

	return &model.UpdateContestResponse{Contest: model.ConvertContest(c, false)}, nil
}

func (d *contestDomain) UploadBanner(
	ctx context.Context, req *model.UploadContestBannerRequest,
) (*model.UploadContestBannerResponse, error) {
	cfg := xcontext.Configs(ctx).File
	resp, err := common.ProcessImage(ctx, d.storage, "image", "banners", cfg.BannerMaxWidth)
	if err != nil {
		return nil, err
	}

	contestID := xcontext.HTTPRequest(ctx).FormValue("contest_id")
	c, err := getContest(ctx, d.contestRepo, contestID)
	if err != nil {
		return nil, err
	}

	c.BannerURL = resp.Url
	c.UpdatedBy = contest.Admin(xcontext.RequestUserID(ctx)).NullString()
	if err := saveContest(ctx, d.contestRepo, d.statsRepo, c, repository.StatsDelta{}, d.clock()); err != nil {
		return nil, err
	}

	return &model.UploadContestBannerResponse{URL: resp.Url}, nil
}

func (d *contestDomain) AddParticipant(
	ctx context.Context, req *model.AddParticipantRequest,
) (*model.AddParticipantResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ContestID)
	if err != nil {
		return nil, err
	}

	user, err := d.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found user")
	}

	if !user.IsActive {
		return nil, errorx.New(errorx.BadRequest, "User is inactive")
	}

	now := d.clock()
	added, err := contest.AddParticipant(c, user.ID, now)
	if err != nil {
		return nil, err
	}

	if added {
		c.UpdatedBy = contest.Admin(xcontext.RequestUserID(ctx)).NullString()
		err := saveContest(ctx, d.contestRepo, d.statsRepo, c, repository.StatsDelta{PlacesSold: 1}, now)
		if err != nil {
			return nil, err
		}
	}

	return &model.AddParticipantResponse{Added: added, Contest: model.ConvertContest(c, true)}, nil
}

func (d *contestDomain) RemoveParticipant(
	ctx context.Context, req *model.RemoveParticipantRequest,
) (*model.RemoveParticipantResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ContestID)
	if err != nil {
		return nil, err
	}

	removed, change := contest.RemoveParticipant(c, req.UserID)
	if removed {
		delta := repository.StatsDelta{
			PlacesSold: -1,
			Winners:    change.WinnerDelta(),
			Gains:      change.GainDelta(),
		}

		c.UpdatedBy = contest.Admin(xcontext.RequestUserID(ctx)).NullString()
		if err := saveContest(ctx, d.contestRepo, d.statsRepo, c, delta, d.clock()); err != nil {
			return nil, err
		}
	}

	return &model.RemoveParticipantResponse{Removed: removed, Contest: model.ConvertContest(c, true)}, nil
}

// GetListParticipant lists the participants of one contest, or of every
// contest when no contest is given, latest contests first.
func (d *contestDomain) GetListParticipant(
	ctx context.Context, req *model.GetListParticipantRequest,
) (*model.GetListParticipantResponse, error) {
	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	var contests []entity.Contest
	if req.ContestID != "" {
		c, err := getContest(ctx, d.contestRepo, req.ContestID)
		if err != nil {
			return nil, err
		}

		contests = append(contests, *c)
	} else {
		contests, err = d.contestRepo.GetList(ctx, repository.ContestFilter{})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get contest list: %v", err)
			return nil, errorx.Unknown
		}
	}

	all := []model.ContestParticipant{}
	for _, c := range contests {
		for _, p := range c.Participants {
			all = append(all, model.ContestParticipant{
				Participant:  model.ConvertParticipant(p),
				ContestID:    c.ID,
				ContestTitle: c.Title,
			})
		}
	}

	if offset >= len(all) {
		return &model.GetListParticipantResponse{Participants: []model.ContestParticipant{}}, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return &model.GetListParticipantResponse{Participants: all[offset:end]}, nil
}

func (d *contestDomain) SelectWinner(
	ctx context.Context, req *model.SelectWinnerRequest,
) (*model.SelectWinnerResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ContestID)
	if err != nil {
		return nil, err
	}

	if req.PrizeAmount != nil && *req.PrizeAmount < 0 {
		return nil, errorx.New(errorx.BadRequest, "Prize amount must be non-negative")
	}

	actor := contest.Admin(xcontext.RequestUserID(ctx))
	now := d.clock()
	winner, err := contest.SelectWinner(c, contest.Selection{
		UserID:      req.UserID,
		Position:    req.Position,
		Prize:       req.Prize,
		PrizeAmount: req.PrizeAmount,
		By:          actor,
		Notes:       req.Notes,
	}, now)
	if err != nil {
		return nil, err
	}

	c.UpdatedBy = actor.NullString()
	delta := repository.StatsDelta{Winners: 1, Gains: winner.PrizeAmount}
	if err := saveContest(ctx, d.contestRepo, d.statsRepo, c, delta, now); err != nil {
		return nil, err
	}

	return &model.SelectWinnerResponse{
		Winner:  model.ConvertWinner(winner),
		Contest: model.ConvertContest(c, false),
	}, nil
}

func (d *contestDomain) RemoveWinner(
	ctx context.Context, req *model.RemoveWinnerRequest,
) (*model.RemoveWinnerResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ContestID)
	if err != nil {
		return nil, err
	}

	winner, removed := contest.RemoveWinner(c, req.UserID)
	if removed {
		c.UpdatedBy = contest.Admin(xcontext.RequestUserID(ctx)).NullString()
		delta := repository.StatsDelta{Winners: -1, Gains: -winner.PrizeAmount}
		if err := saveContest(ctx, d.contestRepo, d.statsRepo, c, delta, d.clock()); err != nil {
			return nil, err
		}
	}

	return &model.RemoveWinnerResponse{Removed: removed, Contest: model.ConvertContest(c, false)}, nil
}

func (d *contestDomain) SelectMultipleWinners(
	ctx context.Context, req *model.SelectMultipleWinnersRequest,
) (*model.SelectMultipleWinnersResponse, error) {
	c, err := getContest(ctx, d.contestRepo, req.ContestID)
	if err != nil {
		return nil, err
	}

	actor := contest.Admin(xcontext.RequestUserID(ctx))
	now := d.clock()
	change, err := contest.SelectMultipleWinners(c, req.UserIDs, actor, now)
	if err != nil {
		return nil, err
	}

	c.UpdatedBy = actor.NullString()
	delta := repository.StatsDelta{Winners: change.WinnerDelta(), Gains: change.GainDelta()}
	if err := saveContest(ctx, d.contestRepo, d.statsRepo, c, delta, now); err != nil {
		return nil, err
	}

	return &model.SelectMultipleWinnersResponse{Contest: model.ConvertContest(c, false)}, nil
}
