package repository

import (
	"context"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm"
)

type ContestFilter struct {
	Status   entity.ContestStatus
	IsWeekly *bool
	Offset   int
	Limit    int
}

type ContestRepository interface {
	Create(ctx context.Context, contest *entity.Contest) error
	GetByID(ctx context.Context, id string) (*entity.Contest, error)
	GetByWeeklyKey(ctx context.Context, key string) (*entity.Contest, error)
	GetList(ctx context.Context, filter ContestFilter) ([]entity.Contest, error)
	Count(ctx context.Context, filter ContestFilter) (int64, error)
	GetDueForDraw(ctx context.Context, now time.Time) ([]entity.Contest, error)
	UpdateAggregate(ctx context.Context, contest *entity.Contest) error
	CompleteDraw(ctx context.Context, contest *entity.Contest, now time.Time) error
}

type contestRepository struct{}

func NewContestRepository() *contestRepository {
	return &contestRepository{}
}

func (r *contestRepository) Create(ctx context.Context, contest *entity.Contest) error {
	return xcontext.DB(ctx).Create(contest).Error
}

func (r *contestRepository) GetByID(ctx context.Context, id string) (*entity.Contest, error) {
	var result entity.Contest
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *contestRepository) GetByWeeklyKey(ctx context.Context, key string) (*entity.Contest, error) {
	var result entity.Contest
	if err := xcontext.DB(ctx).Take(&result, "weekly_key=?", key).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *contestRepository) filter(ctx context.Context, filter ContestFilter) *gorm.DB {
	tx := xcontext.DB(ctx).Model(&entity.Contest{})
	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	if filter.IsWeekly != nil {
		if *filter.IsWeekly {
			tx = tx.Where("weekly_key IS NOT NULL")
		} else {
			tx = tx.Where("weekly_key IS NULL")
		}
	}

	return tx
}

func (r *contestRepository) GetList(ctx context.Context, filter ContestFilter) ([]entity.Contest, error) {
	var result []entity.Contest
	tx := r.filter(ctx, filter).Order("start_date DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *contestRepository) Count(ctx context.Context, filter ContestFilter) (int64, error) {
	var count int64
	if err := r.filter(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *contestRepository) GetDueForDraw(ctx context.Context, now time.Time) ([]entity.Contest, error) {
	var result []entity.Contest
	err := xcontext.DB(ctx).
		Where("auto_draw_enabled=? AND draw_completed=? AND status=? AND draw_date<=?",
			true, false, entity.ContestStatusActive, now).
		Order("draw_date ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateAggregate writes the mutable fields of contest only if nobody else
// wrote it since it was loaded. It returns gorm.ErrRecordNotFound otherwise.
func (r *contestRepository) UpdateAggregate(ctx context.Context, contest *entity.Contest) error {
	tx := xcontext.DB(ctx).Model(&entity.Contest{}).
		Where("id=? AND version=?", contest.ID, contest.Version).
		Updates(map[string]any{
			"title":                contest.Title,
			"description":          contest.Description,
			"banner_url":           contest.BannerURL,
			"status":               contest.Status,
			"max_participants":     contest.MaxParticipants,
			"current_participants": len(contest.Participants),
			"participants":         contest.Participants,
			"winners":              contest.Winners,
			"auto_draw_enabled":    contest.AutoDrawEnabled,
			"updated_by":           contest.UpdatedBy,
			"version":              gorm.Expr("version+?", 1),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	contest.CurrentParticipants = len(contest.Participants)
	contest.Version++
	return nil
}

// CompleteDraw stores the drawn winners and marks the contest as drawn. The
// write only succeeds while the contest is still active, not drawn and not
// written since it was loaded, so two concurrent draws cannot both complete
// and a draw never overwrites an admin edit. It returns
// gorm.ErrRecordNotFound otherwise.
func (r *contestRepository) CompleteDraw(ctx context.Context, contest *entity.Contest, now time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.Contest{}).
		Where("id=? AND version=? AND status=? AND draw_completed=?",
			contest.ID, contest.Version, entity.ContestStatusActive, false).
		Updates(map[string]any{
			"participants":         contest.Participants,
			"current_participants": len(contest.Participants),
			"winners":              contest.Winners,
			"status":               entity.ContestStatusCompleted,
			"draw_completed":       true,
			"draw_completed_at":    now,
			"version":              gorm.Expr("version+?", 1),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	contest.Status = entity.ContestStatusCompleted
	contest.DrawCompleted = true
	contest.DrawCompletedAt.Time = now
	contest.DrawCompletedAt.Valid = true
	contest.CurrentParticipants = len(contest.Participants)
	contest.Version++
	return nil
}
