package repository

import (
	"context"
	"strings"

	"github.com/questx-lab/contest-backoffice/internal/domain/ranking"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StandaloneWinnerFilter struct {
	WeekOfYear      string
	IncludeInactive bool
	Offset          int
	Limit           int
}

type StandaloneWinnerRepository interface {
	Create(ctx context.Context, winner *entity.StandaloneWinner) error
	GetByID(ctx context.Context, id string) (*entity.StandaloneWinner, error)
	GetActiveByWeek(ctx context.Context, weekOfYear string) ([]entity.StandaloneWinner, error)
	GetList(ctx context.Context, filter StandaloneWinnerFilter) ([]entity.StandaloneWinner, error)
	Update(ctx context.Context, winner *entity.StandaloneWinner) error
	UpdatePositions(ctx context.Context, slots []ranking.Slot) error
	Deactivate(ctx context.Context, id string) error
}

type standaloneWinnerRepository struct{}

func NewStandaloneWinnerRepository() *standaloneWinnerRepository {
	return &standaloneWinnerRepository{}
}

func (r *standaloneWinnerRepository) Create(ctx context.Context, winner *entity.StandaloneWinner) error {
	return xcontext.DB(ctx).Create(winner).Error
}

// GetByID locks the row until the surrounding transaction ends.
func (r *standaloneWinnerRepository) GetByID(ctx context.Context, id string) (*entity.StandaloneWinner, error) {
	var result entity.StandaloneWinner
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetActiveByWeek locks the ranking scope of the week until the surrounding
// transaction ends, so concurrent rankings of the same week are serialized.
func (r *standaloneWinnerRepository) GetActiveByWeek(
	ctx context.Context, weekOfYear string,
) ([]entity.StandaloneWinner, error) {
	var result []entity.StandaloneWinner
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("week_of_year=? AND is_active=?", weekOfYear, true).
		Order("position ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *standaloneWinnerRepository) GetList(
	ctx context.Context, filter StandaloneWinnerFilter,
) ([]entity.StandaloneWinner, error) {
	tx := xcontext.DB(ctx).Model(&entity.StandaloneWinner{})
	if filter.WeekOfYear != "" {
		tx = tx.Where("week_of_year=?", filter.WeekOfYear)
	}

	if !filter.IncludeInactive {
		tx = tx.Where("is_active=?", true)
	}

	tx = tx.Order("week_of_year DESC").Order("position ASC").Offset(filter.Offset)
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var result []entity.StandaloneWinner
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *standaloneWinnerRepository) Update(ctx context.Context, winner *entity.StandaloneWinner) error {
	tx := xcontext.DB(ctx).Model(&entity.StandaloneWinner{}).
		Where("id=?", winner.ID).
		Updates(map[string]any{
			"first_name":   winner.FirstName,
			"last_name":    winner.LastName,
			"user_id":      winner.UserID,
			"prize":        winner.Prize,
			"amount":       winner.Amount,
			"position":     winner.Position,
			"draw_date":    winner.DrawDate,
			"week_of_year": winner.WeekOfYear,
			"is_active":    winner.IsActive,
			"updated_by":   winner.UpdatedBy,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdatePositions rewrites the positions of all given winners in a single
// statement, so no intermediate ranking is ever stored.
func (r *standaloneWinnerRepository) UpdatePositions(ctx context.Context, slots []ranking.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	ids := make([]string, 0, len(slots))
	args := make([]any, 0, 2*len(slots))
	cases := strings.Builder{}
	cases.WriteString("CASE id")
	for _, s := range slots {
		cases.WriteString(" WHEN ? THEN ?")
		args = append(args, s.Key, s.Position)
		ids = append(ids, s.Key)
	}
	cases.WriteString(" ELSE position END")

	return xcontext.DB(ctx).Model(&entity.StandaloneWinner{}).
		Where("id IN (?)", ids).
		Update("position", gorm.Expr(cases.String(), args...)).Error
}

func (r *standaloneWinnerRepository) Deactivate(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Model(&entity.StandaloneWinner{}).
		Where("id=? AND is_active=?", id, true).
		Update("is_active", false)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
