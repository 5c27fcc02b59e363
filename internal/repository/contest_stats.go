package repository

import (
	"context"
	"time"

	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/dateutil"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsDelta is a signed adjustment of the ledger. Totals are floored at zero
// when a negative delta exceeds them.
type StatsDelta struct {
	Gains      float64
	PlacesSold int64
	Winners    int64
	Contests   int64
}

func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}

type ContestStatsRepository interface {
	Get(ctx context.Context) (*entity.ContestStats, error)
	GetMonths(ctx context.Context, from, to string) ([]entity.ContestStatsMonth, error)
	Adjust(ctx context.Context, delta StatsDelta, at time.Time) error
	Set(ctx context.Context, stats *entity.ContestStats) error
}

type contestStatsRepository struct{}

func NewContestStatsRepository() *contestStatsRepository {
	return &contestStatsRepository{}
}

func (r *contestStatsRepository) ensure(ctx context.Context) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.ContestStats{ID: entity.GlobalContestStatsID}).Error
}

func (r *contestStatsRepository) Get(ctx context.Context) (*entity.ContestStats, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	var result entity.ContestStats
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.GlobalContestStatsID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *contestStatsRepository) GetMonths(
	ctx context.Context, from, to string,
) ([]entity.ContestStatsMonth, error) {
	tx := xcontext.DB(ctx).Model(&entity.ContestStatsMonth{})
	if from != "" {
		tx = tx.Where("month>=?", from)
	}

	if to != "" {
		tx = tx.Where("month<=?", to)
	}

	var result []entity.ContestStatsMonth
	if err := tx.Order("month ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Adjust applies delta to the global totals and to the month holding at.
// Every column is computed by the database, concurrent adjustments never
// overwrite each other.
func (r *contestStatsRepository) Adjust(ctx context.Context, delta StatsDelta, at time.Time) error {
	if delta.IsZero() {
		return nil
	}

	if err := r.ensure(ctx); err != nil {
		return err
	}

	assignments := delta.assignments()
	err := xcontext.DB(ctx).Model(&entity.ContestStats{}).
		Where("id=?", entity.GlobalContestStatsID).
		Updates(assignments).Error
	if err != nil {
		return err
	}

	month := entity.ContestStatsMonth{
		Month:           dateutil.MonthKey(at),
		TotalGains:      floorFloat(delta.Gains),
		TotalPlacesSold: floorInt(delta.PlacesSold),
		TotalWinners:    floorInt(delta.Winners),
		TotalContests:   floorInt(delta.Contests),
	}

	assignments["updated_at"] = time.Now()
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "month"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&month).Error
}

// Set overwrites the global totals. The monthly breakdown is left untouched.
func (r *contestStatsRepository) Set(ctx context.Context, stats *entity.ContestStats) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	return xcontext.DB(ctx).Model(&entity.ContestStats{}).
		Where("id=?", entity.GlobalContestStatsID).
		Updates(map[string]any{
			"total_gains":       stats.TotalGains,
			"total_places_sold": stats.TotalPlacesSold,
			"total_winners":     stats.TotalWinners,
			"total_contests":    stats.TotalContests,
		}).Error
}

func (d StatsDelta) assignments() map[string]any {
	result := map[string]any{}
	if d.Gains != 0 {
		result["total_gains"] = adjustExpr("total_gains", d.Gains < 0, abs(d.Gains))
	}

	if d.PlacesSold != 0 {
		result["total_places_sold"] = adjustExpr("total_places_sold", d.PlacesSold < 0, abs(d.PlacesSold))
	}

	if d.Winners != 0 {
		result["total_winners"] = adjustExpr("total_winners", d.Winners < 0, abs(d.Winners))
	}

	if d.Contests != 0 {
		result["total_contests"] = adjustExpr("total_contests", d.Contests < 0, abs(d.Contests))
	}

	return result
}

func adjustExpr[T int64 | float64](column string, decrease bool, amount T) clause.Expr {
	if !decrease {
		return gorm.Expr(column+"+?", amount)
	}

	return gorm.Expr("CASE WHEN "+column+">? THEN "+column+"-? ELSE 0 END", amount, amount)
}

func abs[T int64 | float64](v T) T {
	if v < 0 {
		return -v
	}

	return v
}

func floorInt(v int64) int64 {
	if v < 0 {
		return 0
	}

	return v
}

func floorFloat(v float64) float64 {
	if v < 0 {
		return 0
	}

	return v
}
