package migration

import (
	"context"

	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm/clause"
)

func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.ContestStats{ID: entity.GlobalContestStatsID}).Error
}
