package migration

import (
	"context"
	"errors"

	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"gorm.io/gorm"
)

type migrator func(ctx context.Context) error

// Append only. A migrator is identified by its index.
var migrators = []migrator{
	migrate0000,
	migrate0001,
}

// Migrate runs every migrator newer than the last recorded version.
func Migrate(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if err := db.AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	var last entity.Migration
	err := db.Order("version DESC").Take(&last).Error
	next := 0
	switch {
	case err == nil:
		next = last.Version + 1
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	for version := next; version < len(migrators); version++ {
		if err := migrators[version](ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot run migration %04d: %v", version, err)
			return err
		}

		if err := db.Create(&entity.Migration{Version: version}).Error; err != nil {
			return err
		}

		xcontext.Logger(ctx).Infof("Migrated database to version %04d", version)
	}

	return nil
}
