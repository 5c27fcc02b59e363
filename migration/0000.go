package migration

import (
	"context"

	"github.com/questx-lab/contest-backoffice/internal/entity"
)

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}
