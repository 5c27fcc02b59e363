package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/contest-backoffice/config"
	"github.com/questx-lab/contest-backoffice/internal/entity"
	"github.com/questx-lab/contest-backoffice/pkg/logger"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     "secret",
				Expiration: time.Minute,
			},
		},
		Storage: config.S3Configs{
			Bucket: "contest",
		},
		File: config.FileConfigs{
			MaxSize:        2 * 1024 * 1024,
			BannerMaxWidth: 64,
		},
		Contest: config.ContestConfigs{
			MaxWinners:          3,
			DrawInterval:        time.Minute,
			DrawDelay:           time.Hour,
			WeeklyCheckInterval: time.Hour,
			DrawLockTTL:         time.Minute,
			Timezone:            "UTC",
			TitlePrefix:         "Weekly contest",
			NotificationTopic:   "contest_winner",
			Prizes: []config.PrizeConfigs{
				{Label: "Gold", Amount: 100},
				{Label: "Silver", Amount: 50},
				{Label: "Bronze", Amount: 25},
			},
		},
	}
}

// MockContext returns a context holding a freshly migrated in-memory
// database. The database allows a single connection, so a test must not use
// the root handle while a transaction is open.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
