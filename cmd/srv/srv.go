package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/contest-backoffice/config"
	"github.com/questx-lab/contest-backoffice/internal/client"
	"github.com/questx-lab/contest-backoffice/internal/domain"
	"github.com/questx-lab/contest-backoffice/internal/repository"
	"github.com/questx-lab/contest-backoffice/migration"
	"github.com/questx-lab/contest-backoffice/pkg/kafka"
	"github.com/questx-lab/contest-backoffice/pkg/logger"
	"github.com/questx-lab/contest-backoffice/pkg/router"
	"github.com/questx-lab/contest-backoffice/pkg/storage"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
	"github.com/questx-lab/contest-backoffice/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	redisClient xredis.Client
	storage     storage.Storage
	notifier    client.Notifier
	stoppers    []func(context.Context) error

	userRepo             repository.UserRepository
	contestRepo          repository.ContestRepository
	contestStatsRepo     repository.ContestStatsRepository
	standaloneWinnerRepo repository.StandaloneWinnerRepository

	contestDomain          domain.ContestDomain
	weeklyContestDomain    domain.WeeklyContestDomain
	standaloneWinnerDomain domain.StandaloneWinnerDomain
	contestStatsDomain     domain.ContestStatsDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() error {
	cfg := config.Load()
	if err := cfg.Contest.Validate(); err != nil {
		return err
	}

	s.configs = &cfg
	return nil
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(s.configs.LogLevel)
	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, *s.configs)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) newDatabase() *gorm.DB {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       s.configs.Database.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(parseGormLogLevel(s.configs.Database.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func parseGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

// loadRedisClient leaves the client nil if no address is configured. Draws
// then run without a lease.
func (s *srv) loadRedisClient() {
	if s.configs.Redis.Addr == "" {
		s.logger.Warnf("Redis address is not configured, draws run without lease")
		return
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

// loadNotifier leaves the notifier nil if no broker is configured. Winners
// are then drawn without being notified.
func (s *srv) loadNotifier() {
	if s.configs.Kafka.Addr == "" {
		s.logger.Warnf("Kafka address is not configured, winners will not be notified")
		return
	}

	publisher, err := kafka.NewPublisher(s.configs.Kafka.ClientID, strings.Split(s.configs.Kafka.Addr, ","))
	if err != nil {
		panic(err)
	}

	s.notifier = client.NewKafkaNotifier(publisher)
	s.stoppers = append(s.stoppers, publisher.Stop)
}

func (s *srv) loadStorage() {
	fileStorage, err := storage.NewS3Storage(s.configs.Storage)
	if err != nil {
		panic(err)
	}

	s.storage = fileStorage
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.contestRepo = repository.NewContestRepository()
	s.contestStatsRepo = repository.NewContestStatsRepository()
	s.standaloneWinnerRepo = repository.NewStandaloneWinnerRepository()
}

func (s *srv) loadDomains() {
	s.contestDomain = domain.NewContestDomain(s.contestRepo, s.userRepo, s.contestStatsRepo, s.storage)
	s.standaloneWinnerDomain = domain.NewStandaloneWinnerDomain(s.standaloneWinnerRepo, s.contestStatsRepo)
	s.contestStatsDomain = domain.NewContestStatsDomain(s.contestStatsRepo)

	s.weeklyContestDomain = domain.NewWeeklyContestDomain(
		s.contestRepo, s.userRepo, s.contestStatsRepo, s.notifier, s.redisClient)
}

func (s *srv) stop() {
	for _, stop := range s.stoppers {
		if err := stop(s.ctx); err != nil {
			s.logger.Errorf("Cannot stop dependency: %v", err)
		}
	}
}

func (s *srv) startMigrate(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.logger.Infof("Database is up to date")
	return nil
}
