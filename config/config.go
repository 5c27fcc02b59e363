package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Configs struct {
	Env      string
	LogLevel string

	Database  DatabaseConfigs
	ApiServer APIServerConfigs
	Auth      AuthConfigs
	Storage   S3Configs
	File      FileConfigs
	Redis     RedisConfigs
	Kafka     KafkaConfigs
	Contest   ContestConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

type APIServerConfigs struct {
	ServerConfigs

	AllowedOrigins []string
	MaxLimit       int
	DefaultLimit   int
}

type AuthConfigs struct {
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Secret     string
	Expiration time.Duration
}

type S3Configs struct {
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	SSLDisabled    bool
	Bucket         string
}

type FileConfigs struct {
	MaxSize        int
	BannerMaxWidth uint
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr     string
	ClientID string
}

type ContestConfigs struct {
	// MaxWinners caps the winner positions of every contest.
	MaxWinners int

	// DrawInterval is the period of the auto-draw pass.
	DrawInterval time.Duration

	// DrawDelay is added to the end of a weekly contest to get its draw date.
	DrawDelay time.Duration

	// WeeklyCheckInterval is the period of the job ensuring the current week
	// has a contest.
	WeeklyCheckInterval time.Duration

	// DrawLockTTL bounds the redis lease taken while drawing a contest.
	DrawLockTTL time.Duration

	Timezone          string
	TitlePrefix       string
	NotificationTopic string
	Prizes            []PrizeConfigs
}

type PrizeConfigs struct {
	Label  string
	Amount float64
}

// Location returns the timezone used for week computations, UTC if the
// configured name is empty or unknown.
func (c ContestConfigs) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// Validate rejects settings which would build inconsistent contests.
func (c ContestConfigs) Validate() error {
	if c.DrawDelay < 0 {
		return fmt.Errorf("contest draw delay must not be negative, got %s", c.DrawDelay)
	}

	if c.MaxWinners < 0 {
		return fmt.Errorf("contest max winners must not be negative, got %d", c.MaxWinners)
	}

	return nil
}

// PrizeForPosition returns the default prize of a 1-based position.
func (c ContestConfigs) PrizeForPosition(position int) PrizeConfigs {
	if position < 1 || position > len(c.Prizes) {
		return PrizeConfigs{}
	}

	return c.Prizes[position-1]
}

func Load() Configs {
	// A missing .env file is fine, the environment is used as-is.
	_ = godotenv.Load()

	return Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "contest"),
			User:     getEnv("MYSQL_USER", "mysql"),
			Password: getEnv("MYSQL_PASSWORD", "mysql"),
			LogLevel: getEnv("DATABASE_LOG_LEVEL", "error"),
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{
				Host: getEnv("API_HOST", "localhost"),
				Port: getEnv("API_PORT", "8080"),
				Cert: getEnv("SERVER_CERT", ""),
				Key:  getEnv("SERVER_KEY", ""),
			},
			AllowedOrigins: parseList(getEnv("API_ALLOWED_ORIGINS", "http://localhost:3000")),
			MaxLimit:       getIntEnv("API_MAX_LIMIT", 50),
			DefaultLimit:   getIntEnv("API_DEFAULT_LIMIT", 10),
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       getEnv("ACCESS_TOKEN_NAME", "access_token"),
				Secret:     getEnv("ACCESS_TOKEN_SECRET", "secret"),
				Expiration: getDurationEnv("ACCESS_TOKEN_EXPIRATION", 5*time.Minute),
			},
		},
		Storage: S3Configs{
			Region:         getEnv("STORAGE_REGION", "auto"),
			Endpoint:       getEnv("STORAGE_ENDPOINT", "http://localhost:9000"),
			PublicEndpoint: getEnv("STORAGE_PUBLIC_ENDPOINT", "http://localhost:9000"),
			AccessKey:      getEnv("STORAGE_ACCESS_KEY", "access_key"),
			SecretKey:      getEnv("STORAGE_SECRET_KEY", "secret_key"),
			SSLDisabled:    getBoolEnv("STORAGE_SSL_DISABLED", true),
			Bucket:         getEnv("STORAGE_BUCKET", "contest"),
		},
		File: FileConfigs{
			MaxSize:        getIntEnv("MAX_UPLOAD_FILE", 2*1024*1024),
			BannerMaxWidth: uint(getIntEnv("BANNER_MAX_WIDTH", 1200)),
		},
		Redis: RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", ""),
		},
		Kafka: KafkaConfigs{
			Addr:     getEnv("KAFKA_ADDRESS", "localhost:9092"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "contest-backoffice"),
		},
		Contest: ContestConfigs{
			MaxWinners:          getIntEnv("CONTEST_MAX_WINNERS", 3),
			DrawInterval:        getDurationEnv("CONTEST_DRAW_INTERVAL", 5*time.Minute),
			DrawDelay:           getDurationEnv("CONTEST_DRAW_DELAY", time.Hour),
			WeeklyCheckInterval: getDurationEnv("CONTEST_WEEKLY_CHECK_INTERVAL", time.Hour),
			DrawLockTTL:         getDurationEnv("CONTEST_DRAW_LOCK_TTL", time.Minute),
			Timezone:            getEnv("CONTEST_TIMEZONE", "UTC"),
			TitlePrefix:         getEnv("CONTEST_TITLE_PREFIX", "Weekly contest"),
			NotificationTopic:   getEnv("CONTEST_NOTIFICATION_TOPIC", "contest_winner"),
			Prizes:              parsePrizes(getEnv("CONTEST_PRIZES", "1st prize:100,2nd prize:50,3rd prize:25")),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}

	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}

	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}

	return fallback
}

func parseList(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parsePrizes reads "label:amount" pairs, one per position.
func parsePrizes(s string) []PrizeConfigs {
	result := []PrizeConfigs{}
	for _, part := range parseList(s) {
		label, amount, _ := strings.Cut(part, ":")
		value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			value = 0
		}

		result = append(result, PrizeConfigs{Label: strings.TrimSpace(label), Amount: value})
	}

	return result
}
