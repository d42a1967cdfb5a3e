package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/coursemarket-backend/internal/data/db"
	"github.com/yungbote/coursemarket-backend/internal/platform/envutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/platform/vnpay"
)

type Config struct {
	HTTPAddr    string
	LogMode     string
	Environment string
	Version     string

	DB db.Config

	JWTSecretKey string
	CORSOrigins  []string

	VNPay                    vnpay.Config
	PaymentResultRedirectURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CertCacheTTL  time.Duration

	MetricsEnabled bool
	MetricsAddr    string
}

// LoadDotEnv reads .env (or the files named in ENV_FILE) when present. Values
// already in the environment win.
func LoadDotEnv(log *logger.Logger) {
	files := envutil.List("ENV_FILE")
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if log != nil {
				log.Debug("env file not loaded", "file", f, "error", err)
			}
		}
	}
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		DB: db.Config{
			Driver: strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			Postgres: db.PostgresConfig{
				Host:     envutil.String("POSTGRES_HOST", "localhost"),
				Port:     envutil.String("POSTGRES_PORT", "5432"),
				User:     envutil.String("POSTGRES_USER", "postgres"),
				Password: envutil.String("POSTGRES_PASSWORD", ""),
				Name:     envutil.String("POSTGRES_NAME", "coursemarket"),
				SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
				DSN:      envutil.String("POSTGRES_DSN", ""),
			},
			SQLitePath: envutil.String("SQLITE_PATH", "coursemarket.db"),
		},
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		CORSOrigins:  envutil.List("CORS_ALLOWED_ORIGINS"),
		VNPay: vnpay.Config{
			PaymentURL:    envutil.String("VNPAY_PAYMENT_URL", ""),
			TmnCode:       envutil.String("VNPAY_TMN_CODE", ""),
			HashSecret:    envutil.String("VNPAY_HASH_SECRET", ""),
			ReturnURL:     envutil.String("VNPAY_RETURN_URL", ""),
			Version:       envutil.String("VNPAY_VERSION", vnpay.DefaultVersion),
			Locale:        envutil.String("VNPAY_LOCALE", vnpay.DefaultLocale),
			Currency:      envutil.String("VNPAY_CURRENCY", vnpay.DefaultCurrency),
			ExpireMinutes: envutil.Int("VNPAY_EXPIRE_MINUTES", 15),
		},
		PaymentResultRedirectURL: envutil.String("PAYMENT_RESULT_REDIRECT_URL", ""),
		RedisAddr:                envutil.String("REDIS_ADDR", ""),
		RedisPassword:            envutil.String("REDIS_PASSWORD", ""),
		RedisDB:                  envutil.Int("REDIS_DB", 0),
		CertCacheTTL:             envutil.Duration("CERT_CACHE_TTL", 10*time.Minute),
		MetricsEnabled:           envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:              envutil.String("METRICS_ADDR", ""),
	}

	tz := envutil.String("VNPAY_TIMEZONE", vnpay.DefaultTimezone)
	if loc, err := time.LoadLocation(tz); err == nil {
		cfg.VNPay.Location = loc
	} else if log != nil {
		log.Warn("unknown VNPAY_TIMEZONE, using default", "timezone", tz, "error", err)
	}

	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated route will answer 401")
	}
	return cfg
}

// PaymentsEnabled reports whether the gateway is fully configured.
func (c Config) PaymentsEnabled() bool { return c.VNPay.Enabled() }
