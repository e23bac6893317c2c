package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	APIBase     string
	APIToken    string

	BatchSize       int
	ProcessInterval time.Duration
	MaxRetries      int
	RequestDelay    time.Duration
	Workers         int
	Languages       []domain.Language
	DebugMode       bool
	CacheTTL        time.Duration
}

func Load() Config {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/realestate?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", ""), // empty disables the translation cache
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		APIBase:     env("API_BASE_URL", "https://api-statements.tnet.ge/v1/statements"),
		APIToken:    env("API_TOKEN", ""),

		BatchSize:       atoi("BATCH_SIZE", 50),
		ProcessInterval: time.Duration(atoi("PROCESS_INTERVAL", 300)) * time.Second,
		MaxRetries:      atoi("MAX_RETRIES", 3),
		RequestDelay:    time.Duration(atoi("REQUEST_DELAY_MS", 500)) * time.Millisecond,
		Workers:         atoi("WORKERS", 1),
		Languages:       parseLanguages(env("LANGUAGES", "en,ru")),
		DebugMode:       envBool("DEBUG_MODE"),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
	if c.APIToken == "" {
		log.Warn().Msg("API_TOKEN is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string) bool {
	v := strings.ToLower(os.Getenv(k))
	return v == "1" || v == "true" || v == "yes"
}

func parseLanguages(s string) []domain.Language {
	var out []domain.Language
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, domain.Language(p))
		}
	}
	if len(out) == 0 {
		return domain.DefaultLanguages
	}
	return out
}
