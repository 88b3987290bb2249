package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string
	DbMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Log      string
	LogLevel string
	Env      string // dev|prod

	VKToken      string
	VKAPIVersion string
	VKAPIURL     string
	VKRPS        float64
	VKCacheTTL   time.Duration
	VKMaxRetries int
	VKTimeout    time.Duration

	WorkerEnabled   bool
	WorkerCount     int
	WorkerPoll      time.Duration
	TaskMaxAttempts int
	ScrapeInterval  time.Duration

	LoginMaxAttempts int
	LoginLockTTL     time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	AlertEmails  []string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует: logger сам зависит от config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	p := &parser{}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),
		DbMigrate: p.boolean("DB_MIGRATE", true),

		RedisAddr:     def(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       p.integer("REDIS_DB", 0),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  p.duration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenTTL: p.duration("REFRESH_TOKEN_EXPIRY", 720*time.Hour),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		VKToken:      os.Getenv("VK_TOKEN"),
		VKAPIVersion: def(os.Getenv("VK_API_VERSION"), "5.199"),
		VKAPIURL:     strings.TrimRight(def(os.Getenv("VK_API_URL"), "https://api.vk.com/method"), "/"),
		VKRPS:        p.float("VK_RPS", 3),
		VKCacheTTL:   p.duration("VK_CACHE_TTL", 5*time.Minute),
		VKMaxRetries: p.integer("VK_MAX_RETRIES", 3),
		VKTimeout:    p.duration("VK_TIMEOUT", 10*time.Second),

		WorkerEnabled:   p.boolean("WORKER_ENABLED", true),
		WorkerCount:     p.integer("WORKER_COUNT", 2),
		WorkerPoll:      p.duration("WORKER_POLL", 2*time.Second),
		TaskMaxAttempts: p.integer("TASK_MAX_ATTEMPTS", 5),
		ScrapeInterval:  p.duration("SCRAPE_INTERVAL", 30*time.Minute),

		LoginMaxAttempts: p.integer("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockTTL:     p.duration("LOGIN_LOCK_TTL", 15*time.Minute),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		AlertEmails:  splitCSV(os.Getenv("ALERT_EMAILS")),
	}

	if len(p.errs) > 0 {
		return cfg, fmt.Errorf("некорректные переменные окружения: %s", strings.Join(p.errs, "; "))
	}
	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		warnings = append(warnings, "JWT_SECRET is empty")
	}
	if strings.TrimSpace(c.VKToken) == "" {
		warnings = append(warnings, "VK_TOKEN is empty, scraping will fail with auth errors")
	}
	if c.VKRPS <= 0 {
		warnings = append(warnings, "VK_RPS <= 0, throttling disabled")
	}
	if c.WorkerCount < 1 {
		warnings = append(warnings, "WORKER_COUNT < 1, using 1")
		c.WorkerCount = 1
	}
	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured, alerts are disabled")
	}

	return warnings, nil
}

// GetDSN возвращает полную DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe возвращает DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

func def(v, d string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return d
	}
	return v
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser собирает ошибки разбора, чтобы вернуть их одной пачкой.
type parser struct {
	errs []string
}

func (p *parser) duration(key string, d time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q: %v", key, raw, err))
		return d
	}
	return v
}

func (p *parser) integer(key string, d int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q: %v", key, raw, err))
		return d
	}
	return v
}

func (p *parser) float(key string, d float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return d
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q: %v", key, raw, err))
		return d
	}
	return v
}

func (p *parser) boolean(key string, d bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return d
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Sprintf("%s=%q: %v", key, raw, err))
		return d
	}
	return v
}
