package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"invoicedesk/backend/internal/domain"
)

const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

type Config struct {
	Port               string
	AllowedOrigin      string
	StoreBackend       string
	DatabaseURL        string
	FirestoreProjectID string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	AuthSecret         string
	AdminUser          string
	AdminPass          string
	SessionTTLMinutes  int
	TaxPercent         float64
	StatsTimezone      string
	StatsStaleMinutes  int
	StatsWarmSchedule  string
	LogLevel           string
	AppStage           string
	CompanyProfile     string
}

// Load reads the process environment. A .env file in the working directory is
// applied first when present; variables already set win over it.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "360"))
	if err != nil || sessionTTL < 1 {
		sessionTTL = 360
	}
	taxPercent, err := strconv.ParseFloat(getEnv("TAX_PERCENT", "15"), 64)
	if err != nil || taxPercent < 0 {
		taxPercent = 15
	}
	staleMinutes, err := strconv.Atoi(getEnv("STATS_STALE_MINUTES", "10"))
	if err != nil || staleMinutes < 1 {
		staleMinutes = 10
	}
	warmSchedule, ok := os.LookupEnv("STATS_WARM_SCHEDULE")
	if !ok {
		warmSchedule = "@every 5m"
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	if backend == "" {
		backend = BackendMemory
		if os.Getenv("DATABASE_URL") != "" {
			backend = BackendPostgres
		}
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		StoreBackend:       backend,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		FirestoreProjectID: strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		AuthSecret:         strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AdminUser:          strings.TrimSpace(os.Getenv("ADMIN_USER")),
		AdminPass:          os.Getenv("ADMIN_PASS"),
		SessionTTLMinutes:  sessionTTL,
		TaxPercent:         taxPercent,
		StatsTimezone:      getEnv("STATS_TIMEZONE", "UTC"),
		StatsStaleMinutes:  staleMinutes,
		StatsWarmSchedule:  strings.TrimSpace(warmSchedule),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AppStage:           getEnv("APP_STAGE", "development"),
		CompanyProfile:     os.Getenv("COMPANY_PROFILE"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) StaleAfter() time.Duration {
	return time.Duration(c.StatsStaleMinutes) * time.Minute
}

// Location resolves STATS_TIMEZONE. Quarter and filter boundaries are civil
// times in this location.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StatsTimezone)
	if err != nil {
		return nil, fmt.Errorf("load STATS_TIMEZONE %q: %w", c.StatsTimezone, err)
	}
	return loc, nil
}

// DefaultCompany is printed on documents when no profile file is configured.
func DefaultCompany() domain.Company {
	return domain.Company{
		Name:        "InvoiceDesk Trading Est.",
		Address:     "King Fahd Road, Dammam, Saudi Arabia",
		Email:       "accounts@invoicedesk.example",
		PhoneNumber: "+966 13 000 0000",
	}
}

// LoadCompany reads the company profile YAML at path. An empty path yields
// DefaultCompany.
func LoadCompany(path string) (domain.Company, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCompany(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Company{}, fmt.Errorf("read company profile: %w", err)
	}
	var company domain.Company
	if err := yaml.Unmarshal(data, &company); err != nil {
		return domain.Company{}, fmt.Errorf("parse company profile: %w", err)
	}
	if strings.TrimSpace(company.Name) == "" {
		return domain.Company{}, errors.New("company profile: name is required")
	}
	return company, nil
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
