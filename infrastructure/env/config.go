package env

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the typed view of every environment variable the service reads.
type Config struct {
	Env            string   `env:"ENV"             envDefault:"development"`
	GinMode        string   `env:"GIN_MODE"        envDefault:"debug"`
	Port           string   `env:"PORT"            envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	RateLimit     float64 `env:"RATE_LIMIT"      envDefault:"25"`
	FaceRateLimit float64 `env:"FACE_RATE_LIMIT" envDefault:"5"`

	DBURL                string `env:"DB_URL"`
	DBName               string `env:"DB_NAME"                    envDefault:"rollcall"`
	IdentityCollection   string `env:"COLLECTION_NAME_STUDENT"    envDefault:"Students"`
	AttendanceCollection string `env:"COLLECTION_NAME_ATTENDANCE" envDefault:"Attendance"`
	OperatorCollection   string `env:"COLLECTION_NAME_OPERATOR"   envDefault:"Operators"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`

	ModelServiceURL   string        `env:"MODEL_SERVICE_URL"   envDefault:"http://localhost:8001"`
	ModelTimeout      time.Duration `env:"MODEL_TIMEOUT"       envDefault:"10s"`
	EmbeddingDim      int           `env:"EMBEDDING_DIM"       envDefault:"512"`
	SpoofConfThresh   float64       `env:"SPOOF_CONF_THRESH"   envDefault:"0.35"`
	SpoofImageSize    int           `env:"SPOOF_IMG_SIZE"      envDefault:"640"`
	SpoofClassNames   []string      `env:"SPOOF_CLASS_NAMES"   envDefault:"spoof,real" envSeparator:","`
	RequireSpoofCheck bool          `env:"REQUIRE_SPOOF_CHECK" envDefault:"true"`

	AttendanceTZ   string        `env:"ATTENDANCE_TZ"   envDefault:"UTC"`
	ChallengeTTL   time.Duration `env:"CHALLENGE_TTL"   envDefault:"2m"`
	CatalogRefresh time.Duration `env:"CATALOG_REFRESH" envDefault:"30s"`

	JWTSigningKey string        `env:"JWT_SIGNING_KEY"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"rollcall.io"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"  envDefault:"12h"`
}

var (
	loadOnce sync.Once
	loaded   Config
	loadErr  error
)

// Load parses the environment once and returns the cached result afterwards.
func Load() (Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse()
	})
	return loaded, loadErr
}

// Parse reads the environment without caching. Tests use it after t.Setenv.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for i, name := range cfg.SpoofClassNames {
		cfg.SpoofClassNames[i] = strings.ToLower(strings.TrimSpace(name))
	}
	if cfg.EmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("EMBEDDING_DIM must be positive, got %d", cfg.EmbeddingDim)
	}
	if cfg.RateLimit <= 0 || cfg.FaceRateLimit <= 0 {
		return Config{}, errors.New("RATE_LIMIT and FACE_RATE_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(cfg.AttendanceTZ); err != nil {
		return Config{}, fmt.Errorf("ATTENDANCE_TZ: %w", err)
	}
	return cfg, nil
}

// Location resolves AttendanceTZ. Parse has already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AttendanceTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}
