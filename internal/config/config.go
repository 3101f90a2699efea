package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Analysis AnalysisConfig
	LinkedIn LinkedInConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	LogDebug    bool
	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	// SlowQueryThreshold enables query tracing when positive.
	SlowQueryThreshold time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix string
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
	StateExpiresIn   time.Duration
}

type AnalysisConfig struct {
	APIURL       string
	APIKey       string
	Timeout      time.Duration
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	MaxLogLength int
	// Seed for the local simulator; zero seeds from the clock.
	SimulatorSeed int64
}

type LinkedInConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBaseURL   string
	Scopes       []string
}

func (c LinkedInConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment. When CONFIG_FILE is set the
// file is read first and environment values override it.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "jobpilot")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", "500ms")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_TTL", "600s")
	v.SetDefault("REDIS_KEY_PREFIX", "jobpilot:")
	v.SetDefault("JWT_ACCESS_EXPIRES_IN", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRES_IN", "168h")
	v.SetDefault("JWT_STATE_EXPIRES_IN", "10m")
	v.SetDefault("ANALYSIS_API_URL", "https://api.grok.ai/v1/analyze")
	v.SetDefault("ANALYSIS_TIMEOUT", "30s")
	v.SetDefault("ANALYSIS_MAX_LOG_LENGTH", 200)
	v.SetDefault("LINKEDIN_API_BASE_URL", "https://api.linkedin.com")
	v.SetDefault("LINKEDIN_SCOPES", "r_liteprofile,r_emailaddress")
}

func fromViper(v *viper.Viper) (Config, error) {
	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg := Config{}
	cfg.App = AppConfig{
		AppName:       opt("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		LogJSON:       v.GetBool("LOG_JSON"),
		LogDebug:      v.GetBool("LOG_DEBUG"),
		MigrationsDir: opt("MIGRATIONS_DIR"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
		SlowQueryThreshold:    v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
	}

	cfg.Redis = RedisConfig{
		Host:      opt("REDIS_HOST"),
		Port:      opt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		TTL:       v.GetDuration("REDIS_TTL"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  v.GetDuration("JWT_ACCESS_EXPIRES_IN"),
		RefreshExpiresIn: v.GetDuration("JWT_REFRESH_EXPIRES_IN"),
		StateExpiresIn:   v.GetDuration("JWT_STATE_EXPIRES_IN"),
	}

	cfg.Analysis = AnalysisConfig{
		APIURL:        opt("ANALYSIS_API_URL"),
		APIKey:        opt("ANALYSIS_API_KEY"),
		Timeout:       v.GetDuration("ANALYSIS_TIMEOUT"),
		Provider:      strings.ToLower(opt("ANALYSIS_PROVIDER")),
		GeminiAPIKey:  opt("GEMINI_API_KEY"),
		GeminiModel:   opt("GEMINI_MODEL"),
		MaxLogLength:  v.GetInt("ANALYSIS_MAX_LOG_LENGTH"),
		SimulatorSeed: v.GetInt64("ANALYSIS_SIMULATOR_SEED"),
	}

	cfg.LinkedIn = LinkedInConfig{
		ClientID:     opt("LINKEDIN_CLIENT_ID"),
		ClientSecret: v.GetString("LINKEDIN_CLIENT_SECRET"),
		RedirectURI:  opt("LINKEDIN_REDIRECT_URI"),
		APIBaseURL:   strings.TrimRight(opt("LINKEDIN_API_BASE_URL"), "/"),
		Scopes:       splitList(opt("LINKEDIN_SCOPES")),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
