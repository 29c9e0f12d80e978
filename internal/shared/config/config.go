package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"lifeway-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	DatabaseURL       string
	CORSAllowOrigin   []string
	OpenAIAPIKey      string
	LLMModel          string
	LLMTemperature    float64
	LLMMaxTokens      int
	LLMTimeout        time.Duration
	AdminAPISecret    string
	SupabaseJWTSecret string
	UnsplashAccessKey string
	PexelsAPIKey      string
	PixabayAPIKey     string
	ImageSearchDelay  time.Duration
	FormSchema        string
	ObjectStoreType   string
	LocalStoreDir     string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
}

// Load reads configuration from environment variables, falling back to an
// optional .env file and then to defaults.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	mergeEnvFiles(v, ".env", "cmd/.env")
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_TOKENS", 2000)
	v.SetDefault("OPENAI_TIMEOUT_SECONDS", 120)
	v.SetDefault("IMAGE_SEARCH_DELAY", "1s")
	v.SetDefault("FORM_SCHEMA", "auto")
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
}

// mergeEnvFiles is best-effort: missing or malformed files are skipped.
func mergeEnvFiles(v *viper.Viper, paths ...string) {
	v.SetConfigType("env")
	for _, path := range paths {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			continue
		}
	}
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))

	if env == "production" && dbURL == "" {
		telemetry.Error("config.database_url_missing", map[string]any{"env": env})
	}

	timeout := time.Duration(v.GetInt("OPENAI_TIMEOUT_SECONDS")) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return Config{
		Port:              v.GetString("PORT"),
		Env:               env,
		DatabaseURL:       dbURL,
		CORSAllowOrigin:   splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		OpenAIAPIKey:      strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		LLMModel:          v.GetString("LLM_MODEL"),
		LLMTemperature:    v.GetFloat64("LLM_TEMPERATURE"),
		LLMMaxTokens:      v.GetInt("LLM_MAX_TOKENS"),
		LLMTimeout:        timeout,
		AdminAPISecret:    strings.TrimSpace(v.GetString("ADMIN_API_SECRET")),
		SupabaseJWTSecret: strings.TrimSpace(v.GetString("SUPABASE_JWT_SECRET")),
		UnsplashAccessKey: strings.TrimSpace(v.GetString("UNSPLASH_ACCESS_KEY")),
		PexelsAPIKey:      strings.TrimSpace(v.GetString("PEXELS_API_KEY")),
		PixabayAPIKey:     strings.TrimSpace(v.GetString("PIXABAY_API_KEY")),
		ImageSearchDelay:  v.GetDuration("IMAGE_SEARCH_DELAY"),
		FormSchema:        strings.ToLower(strings.TrimSpace(v.GetString("FORM_SCHEMA"))),
		ObjectStoreType:   normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:     v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:         v.GetString("AWS_REGION"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Prefix:          v.GetString("S3_PREFIX"),
	}
}

// IsDevLike reports whether env allows in-memory fallbacks and open admin routes.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
