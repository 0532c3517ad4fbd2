// Package config holds the environment-driven application configuration.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is populated from VEIL_-prefixed environment variables.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // "json" or "console"

	AWSRegion string `envconfig:"AWS_REGION" default:"eu-central-1"`

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password string `envconfig:"REDIS_PASSWORD" default:""`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Credits struct {
		DailyAllotment    int `envconfig:"CREDITS_DAILY_ALLOTMENT" default:"5"`
		FindMatchCost     int `envconfig:"CREDITS_FIND_MATCH_COST" default:"1"`
		SkipMatchCost     int `envconfig:"CREDITS_SKIP_MATCH_COST" default:"1"`
		RequestRevealCost int `envconfig:"CREDITS_REQUEST_REVEAL_COST" default:"3"`
		AcceptRevealCost  int `envconfig:"CREDITS_ACCEPT_REVEAL_COST" default:"3"`
	}

	Matching struct {
		// Candidates inactive longer than this window are not offered.
		ActivityWindow time.Duration `envconfig:"MATCHING_ACTIVITY_WINDOW" default:"168h"`
	}

	Gemini struct {
		APIKey      string        `envconfig:"GEMINI_API_KEY"`
		Model       string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
		Timeout     time.Duration `envconfig:"GEMINI_TIMEOUT" default:"30s"`
		Temperature float32       `envconfig:"GEMINI_TEMPERATURE" default:"0.9"`
	}

	Replies struct {
		// How often the dispatcher looks for due persona replies.
		DispatchInterval time.Duration `envconfig:"REPLIES_DISPATCH_INTERVAL" default:"15s"`
		DispatchBatch    int           `envconfig:"REPLIES_DISPATCH_BATCH" default:"25"`
		HistoryDepth     int           `envconfig:"REPLIES_HISTORY_DEPTH" default:"10"`
	}

	Media struct {
		Bucket    string        `envconfig:"MEDIA_BUCKET" default:"veil-photos"`
		ProxyBase string        `envconfig:"MEDIA_PROXY_BASE" default:"https://img.veil.app"`
		URLExpiry time.Duration `envconfig:"MEDIA_URL_EXPIRY" default:"15m"`
	}

	Identity struct {
		// Userinfo-style endpoint of the external identity provider.
		VerifyURL string        `envconfig:"IDENTITY_VERIFY_URL" default:"https://auth.veil.app/userinfo"`
		Timeout   time.Duration `envconfig:"IDENTITY_TIMEOUT" default:"5s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("veil", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
