package config

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Config holds the service configuration, loaded from the environment
// (optionally seeded from a .env file) and an optional config.yaml.
type Config struct {
	Env             string        `env:"APP_ENV" yaml:"env" default:"production" usage:"Runtime environment (development or production)"`
	Port            string        `env:"PORT" yaml:"port" default:"5000" usage:"HTTP listen port"`
	MongoURI        string        `env:"MONGO_URI" yaml:"mongo_uri" usage:"MongoDB connection string"`
	DBName          string        `env:"DB_NAME" yaml:"db_name" default:"alphastore" usage:"MongoDB database name"`
	JWTSecret       string        `env:"JWT_SECRET" yaml:"jwt_secret" usage:"HMAC secret for signing auth tokens"`
	JWTTTL          time.Duration `env:"JWT_TTL" yaml:"jwt_ttl" default:"24h" usage:"Auth token lifetime"`
	UploadDir       string        `env:"UPLOAD_DIR" yaml:"upload_dir" default:"uploads" usage:"Directory for uploaded images"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" yaml:"cors_origins" default:"http://localhost:5173" usage:"Allowed CORS origins"`
	TaxRate         float64       `env:"TAX_RATE" yaml:"tax_rate" default:"0.05" usage:"Sales tax rate applied at checkout"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout" default:"10s" usage:"Per-request database timeout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout" default:"15s" usage:"Maximum graceful shutdown duration"`
}

// LoadEnv reads a .env file into the process environment when one exists.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetEnv returns the value of key, or def when it is unset or empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load builds a Config from the environment and a YAML file: CONFIG_FILE
// when set, else config.yaml. The first file found is used; the
// environment wins over it.
func Load() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		Files:     []string{GetEnv("CONFIG_FILE", "config.yaml"), "/etc/alphastore/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, errors.Errorf("TAX_RATE must be in [0, 1), got %v", cfg.TaxRate)
	}

	return &cfg, nil
}

// Development reports whether the service runs with development defaults.
func (c *Config) Development() bool {
	return c.Env == "development"
}
