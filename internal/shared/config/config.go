// Package config loads runtime configuration from defaults, an optional YAML
// file, .env files, RESUMEGEN_* environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable except the provider secrets.
const EnvPrefix = "RESUMEGEN"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	LLM          LLMConfig       `mapstructure:"llm"`
	OpenAIAPIKey string          `mapstructure:"openai_api_key"`
	Pricing      PricingConfig   `mapstructure:"pricing"`
	Batch        BatchConfig     `mapstructure:"batch"`
	Catalog      CatalogConfig   `mapstructure:"catalog"`
	Output       OutputConfig    `mapstructure:"output"`
	DatabaseURL  string          `mapstructure:"database_url"`
	Notify       NotifyConfig    `mapstructure:"notify"`
	RateLimit    RateLimitConfig `mapstructure:"ratelimit"`
	Metrics      MetricsConfig   `mapstructure:"metrics"`
	Tracing      TracingConfig   `mapstructure:"tracing"`
	Log          LogConfig       `mapstructure:"log"`
}

type LLMConfig struct {
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// PricingConfig is in USD per million tokens.
type PricingConfig struct {
	InputPerMillion  float64 `mapstructure:"input_per_million"`
	OutputPerMillion float64 `mapstructure:"output_per_million"`
}

type BatchConfig struct {
	Count             int    `mapstructure:"count"`
	Concurrency       int    `mapstructure:"concurrency"`
	RenderConcurrency int    `mapstructure:"render_concurrency"`
	Seed              uint64 `mapstructure:"seed"`
}

type CatalogConfig struct {
	Path            string             `mapstructure:"path"`
	CategoryWeights map[string]float64 `mapstructure:"category_weights"`
}

type OutputConfig struct {
	Store       string `mapstructure:"store"`
	Dir         string `mapstructure:"dir"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Prefix    string `mapstructure:"s3_prefix"`
	S3Region    string `mapstructure:"s3_region"`
	SSEKMSKeyID string `mapstructure:"sse_kms_key_id"`
	SaveCosts   bool   `mapstructure:"save_costs"`
	Verify      bool   `mapstructure:"verify"`
}

type NotifyConfig struct {
	SQSQueueURL string `mapstructure:"sqs_queue_url"`
	Region      string `mapstructure:"region"`
}

type RateLimitConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
	RPM       int    `mapstructure:"rpm"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type TracingConfig struct {
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY", EnvPrefix+"_OPENAI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL", EnvPrefix+"_DATABASE_URL")
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", "gpt-5-nano")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.retries", 0)
	v.SetDefault("openai_api_key", "")

	v.SetDefault("pricing.input_per_million", 0.05)
	v.SetDefault("pricing.output_per_million", 0.40)

	v.SetDefault("batch.count", 800)
	v.SetDefault("batch.concurrency", 15)
	v.SetDefault("batch.render_concurrency", 0)
	v.SetDefault("batch.seed", 0)

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.category_weights", map[string]float64{})

	v.SetDefault("output.store", "local")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.s3_bucket", "")
	v.SetDefault("output.s3_prefix", "")
	v.SetDefault("output.s3_region", "")
	v.SetDefault("output.sse_kms_key_id", "")
	v.SetDefault("output.save_costs", false)
	v.SetDefault("output.verify", false)

	v.SetDefault("database_url", "")
	v.SetDefault("notify.sqs_queue_url", "")
	v.SetDefault("notify.region", "")
	v.SetDefault("ratelimit.redis_addr", "")
	v.SetDefault("ratelimit.rpm", 0)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("log.level", "info")
}

// LoadEnvFiles loads KEY=VALUE pairs from the files that exist. Variables
// already set in the environment win.
func LoadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

// BindFlags binds flags to config keys. flagToKey maps a flag name to its key.
// Only flags set on the command line override lower layers.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, flagToKey map[string]string) error {
	for name, key := range flagToKey {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("bind flag %q: not defined", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional YAML file into v, then decodes and validates.
func Load(v *viper.Viper, file string) (Config, error) {
	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Output.Store = normalizeStoreType(cfg.Output.Store)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail mid-batch.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.LLM.Model) == "" {
		problems = append(problems, "llm.model is required")
	}
	if c.LLM.Retries < 0 {
		problems = append(problems, "llm.retries must be >= 0")
	}
	if c.Pricing.InputPerMillion < 0 || c.Pricing.OutputPerMillion < 0 {
		problems = append(problems, "pricing must be >= 0")
	}
	if c.Batch.Count <= 0 {
		problems = append(problems, "batch.count must be > 0")
	}
	if c.Batch.Concurrency <= 0 {
		problems = append(problems, "batch.concurrency must be > 0")
	}
	if c.Batch.RenderConcurrency < 0 {
		problems = append(problems, "batch.render_concurrency must be >= 0")
	}
	if c.Output.Store == "s3" && strings.TrimSpace(c.Output.S3Bucket) == "" {
		problems = append(problems, "output.s3_bucket is required for the s3 store")
	}
	if c.RateLimit.RPM < 0 {
		problems = append(problems, "ratelimit.rpm must be >= 0")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		problems = append(problems, "tracing.sample_rate must be within [0,1]")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
