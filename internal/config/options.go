// Package config declares the flags and environment variables the server
// binary reads, following the NewOptions/Flags/Complete shape the teacher's
// hivemind command uses for its own Options.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Scott-fo/t3-clone/pkg/errorx"
)

const envPrefix = "T3"

// Options holds every server-level setting: storage locations, the HTTP
// bind address and each provider's base URL override (§4.1, §7).
type Options struct {
	HTTPAddr    string `mapstructure:"http-addr"`
	PostgresDSN string `mapstructure:"postgres-dsn"`
	RedisAddr   string `mapstructure:"redis-addr"`
	MasterKey   string `mapstructure:"master-key"`

	OpenAIBaseURL     string `mapstructure:"openai-base-url"`
	AnthropicBaseURL  string `mapstructure:"anthropic-base-url"`
	GeminiBaseURL     string `mapstructure:"gemini-base-url"`
	OpenRouterBaseURL string `mapstructure:"openrouter-base-url"`
}

func NewOptions() *Options {
	return &Options{
		HTTPAddr:          ":8080",
		PostgresDSN:       "postgres://localhost:5432/t3clone?sslmode=disable",
		RedisAddr:         "localhost:6379",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		AnthropicBaseURL:  "https://api.anthropic.com/v1",
		GeminiBaseURL:     "https://generativelanguage.googleapis.com",
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
	}
}

// AddFlags registers every flag and binds it to its T3_-prefixed env var.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", o.HTTPAddr, "address the HTTP server listens on")
	fs.String("postgres-dsn", o.PostgresDSN, "postgres connection string")
	fs.String("redis-addr", o.RedisAddr, "redis host:port used for the CVR cache")
	fs.String("master-key", o.MasterKey, "base64 master key used to derive per-provider api key encryption keys")

	fs.String("openai-base-url", o.OpenAIBaseURL, "openai-compatible API base URL")
	fs.String("anthropic-base-url", o.AnthropicBaseURL, "anthropic API base URL")
	fs.String("gemini-base-url", o.GeminiBaseURL, "gemini API base URL")
	fs.String("openrouter-base-url", o.OpenRouterBaseURL, "openrouter API base URL")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Complete binds the parsed flags/env into o and validates the result.
func (o *Options) Complete() error {
	if err := viper.Unmarshal(o); err != nil {
		return errorx.Wrap(errorx.Fatal, err, "decode options")
	}
	if o.MasterKey == "" {
		return errorx.New(errorx.Fatal, "T3_MASTER_KEY must be set")
	}
	return nil
}

func (o *Options) String() string {
	return fmt.Sprintf("http-addr=%s postgres-dsn=%s redis-addr=%s", o.HTTPAddr, o.PostgresDSN, o.RedisAddr)
}
