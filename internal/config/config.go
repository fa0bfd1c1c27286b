package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults shared by the portal service and the terminal client.
var Defaults = map[string]any{
	"log.level":        "info",
	"web.port":         "8090",
	"api.url":          "http://localhost:5000/api",
	"api.timeout":      "15s",
	"session.store":    "memory",
	"session.cookie":   "portal_client",
	"session.ttl":      "24h",
	"db.mongo.url":     "mongodb://localhost:27017",
	"db.mongo.name":    "portal",
	"redis.addr":       "localhost:6379",
	"redis.db":         "0",
	"nats.enabled":     "false",
	"nats.url":         "nats://localhost:4222",
	"notify.websocket": "true",
}

// Config is a read-only view over layered settings: defaults, an optional YAML
// file, then NAMESPACE_ environment variables.
type Config struct {
	k *koanf.Koanf
}

// Load builds a Config for namespace. args may carry --config <path> or --config=<path>.
// A .env file in the working directory is loaded first when present.
func Load(namespace string, args []string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("cannot load defaults: %w", err)
	}

	if path := configPath(args); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("cannot load config file %s: %w", path, err)
		}
	}

	prefix := strings.ToUpper(namespace) + "_"
	envProvider := env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "_", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("cannot load environment: %w", err)
	}

	return &Config{k: k}, nil
}

// FromMap builds a Config from explicit values on top of Defaults.
func FromMap(values map[string]any) *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(Defaults, "."), nil)
	_ = k.Load(confmap.Provider(values, "."), nil)
	return &Config{k: k}
}

func configPath(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func (c *Config) GetString(key string) (string, bool) {
	if c == nil || !c.k.Exists(key) {
		return "", false
	}
	return c.k.String(key), true
}

func (c *Config) GetStringOrDef(key, def string) string {
	if v, ok := c.GetString(key); ok && v != "" {
		return v
	}
	return def
}

func (c *Config) GetDuration(key string) (time.Duration, bool) {
	v, ok := c.GetString(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (c *Config) GetDurationOrDef(key string, def time.Duration) time.Duration {
	if d, ok := c.GetDuration(key); ok {
		return d
	}
	return def
}

func (c *Config) GetBool(key string) bool {
	v, _ := c.GetString(key)
	b, _ := strconv.ParseBool(v)
	return b
}

func (c *Config) GetIntOrDef(key string, def int) int {
	v, ok := c.GetString(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
