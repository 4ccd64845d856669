package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Relume     RelumeConfig     `yaml:"relume"`
	Webflow    WebflowConfig    `yaml:"webflow"`
	Cloudflare CloudflareConfig `yaml:"cloudflare"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RelumeConfig struct {
	APIKey string `yaml:"api_key"`
}

type WebflowConfig struct {
	APIKey      string `yaml:"api_key"`
	Template    string `yaml:"template"`
	CNAMETarget string `yaml:"cname_target"`
}

type CloudflareConfig struct {
	APIToken   string `yaml:"api_token"`
	ZoneID     string `yaml:"zone_id"`
	RootDomain string `yaml:"root_domain"`
	TTL        int    `yaml:"ttl"`
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Webflow: WebflowConfig{
			Template:    "real-estate-professional",
			CNAMETarget: "webflow-proxy.webflow.com",
		},
		Cloudflare: CloudflareConfig{
			ZoneID:     "your-zone-id", // placeholder, records are never submitted
			RootDomain: "yourdomain.com",
			TTL:        300,
		},
	}
}

// Load reads .env files, then the YAML config, then environment overrides,
// and validates the result. A missing .env or config file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	path := os.Getenv("PROVISIONER_CONFIG")
	if path == "" {
		path = "config/provisioner.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", cfg.Server.RequestTimeout)
	}
	if cfg.Webflow.Template == "" {
		return fmt.Errorf("webflow.template is required")
	}
	if cfg.Webflow.CNAMETarget == "" {
		return fmt.Errorf("webflow.cname_target is required")
	}
	if cfg.Cloudflare.RootDomain == "" {
		return fmt.Errorf("cloudflare.root_domain is required")
	}
	if cfg.Cloudflare.TTL <= 0 {
		return fmt.Errorf("cloudflare.ttl must be positive, got %d", cfg.Cloudflare.TTL)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RELUME_API_KEY"); v != "" {
		cfg.Relume.APIKey = v
	}
	if v := os.Getenv("WEBFLOW_API_KEY"); v != "" {
		cfg.Webflow.APIKey = v
	}
	if v := os.Getenv("CLOUDFLARE_API_TOKEN"); v != "" {
		cfg.Cloudflare.APIToken = v
	}
	if v := os.Getenv("CLOUDFLARE_ZONE_ID"); v != "" {
		cfg.Cloudflare.ZoneID = v
	}
	if v := os.Getenv("PROVISIONER_ROOT_DOMAIN"); v != "" {
		cfg.Cloudflare.RootDomain = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
