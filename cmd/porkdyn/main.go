package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/porkdyn/porkdyn/allowlist"
	"github.com/porkdyn/porkdyn/geoip"
	pdhttp "github.com/porkdyn/porkdyn/http"
	"github.com/porkdyn/porkdyn/provider"
	"github.com/porkdyn/porkdyn/reconcile"
	"github.com/porkdyn/porkdyn/verify"
)

func main() {
	// Parse command
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "healthcheck":
			os.Exit(0)
		case "serve":
			// Continue to serve
		case "version":
			fmt.Println("porkdyn v1.0.0")
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			fmt.Println("Available commands: serve, healthcheck, version")
			os.Exit(1)
		}
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting porkdyn server")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "/app/config/app.yaml"
	}

	config, err := loadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := validateConfig(config); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Create context for background tasks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Porkbun gateway
	gatewayCfg := provider.DefaultClientConfig()
	if config.Provider.BaseURL != "" {
		gatewayCfg.BaseURL = config.Provider.BaseURL
	}
	if config.Provider.Timeout != "" {
		d, err := time.ParseDuration(config.Provider.Timeout)
		if err != nil {
			slog.Warn("Invalid provider timeout, using default",
				"value", config.Provider.Timeout,
				"error", err,
			)
		} else {
			gatewayCfg.Timeout = d
		}
	}
	gateway := provider.NewClient(gatewayCfg)

	// Optional domain allowlist with hot reload
	var policy reconcile.DomainPolicy
	if config.Allowlist.Path != "" {
		list := allowlist.New()
		watcher := allowlist.NewWatcher(config.Allowlist.Path, list)
		if err := watcher.Load(); err != nil {
			slog.Error("Failed to load allowlist", "path", config.Allowlist.Path, "error", err)
			os.Exit(1)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Allowlist watcher failed", "error", err)
			}
		}()
		policy = list
		slog.Info("Domain allowlist enabled", "path", config.Allowlist.Path, "domains", list.Len())
	}

	// Optional GeoIP audit logging
	var geo geoip.CountryLookup
	if config.GeoIP.Enabled {
		reader, err := geoip.NewReader(config.GeoIP.MMDBPath)
		if err != nil {
			slog.Error("Failed to open GeoIP database", "path", config.GeoIP.MMDBPath, "error", err)
			os.Exit(1)
		}
		defer reader.Close()
		geo = reader
		slog.Info("GeoIP audit logging enabled", "path", config.GeoIP.MMDBPath)
	}

	// Optional propagation verification
	var verifier reconcile.Verifier
	if config.Verify.Enabled {
		proberCfg := verify.DefaultProberConfig()
		if len(config.Verify.Resolvers) > 0 {
			proberCfg.Servers = config.Verify.Resolvers
		}
		if config.Verify.Timeout != "" {
			d, err := time.ParseDuration(config.Verify.Timeout)
			if err != nil {
				slog.Warn("Invalid verify timeout, using default",
					"value", config.Verify.Timeout,
					"error", err,
				)
			} else {
				proberCfg.Timeout = d
			}
		}
		verifier = verify.NewProber(proberCfg)
		slog.Info("Propagation verification enabled", "resolvers", proberCfg.Servers)
	}

	orchestrator := reconcile.NewOrchestrator(gateway, reconcile.OrchestratorConfig{
		TTL:      config.Provider.TTL,
		Policy:   policy,
		Verifier: verifier,
	})

	srv := pdhttp.NewServer(pdhttp.ServerConfig{Listen: config.HTTP.Listen}, orchestrator, geo)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	defer srv.Shutdown()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	<-sigCh
	slog.Info("Shutting down server...")

	cancel()
	slog.Info("Server stopped")
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("CONFIG_PATH") == "" {
			slog.Warn("Config file not found, using defaults", "path", path)
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return config, nil
}

// validateConfig validates the configuration before anything starts.
func validateConfig(config *Config) error {
	if config.HTTP.Listen == "" {
		return fmt.Errorf("http.listen must not be empty")
	}
	if config.Provider.TTL != 0 && config.Provider.TTL < 600 {
		return fmt.Errorf("provider.ttl must be at least 600 seconds (Porkbun minimum)")
	}
	if config.GeoIP.Enabled && config.GeoIP.MMDBPath == "" {
		return fmt.Errorf("geoip is enabled but mmdb_path is not configured")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{Listen: ":8080"},
	}
}

// Config represents the application configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Provider  ProviderConfig  `yaml:"provider"`
	Allowlist AllowlistConfig `yaml:"allowlist"`
	GeoIP     GeoIPConfig     `yaml:"geoip"`
	Verify    VerifyConfig    `yaml:"verify"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// ProviderConfig tunes the Porkbun API client. Credentials are never
// configured here; they arrive with each update request.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	TTL     int    `yaml:"ttl"`
}

type AllowlistConfig struct {
	Path string `yaml:"path"`
}

type GeoIPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	MMDBPath string `yaml:"mmdb_path"`
}

// VerifyConfig controls the post-update propagation probe.
type VerifyConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Resolvers []string `yaml:"resolvers"`
	Timeout   string   `yaml:"timeout"`
}
