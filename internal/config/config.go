// Package config loads metacontrold's configuration. Sources, in priority
// order: environment variables > config file > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all metacontrold configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for the Meta API.
	ListenAddr string `json:"listen_addr"`

	// SystemID is the privileged system namespace meta-routable packages
	// and actions are loaded from.
	SystemID string `json:"system_id"`

	// APIPath, APIVersion and Prefix name the meta-routed URL shape:
	// /<apipath>/<apiversion>/<prefix>/<metaPackage>[/<residual>].
	APIPath    string `json:"api_path"`
	APIVersion string `json:"api_version"`
	Prefix     string `json:"prefix"`

	// BackendHostBase and BackendAPIVersion target the upstream action
	// invocation endpoint ActivationClient (C1) calls.
	BackendHostBase   string `json:"backend_host_base"`
	BackendAPIVersion string `json:"backend_api_version"`

	// EntityStoreDSN, AuthStoreDSN and ActivationStoreDSN are Postgres /
	// MySQL connection strings for the three document stores. An empty
	// DSN selects the in-memory reference implementation, for local
	// development and tests.
	EntityStoreDSN     string `json:"entity_store_dsn,omitempty"`
	AuthStoreDSN       string `json:"auth_store_dsn,omitempty"`
	ActivationStoreDSN string `json:"activation_store_dsn,omitempty"`

	// RetentionPeriod bounds how long trigger activation documents are
	// kept by the housekeeping compaction job (Go duration syntax, plus a
	// "d" day suffix, e.g. "90d").
	RetentionPeriod string `json:"retention_period"`

	// HousekeepingSchedule is the cron expression the compaction job runs
	// on (robfig/cron syntax).
	HousekeepingSchedule string `json:"housekeeping_schedule"`

	// MCPEnabled toggles the MCP front door alongside the HTTP Meta API.
	MCPEnabled bool `json:"mcp_enabled"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`

	// TracingEndpoint is the OTLP gRPC collector endpoint. Empty disables
	// tracing entirely.
	TracingEndpoint string `json:"tracing_endpoint,omitempty"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint.
	MetricsAddr string `json:"metrics_addr"`
}

// Default returns configuration with sensible defaults for local
// development: in-memory stores, no tracing, meta-routing under "web".
func Default() Config {
	return Config{
		ListenAddr:           ":8080",
		SystemID:             "system",
		APIPath:              "api",
		APIVersion:           "v1",
		Prefix:               "web",
		BackendHostBase:      "http://localhost:8585",
		BackendAPIVersion:    "v1",
		RetentionPeriod:      "90d",
		HousekeepingSchedule: "0 3 * * *",
		LogLevel:             "info",
		MetricsAddr:          ":9090",
	}
}

// Load reads configuration from a file (if path is non-empty), then
// overlays environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"METACONTROL_LISTEN_ADDR":         &cfg.ListenAddr,
		"METACONTROL_SYSTEM_ID":           &cfg.SystemID,
		"METACONTROL_API_PATH":            &cfg.APIPath,
		"METACONTROL_API_VERSION":         &cfg.APIVersion,
		"METACONTROL_PREFIX":              &cfg.Prefix,
		"METACONTROL_BACKEND_HOST_BASE":   &cfg.BackendHostBase,
		"METACONTROL_BACKEND_API_VERSION": &cfg.BackendAPIVersion,
		"METACONTROL_ENTITY_STORE_DSN":    &cfg.EntityStoreDSN,
		"METACONTROL_AUTH_STORE_DSN":      &cfg.AuthStoreDSN,
		"METACONTROL_ACTIVATION_STORE_DSN": &cfg.ActivationStoreDSN,
		"METACONTROL_RETENTION_PERIOD":    &cfg.RetentionPeriod,
		"METACONTROL_HOUSEKEEPING_SCHEDULE": &cfg.HousekeepingSchedule,
		"METACONTROL_LOG_LEVEL":           &cfg.LogLevel,
		"METACONTROL_TRACING_ENDPOINT":    &cfg.TracingEndpoint,
		"METACONTROL_METRICS_ADDR":        &cfg.MetricsAddr,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	if v := os.Getenv("METACONTROL_MCP_ENABLED"); v != "" {
		cfg.MCPEnabled = v == "true" || v == "1"
	}
}
