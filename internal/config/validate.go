package config

import (
	"fmt"
	"slices"
	"time"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Salon.ID == "" {
		issues = append(issues, ValidationIssue{
			Path:    "salon.id",
			Message: "salon id is required",
		})
	}
	if cfg.Salon.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Salon.Timezone); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "salon.timezone",
				Message: fmt.Sprintf("unknown timezone %q", cfg.Salon.Timezone),
			})
		}
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}
	if cfg.Server.Bind == "custom" && cfg.Server.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.host",
			Message: "host is required when bind is custom",
		})
	}

	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		issues = append(issues, ValidationIssue{
			Path:    "redis.addr",
			Message: "addr is required when redis is enabled",
		})
	}

	if cfg.Engine.DebounceMillis < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "engine.debounceMillis",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Engine.DebounceMillis),
		})
	}
	if cfg.Engine.SessionTTLMin <= 0 {
		issues = append(issues, ValidationIssue{
			Path:    "engine.sessionTtlMinutes",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Engine.SessionTTLMin),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	validStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
