package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Salon: SalonConfig{
			Timezone: "America/Sao_Paulo",
		},
		Server: ServerConfig{
			Port: 18790,
			Bind: "loopback",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "beautyd:",
		},
		Genai: GenaiConfig{
			Model: "gpt-4o-mini",
		},
		Engine: EngineConfig{
			DebounceMillis:   2500,
			SessionTTLMin:    30,
			GreetingWindowHr: 8,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
