package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/lexicon"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so secrets can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Server.Token = expandEnvVars(cfg.Server.Token)
	cfg.Redis.Password = expandEnvVars(cfg.Redis.Password)
	cfg.Genai.APIKey = expandEnvVars(cfg.Genai.APIKey)
	cfg.Whatsapp.Token = expandEnvVars(cfg.Whatsapp.Token)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Salon.Timezone == "" {
		cfg.Salon.Timezone = "America/Sao_Paulo"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 18790
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = "loopback"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "beautyd:"
	}
	if cfg.Genai.Model == "" {
		cfg.Genai.Model = "gpt-4o-mini"
	}
	if cfg.Engine.DebounceMillis == 0 {
		cfg.Engine.DebounceMillis = 2500
	}
	if cfg.Engine.SessionTTLMin == 0 {
		cfg.Engine.SessionTTLMin = 30
	}
	if cfg.Engine.GreetingWindowHr == 0 {
		cfg.Engine.GreetingWindowHr = 8
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads BEAUTYD_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BEAUTYD_SALON_ID"); v != "" {
		cfg.Salon.ID = v
	}
	if v := os.Getenv("BEAUTYD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BEAUTYD_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("BEAUTYD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// LoadCatalog reads a YAML catalog seed file into domain types. Entries
// without an explicit active flag are active.
func LoadCatalog(path string) ([]domain.Service, []domain.Professional, []domain.Product, domain.BusinessHours, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, domain.BusinessHours{}, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, nil, nil, domain.BusinessHours{}, &ConfigError{Message: "failed to parse catalog: " + err.Error()}
	}

	services := make([]domain.Service, len(cat.Services))
	for i, s := range cat.Services {
		services[i] = domain.Service{
			ID:              s.ID,
			Name:            s.Name,
			Price:           s.Price,
			DurationMinutes: s.DurationMinutes,
			Active:          s.Active == nil || *s.Active,
		}
	}
	pros := make([]domain.Professional, len(cat.Professionals))
	for i, p := range cat.Professionals {
		pros[i] = domain.Professional{
			ID:     p.ID,
			Name:   p.Name,
			Active: p.Active == nil || *p.Active,
		}
	}
	products := make([]domain.Product, len(cat.Products))
	for i, p := range cat.Products {
		products[i] = domain.Product{ID: p.ID, Name: p.Name, Price: p.Price}
	}
	hours := domain.BusinessHours{
		Weekdays: cat.Hours.Weekdays,
		Saturday: cat.Hours.Saturday,
		Sunday:   cat.Hours.Sunday,
	}
	return services, pros, products, hours, nil
}

// LoadLexicon reads a YAML lexicon file mapping salon-dialect phrases to
// canonical catalog entities.
func LoadLexicon(path string) ([]lexicon.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Entries []lexicon.Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Message: "failed to parse lexicon: " + err.Error()}
	}
	return doc.Entries, nil
}
