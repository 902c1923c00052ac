// Package config loads, validates and persists beautyd configuration.
package config

// Config is the root configuration structure, loaded from
// ~/.beautyd/config.yaml.
type Config struct {
	Salon    SalonConfig    `yaml:"salon"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Genai    GenaiConfig    `yaml:"genai"`
	Whatsapp WhatsappConfig `yaml:"whatsapp"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SalonConfig identifies the salon this instance serves.
type SalonConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
	// Catalog is the path of the YAML catalog file used for seeding.
	Catalog string `yaml:"catalog,omitempty"`
	// Lexicon is the path of the YAML file mapping salon-dialect phrases
	// to canonical catalog entities.
	Lexicon string `yaml:"lexicon,omitempty"`
}

// ServerConfig controls the inbound HTTP listener.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Bind string `yaml:"bind"` // "loopback" | "lan" | "custom"
	Host string `yaml:"host,omitempty"`
	// Token authenticates gateway webhook calls; supports ${ENV_VAR}.
	Token string `yaml:"token,omitempty"`
}

// StoreConfig controls the SQLite database.
type StoreConfig struct {
	// Path of the database file; empty means <base>/data/beautyd.db.
	Path string `yaml:"path,omitempty"`
}

// RedisConfig controls the debounce buffer and the session lock. When
// disabled, both fall back to in-process equivalents (single worker only).
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"` // supports ${ENV_VAR}
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// GenaiConfig points at the generation service.
type GenaiConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	APIKey   string `yaml:"apiKey,omitempty"` // supports ${ENV_VAR}
	Model    string `yaml:"model,omitempty"`
}

// WhatsappConfig points at the outbound message provider. An empty
// endpoint routes replies to the log instead (development mode).
type WhatsappConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Token    string `yaml:"token,omitempty"` // supports ${ENV_VAR}
}

// EngineConfig tunes the conversation pipeline.
type EngineConfig struct {
	DebounceMillis   int `yaml:"debounceMillis"`
	SessionTTLMin    int `yaml:"sessionTtlMinutes"`
	GreetingWindowHr int `yaml:"greetingWindowHours"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	ConsoleStyle string `yaml:"consoleStyle"` // "pretty" | "json"
}

// Catalog is the YAML shape of a salon catalog seed file.
type Catalog struct {
	Services      []CatalogService      `yaml:"services"`
	Professionals []CatalogProfessional `yaml:"professionals"`
	Products      []CatalogProduct      `yaml:"products"`
	Hours         CatalogHours          `yaml:"hours"`
}

// CatalogService is one bookable service in the seed file.
type CatalogService struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Price           float64 `yaml:"price"`
	DurationMinutes int     `yaml:"durationMinutes,omitempty"`
	Active          *bool   `yaml:"active,omitempty"` // nil means active
}

// CatalogProfessional is one bookable staff member in the seed file.
type CatalogProfessional struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Active *bool  `yaml:"active,omitempty"`
}

// CatalogProduct is one retail product in the seed file.
type CatalogProduct struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// CatalogHours is the salon's opening hours as display text.
type CatalogHours struct {
	Weekdays string `yaml:"weekdays,omitempty"`
	Saturday string `yaml:"saturday,omitempty"`
	Sunday   string `yaml:"sunday,omitempty"`
}
