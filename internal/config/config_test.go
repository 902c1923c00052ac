package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/lexicon"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 18790, cfg.Server.Port)
	assert.Equal(t, "America/Sao_Paulo", cfg.Salon.Timezone)
	assert.Equal(t, 2500, cfg.Engine.DebounceMillis)
	assert.Equal(t, 30, cfg.Engine.SessionTTLMin)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
salon:
  id: salon-1
  name: Espaço Beleza
server:
  port: 9000
engine:
  debounceMillis: 1000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "salon-1", cfg.Salon.ID)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Engine.DebounceMillis)
	// Untouched fields still get defaults.
	assert.Equal(t, 30, cfg.Engine.SessionTTLMin)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ExpandsSensitiveEnvVars(t *testing.T) {
	t.Setenv("TEST_GENAI_KEY", "sk-secret")
	path := writeConfig(t, `
salon:
  id: salon-1
genai:
  apiKey: ${TEST_GENAI_KEY}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.Genai.APIKey)
}

func TestLoad_UnsetEnvVarLeftVerbatim(t *testing.T) {
	path := writeConfig(t, `
genai:
  apiKey: ${DEFINITELY_NOT_SET_ABC}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_ABC}", cfg.Genai.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BEAUTYD_SERVER_PORT", "7777")
	t.Setenv("BEAUTYD_LOG_LEVEL", "DEBUG")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "salon: [not a map")
	_, err := Load(path)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Salon.ID = "salon-1"
	assert.Empty(t, Validate(&cfg))

	cfg.Salon.ID = ""
	cfg.Server.Port = 99999
	cfg.Logging.Level = "shout"
	issues := Validate(&cfg)
	paths := make([]string, len(issues))
	for i, is := range issues {
		paths[i] = is.Path
	}
	assert.Contains(t, paths, "salon.id")
	assert.Contains(t, paths, "server.port")
	assert.Contains(t, paths, "logging.level")
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	cfg := Defaults()
	cfg.Salon.ID = "salon-1"
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "redis.addr", issues[0].Path)
}

func TestResolvePaths_HomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("BEAUTYD_HOME", base)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, p.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), p.Config)

	require.NoError(t, p.EnsureDirs())
	assert.DirExists(t, p.Data)
	assert.DirExists(t, p.Logs)
}

func TestDatabasePath(t *testing.T) {
	p := Paths{Data: "/var/lib/beautyd"}
	cfg := Defaults()
	assert.Equal(t, filepath.Join("/var/lib/beautyd", "beautyd.db"), p.DatabasePath(&cfg))

	cfg.Store.Path = "/tmp/custom.db"
	assert.Equal(t, "/tmp/custom.db", p.DatabasePath(&cfg))
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
services:
  - id: svc-1
    name: Escova Progressiva
    price: 150.0
    durationMinutes: 90
  - id: svc-2
    name: Corte
    price: 80.0
    active: false
professionals:
  - id: pro-1
    name: Ana
products:
  - id: prd-1
    name: Máscara Capilar
    price: 60.0
hours:
  weekdays: das 9h às 19h
`), 0o600))

	services, pros, products, hours, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.True(t, services[0].Active, "missing active flag defaults to active")
	assert.False(t, services[1].Active)
	assert.Equal(t, 150.0, services[0].Price)
	require.Len(t, pros, 1)
	assert.True(t, pros[0].Active)
	require.Len(t, products, 1)
	assert.Equal(t, "das 9h às 19h", hours.Weekdays)
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
entries:
  - id: lex-1
    entityType: service
    canonicalName: Escova Progressiva
    triggerPhrases: [progressiva, alisamento]
  - id: lex-2
    entityType: service
    canonicalName: Escova Progressiva
    triggerPhrases: [escova]
    ambiguous: true
`), 0o600))

	entries, err := LoadLexicon(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, lexicon.EntityService, entries[0].EntityType)
	assert.Equal(t, []string{"progressiva", "alisamento"}, entries[0].TriggerPhrases)
	assert.True(t, entries[1].Ambiguous)
}

func TestLoad_ExpandsWhatsappToken(t *testing.T) {
	t.Setenv("WA_TOKEN", "wa-secret")
	path := writeConfig(t, `
salon:
  id: salon-1
whatsapp:
  endpoint: https://wa.example.com
  token: ${WA_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wa-secret", cfg.Whatsapp.Token)
}
