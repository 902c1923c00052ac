package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/rodrigiego-coder/beauty-manager/internal/buffer"
	"github.com/rodrigiego-coder/beauty-manager/internal/compliance"
	"github.com/rodrigiego-coder/beauty-manager/internal/composer"
	"github.com/rodrigiego-coder/beauty-manager/internal/config"
	"github.com/rodrigiego-coder/beauty-manager/internal/conversation"
	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
	"github.com/rodrigiego-coder/beauty-manager/internal/engine"
	"github.com/rodrigiego-coder/beauty-manager/internal/gateway"
	"github.com/rodrigiego-coder/beauty-manager/internal/genai"
	"github.com/rodrigiego-coder/beauty-manager/internal/lexicon"
	"github.com/rodrigiego-coder/beauty-manager/internal/logging"
	"github.com/rodrigiego-coder/beauty-manager/internal/outbound"
	"github.com/rodrigiego-coder/beauty-manager/internal/resolver"
	"github.com/rodrigiego-coder/beauty-manager/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server and conversation engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, cfg, log, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := gateway.New(cfg, rt.Engine, rt.Registry, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}

// runtime bundles everything the serve and message commands need to run
// the conversation pipeline.
type runtime struct {
	Engine   *engine.Engine
	Registry *prometheus.Registry

	db    *store.DB
	redis *backend.Client
}

func (r *runtime) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if r.db != nil {
		_ = r.db.Close()
	}
}

// buildRuntime wires stores, skills, the machine and the engine from
// config. sender overrides the outbound gateway when non-nil.
func buildRuntime(ctx context.Context, cfg config.Config, log *logging.Logger, sender domain.OutboundGateway) (*runtime, error) {
	loc, err := time.LoadLocation(cfg.Salon.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Salon.Timezone, err)
	}

	db, err := store.Open(paths.DatabasePath(&cfg), log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rt := &runtime{db: db}

	sessions := store.NewSessionStore(db)
	catalog := store.NewCatalogStore(db)
	contacts := store.NewContactStore(db)
	messages := store.NewMessageLog(db)
	audit := store.NewAuditStore(db)
	notifications := store.NewNotificationStore(db)

	if cfg.Salon.Catalog != "" {
		if err := seedCatalog(ctx, catalog, cfg.Salon.ID, cfg.Salon.Catalog, log); err != nil {
			rt.Close()
			return nil, err
		}
	}

	var lex *lexicon.Resolver
	if cfg.Salon.Lexicon != "" {
		entries, err := config.LoadLexicon(cfg.Salon.Lexicon)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("loading lexicon %s: %w", cfg.Salon.Lexicon, err)
		}
		lex = lexicon.NewResolver(entries)
		log.Info().Int("entries", len(entries)).Msg("lexicon loaded")
	}

	ttl := time.Duration(cfg.Engine.SessionTTLMin) * time.Minute
	scheduling := conversation.NewSchedulingSkill(catalog, sessions, notifications, lex, loc, nil, log)
	machine := conversation.NewMachine(sessions, ttl, nil, log, scheduling)

	filter := compliance.NewFilter(compliance.Rules(), audit, log)

	if cfg.Genai.Endpoint == "" {
		log.Warn().Msg("no genai endpoint configured — every general reply will use the fallback")
	}
	adapter := genai.NewAdapter(
		genai.NewAPIClient(cfg.Genai.Endpoint, cfg.Genai.APIKey, cfg.Genai.Model, 15*time.Second), log)

	if sender == nil {
		if cfg.Whatsapp.Endpoint != "" {
			sender = outbound.NewWhatsappSender(cfg.Whatsapp.Endpoint, cfg.Whatsapp.Token, 15*time.Second, log)
		} else {
			log.Warn().Msg("no whatsapp endpoint configured — replies go to the log")
			sender = outbound.NewConsoleSender(log)
		}
	}

	window := time.Duration(cfg.Engine.DebounceMillis) * time.Millisecond
	var frags buffer.Store = buffer.NewMemoryStore()
	var locker engine.SessionLocker
	if cfg.Redis.Enabled {
		rt.redis = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rt.redis.Ping(ctx).Err(); err != nil {
			rt.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		frags = buffer.NewRedisStore(rt.redis, cfg.Redis.Prefix, window)
		locker = engine.NewRedisLocker(rt.redis, cfg.Redis.Prefix, 30*time.Second)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis buffer and session lock")
	} else {
		log.Info().Msg("using in-process buffer (single instance only)")
	}

	rt.Registry = prometheus.NewRegistry()

	rt.Engine = engine.New(engine.Deps{
		Machine:   machine,
		Buffer:    frags,
		Window:    window,
		Filter:    filter,
		Catalog:   catalog,
		Genai:     adapter,
		Composer:  composer.New(contacts, cfg.Salon.Name, time.Duration(cfg.Engine.GreetingWindowHr)*time.Hour, loc, log),
		Outbound:  sender,
		Messages:  messages,
		Dates:     resolver.NewDateResolver(nil),
		Audit:     audit,
		Locker:    locker,
		Metrics:   engine.NewMetrics(rt.Registry),
		SalonName: cfg.Salon.Name,
		Log:       log,
	})

	return rt, nil
}

// seedCatalog loads the YAML catalog file and replaces the salon's stored
// catalog with it.
func seedCatalog(ctx context.Context, catalog *store.SQLiteCatalogStore, salonID, path string, log *logging.Logger) error {
	services, pros, products, hours, err := config.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("loading catalog %s: %w", path, err)
	}
	if err := catalog.Seed(ctx, salonID, services, pros, products, hours); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	log.Info().
		Str("path", path).
		Int("services", len(services)).
		Int("professionals", len(pros)).
		Int("products", len(products)).
		Msg("catalog seeded")
	return nil
}
