package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orderdesk/crm-console/internal/core/ports"
	"github.com/orderdesk/crm-console/internal/core/service"
	"github.com/orderdesk/crm-console/internal/infrastructure/config"
	"github.com/orderdesk/crm-console/internal/infrastructure/credstore"
	"github.com/orderdesk/crm-console/internal/infrastructure/rest"
	"github.com/orderdesk/crm-console/pkg/logger"
)

// app holds the wired console: config, store, client, and the services every
// command calls into. Built once per invocation by the root PersistentPreRunE.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   ports.CredentialStore
	client  *rest.Client
	session *service.SessionService
	orders  *service.OrderService
	admin   *service.AdminService
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.Get()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := rest.New(rest.Options{
		BaseURL:    cfg.APIURL,
		Store:      store,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     log,
	})

	session := service.NewSessionService(client, store, log)
	client.Refresher().OnAuthExpired(session.HandleAuthExpired)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  client,
		session: session,
		orders:  service.NewOrderService(client, session, log),
		admin:   service.NewAdminService(client, session, log),
	}, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (ports.CredentialStore, error) {
	switch cfg.CredBackend {
	case "file":
		path, err := cfg.CredentialsPath()
		if err != nil {
			return nil, err
		}
		return credstore.NewFileStore(path)
	case "redis":
		client, err := credstore.Connect(ctx, credstore.RedisConfig{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return credstore.NewRedisStore(ctx, client, cfg.Redis.Key)
	case "memory":
		return credstore.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q (want file, redis, or memory)", cfg.CredBackend)
	}
}

// appFrom pulls the app wired by the root command.
func appFrom(cmd *cobra.Command) *app {
	return cmd.Root().Context().Value(appKey{}).(*app)
}

type appKey struct{}

// writeJSON renders v as indented JSON on stdout, used by every command's
// --json mode.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
