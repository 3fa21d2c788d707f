package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/townforge-client/internal/config"
	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/marker"
	"github.com/dtroode/townforge-client/internal/model"
	"github.com/dtroode/townforge-client/internal/navigation"
	mockauth "github.com/dtroode/townforge-client/internal/provider/mock"
	"github.com/dtroode/townforge-client/internal/provider/live"
	"github.com/dtroode/townforge-client/internal/repository/sqlstore"
	"github.com/dtroode/townforge-client/internal/service"
	"github.com/dtroode/townforge-client/internal/token"
	"github.com/dtroode/townforge-client/internal/transport"
)

// app is the wired client: persisted markers, the HTTP pipeline, the stores
// and the navigator, with the 401 handlers subscribed.
type app struct {
	cfg    *config.Config
	logger *logger.Logger

	conn      *sqlstore.Connection
	markers   *marker.Manager
	client    *httpclient.Client
	session   *service.Session
	inventory *service.Inventory
	base      *service.Base
	admin     *service.Admin
	navigator *navigation.Navigator

	unsubscribe []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*app, error) {
	conn, err := sqlstore.NewConnection(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	markers := marker.NewManager(sqlstore.NewKVRepository(conn), logger)

	rt, err := transport.New(cfg.API.CACertFile).RoundTripper()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize transport: %w", err)
	}

	client, err := httpclient.New(cfg.API.URL, cfg.API.Timeout, rt, markers, logger)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize http client: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		conn:      conn,
		markers:   markers,
		client:    client,
		session:   service.NewSession(newAuthProvider(cfg, client, logger), markers, logger),
		inventory: service.NewInventory(client, logger),
		base:      service.NewBase(client, logger),
		admin:     service.NewAdmin(client, markers, logger),
		navigator: navigation.NewNavigator(markers, logger),
	}

	a.unsubscribe = append(a.unsubscribe,
		client.OnUnauthorized(a.session.HandleUnauthorized),
		client.OnUnauthorized(a.navigator.HandleUnauthorized),
		markers.Subscribe(func(change model.MarkerChange) {
			logger.Debug("Client: session markers changed",
				"keys", change.Keys,
				"cleared", change.Cleared)
		}),
	)

	return a, nil
}

// newAuthProvider picks the offline provider when mock auth is enabled.
func newAuthProvider(cfg *config.Config, client *httpclient.Client, logger *logger.Logger) model.AuthProvider {
	if cfg.Auth.Mock {
		logger.Info("Client: using mock authentication", "delay", cfg.Auth.MockDelay.String())
		return mockauth.NewProvider(cfg.Auth.MockDelay, token.NewJWT(cfg.Auth.MockSecret), logger)
	}
	return live.NewProvider(client)
}

func (a *app) Close() error {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil

	if err := a.conn.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

// failure turns a store's recorded error message into a command error.
func failure(message string) error {
	if message == "" {
		message = "operation failed"
	}
	return errors.New(message)
}
