package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"cockpit/internal/api"
	"cockpit/internal/platform/config"
	"cockpit/internal/platform/logger"
	"cockpit/internal/platform/metrics"
	"cockpit/internal/routing"
	"cockpit/internal/session"
	"cockpit/internal/tenantctx"
)

// main wires the client runtime end to end: log in, resolve the tenant
// context for the given path, then keep the session fresh until interrupted.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	path := "/"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	email := os.Getenv("COCKPIT_EMAIL")
	password := os.Getenv("COCKPIT_PASSWORD")
	if email == "" || password == "" {
		log.Error("COCKPIT_EMAIL and COCKPIT_PASSWORD are required")
		os.Exit(1)
	}

	log.Info("initializing cockpit client",
		"api", cfg.APIBaseURL,
		"state_dir", cfg.StateDir,
		"path", path,
	)

	m := metrics.New()

	routes := routing.DefaultDescriptor()
	if cfg.RoutesFile != "" {
		loaded, err := routing.LoadDescriptor(cfg.RoutesFile)
		if err != nil {
			log.Error("loading routes file", "error", err)
			os.Exit(1)
		}
		routes = loaded
	}

	client, err := api.New(cfg.APIBaseURL,
		api.WithLogger(log),
		api.WithMetrics(m),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithMaxRetries(cfg.MaxRetries),
		api.WithRetryBase(cfg.RetryBase),
	)
	if err != nil {
		log.Error("building api client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	sess, err := session.Login(ctx, client, email, password)
	cancel()
	if err != nil {
		log.Error("login failed", "error", err)
		os.Exit(1)
	}

	persist := tenantctx.NewPersistStore(cfg.StateDir, log)
	broadcast := session.NewLogoutBroadcast(cfg.StateDir, log)
	store := session.NewStore()
	coord := session.NewCoordinator(store, session.RefreshViaAPI(client),
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithRefreshLead(cfg.RefreshLead),
		session.WithLogoutBroadcast(broadcast),
		session.WithContextClearer(persist.Clear),
	)
	coord.StartSession(sess)
	defer coord.Stop()

	// 401s on ordinary requests now refresh-and-replay through the
	// coordinator.
	client.SetRefresher(coord)

	dir := tenantctx.NewDirectory(client)
	resolver := tenantctx.NewResolver(dir, routes,
		tenantctx.WithResolverLogger(log),
		tenantctx.WithResolverMetrics(m),
	)
	init := tenantctx.NewInitializer(resolver, persist, dir, routes, log)

	ctx, cancel = context.WithTimeout(context.Background(), cfg.RequestTimeout)
	rc, err := init.Initialize(ctx, path)
	cancel()
	if err != nil {
		log.Error("context initialization failed", "error", err)
		os.Exit(1)
	}

	if !rc.HasAccess {
		fmt.Printf("no usable context (%s)\n", rc.Reason)
	} else if rc.Project != nil {
		fmt.Printf("context: tenant=%s project=%s role=%s\n", rc.Tenant.Slug, rc.Project.Slug, rc.Role)
	} else {
		fmt.Printf("context: tenant=%s role=%s\n", rc.Tenant.Slug, rc.Role)
	}

	// Sibling processes logging out take this one down with them.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go broadcast.Watch(watchCtx, 250*time.Millisecond, func() {
		log.Info("logout observed from another process")
		coord.Stop()
		store.Clear()
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	select {
	case <-quit:
		log.Info("interrupted, logging out")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.LogoutViaAPI(ctx, client); err != nil {
			log.Warn("wire logout failed", "error", err)
		}
		coord.Logout()
	case <-coord.Expired():
		log.Info("session expired, exiting")
	}
}
