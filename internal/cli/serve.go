package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gamevault/internal/auth"
	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/internal/store"
	"github.com/mesh-intelligence/gamevault/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection over HTTP",
		Long: `Serve starts the web application: the game list and form pages, the
JSON API under /api, change notifications on /ws and metrics on /metrics.
It runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: listen_addr from config)")
	return cmd
}

func (a *app) runServe(ctx context.Context, addr string) (err error) {
	if addr == "" {
		addr = a.cfg.GetString(cfgKeyListenAddr)
	}
	ttl, err := sessionTTL(a.cfg)
	if err != nil {
		return err
	}
	secret := a.cfg.GetString(cfgKeySessionSecret)
	if secret == "" {
		secret, err = newSecret()
		if err != nil {
			return systemError(err)
		}
		a.logger.Warn("no session_secret configured, sessions end when the server stops; run gamevault init")
	}

	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer a.detach(backend, &err)

	games, err := backend.Games()
	if err != nil {
		return systemError(err)
	}
	users, err := backend.Users()
	if err != nil {
		return systemError(err)
	}

	authSvc, err := auth.NewService(users, auth.Config{
		Secret: []byte(secret),
		TTL:    ttl,
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	bundle, err := i18n.Load()
	if err != nil {
		return systemError(fmt.Errorf("load translations: %w", err))
	}
	for locale, keys := range bundle.MissingKeys() {
		a.logger.Warn("missing translations", "locale", locale, "keys", keys)
	}

	st := store.New(games, store.WithLogger(a.logger))
	if err := st.Load(ctx); err != nil {
		return systemError(fmt.Errorf("load games: %w", err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := web.NewServer(web.Config{
		Addr:     addr,
		Store:    st,
		Auth:     authSvc,
		Bundle:   bundle,
		Locale:   a.cfg.GetString(cfgKeyLocale),
		Logger:   a.logger,
		Registry: registry,
	})
	if err != nil {
		return systemError(err)
	}

	a.logger.Info("serving", "addr", addr, "data_dir", backend.DataDir(), "games", len(st.Games()))
	if err := srv.Run(ctx); err != nil {
		return systemError(fmt.Errorf("serve: %w", err))
	}
	return nil
}
