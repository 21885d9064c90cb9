// Sitekit serves captcha-protected comments, view counters and the page
// helpers around them.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"go.uber.org/fx"
	_ "modernc.org/sqlite"

	"github.com/jdholdren/sitekit/internal/api"
	"github.com/jdholdren/sitekit/internal/config"
	"github.com/jdholdren/sitekit/internal/menu"
	"github.com/jdholdren/sitekit/internal/migrations"
	"github.com/jdholdren/sitekit/internal/sitekit"
	"github.com/jdholdren/sitekit/internal/sqlite"
	"github.com/jdholdren/sitekit/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	cfg, err := config.Load(ctx, nil)
	if err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	level := slog.LevelInfo
	if cfg.DebugEndpoints {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LoggerFormat, level))

	// Connect to the sqlite db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	// The file can be locked by a previous instance that's still shutting down
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "database not ready", "err", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		log.Fatalf("error connecting to database: %s", err)
	}

	// Run all migrations
	if err := migrations.Run(dbx); err != nil {
		log.Fatalf("error running migrations: %s", err)
	}

	menus := api.DefaultMenus
	if cfg.MenuFile != "" {
		if menus, err = menu.Load(cfg.MenuFile); err != nil {
			log.Fatalf("error loading menus: %s", err)
		}
	}

	repo := sqlite.New(dbx)

	// Start the application
	fx.New(
		fx.Supply(
			api.ServerConfig{
				Port:           cfg.Port,
				CookieHashKey:  []byte(cfg.CookieHashKey),
				CookieBlockKey: []byte(cfg.CookieBlockKey),
				HttpsCookies:   cfg.HTTPSCookies,
				CorsHeader:     cfg.CORSOrigin,
				AnalyticsKey:   cfg.AnalyticsKey,
				ShareUsername:  cfg.ShareUsername,
				Menus:          menus,
				CacheTTL:       cfg.CacheTTL,
				CaptchaLength:  cfg.CaptchaLength,
				DebugEndpoints: cfg.DebugEndpoints,
			},
			fx.Annotate(repo, fx.As(new(sitekit.Repository))),
		),
		api.Module,
		fx.Invoke(func(*api.Server) {}), // Start the server
	).Run()
}
