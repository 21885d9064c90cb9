// Package api is the HTTP side of sitekit.
//
// It wires sessions, the per-request captcha store, view counters, comment
// storage and the page helpers into a single server.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/jdholdren/sitekit/internal/sitekit"
)

var Module = fx.Module("api",
	fx.Provide(
		newLifecycleServer,
	),
)

type Params struct {
	fx.In

	Config ServerConfig
	Repo   sitekit.Repository
}

// newLifecycleServer ties the server's listening to the fx app's lifecycle.
func newLifecycleServer(lc fx.Lifecycle, p Params) (*Server, error) {
	srvr, err := NewServer(p.Config, p.Repo)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srvr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("error listening", "error", err)
				}
			}()

			slog.Info("started sitekit server", "addr", srvr.Addr)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srvr.Shutdown(ctx)
		},
	})

	return srvr, nil
}
