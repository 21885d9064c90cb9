package api

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jdholdren/sitekit/internal/cache"
	"github.com/jdholdren/sitekit/internal/captcha"
	"github.com/jdholdren/sitekit/internal/menu"
	"github.com/jdholdren/sitekit/internal/metrics"
	"github.com/jdholdren/sitekit/internal/serverutil"
	"github.com/jdholdren/sitekit/internal/session"
	"github.com/jdholdren/sitekit/internal/sitekit"
)

type (
	// Server serves the site: challenge images, view counting and the
	// comment pages that sit behind captcha validation.
	Server struct {
		*http.Server

		repo      sitekit.Repository
		sessions  session.Manager
		captchas  captcha.Store
		cache     *cache.Cache
		menus     menu.Menus
		metrics   *metrics.Metrics
		templates *template.Template
		stripper  *bluemonday.Policy

		captchaLength int
		analyticsKey  string
		shareUsername string
	}

	ServerConfig struct {
		Port           int
		CookieHashKey  []byte
		CookieBlockKey []byte
		HttpsCookies   bool
		CorsHeader     string

		AnalyticsKey  string
		ShareUsername string
		Menus         map[string][]menu.Definition
		CacheTTL      time.Duration
		CaptchaLength int

		DebugEndpoints bool
	}
)

// Route names, for reversal in menus.
const (
	routeHome    = "home"
	routeCaptcha = "captcha"
	routeLogin   = "login"
	routeMetrics = "metrics"
)

// DefaultMenus is used when no menu file is configured.
var DefaultMenus = map[string][]menu.Definition{
	"root": {
		{Label: "Home", Route: routeHome},
	},
}

// NewServer builds the server and its routes. It fails when the menus point
// at routes that don't exist, so a bad menu file is caught at startup.
func NewServer(config ServerConfig, repo sitekit.Repository) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	var (
		r        = serverutil.ErrRouter{Router: mux.NewRouter()}
		sessions = session.NewManager(config.CookieHashKey, config.CookieBlockKey, config.HttpsCookies)
		menus    = config.Menus
		meters   = metrics.New()
		memo     = cache.New(cache.DefaultSize, config.CacheTTL)
	)
	memo.Observe(meters.RecordCacheLookup)
	if len(menus) == 0 {
		menus = DefaultMenus
	}

	var handler http.Handler = handlers.ProxyHeaders(r)
	if config.CorsHeader != "" {
		handler = handlers.CORS(
			handlers.AllowedOrigins([]string{config.CorsHeader}),
			handlers.AllowCredentials(),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"content-type"}),
		)(handler)
	}

	srvr := Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler:      handler,
		},
		repo:          repo,
		sessions:      sessions,
		captchas:      captcha.NewStore(sessions),
		cache:         memo,
		menus:         menu.New(menus, routeReverser(r.Router)),
		metrics:       meters,
		templates:     tmpl,
		stripper:      bluemonday.StrictPolicy(),
		captchaLength: config.CaptchaLength,
		analyticsKey:  config.AnalyticsKey,
		shareUsername: config.ShareUsername,
	}

	r.Use(serverutil.RequestIDMiddleware)
	r.Use(serverutil.AccessLogMiddleware) // Log everything
	r.Use(meters.Middleware)
	r.Use(srvr.captchas.Middleware) // Every handler sees this request's captcha answer

	r.HandleFuncE("/", srvr.getHome).Methods(http.MethodGet).Name(routeHome)
	r.HandleFuncE("/captcha", srvr.getCaptcha).Methods(http.MethodGet).Name(routeCaptcha)
	r.Handle("/metrics", meters.Handler()).Methods(http.MethodGet).Name(routeMetrics)

	// View counting
	r.HandleFuncE("/objects/{contentType}/popular", srvr.getPopular).Methods(http.MethodGet)
	r.HandleFuncE("/objects/{contentType}/{objectID}", srvr.getObject).Methods(http.MethodGet)

	// Comments
	r.HandleFuncE("/objects/{contentType}/{objectID}/comments", srvr.getComments).Methods(http.MethodGet)
	r.HandleFuncE("/objects/{contentType}/{objectID}/comments", srvr.postComment).Methods(http.MethodPost)
	r.HandleFuncE("/users/{userID}/comments", srvr.getUserComments).Methods(http.MethodGet)
	r.HandleFuncE("/users/{userID}/comments/count", srvr.getUserCommentCount).Methods(http.MethodGet)

	if config.DebugEndpoints {
		// For local testing
		r.HandleFuncE("/login", srvr.handleDebugLogin).Methods(http.MethodPost).Name(routeLogin)
	}

	// Every menu entry has to resolve before anything is served
	for name := range menus {
		if _, err := srvr.menus.Render(name, 0, ""); err != nil {
			return nil, fmt.Errorf("error validating menus: %w", err)
		}
	}

	slog.Debug("configured sitekit server", "port", config.Port)

	return &srvr, nil
}

// routeReverser resolves menu routes against the router's named routes.
func routeReverser(r *mux.Router) menu.ReverserFunc {
	return func(name string) (string, error) {
		route := r.Get(name)
		if route == nil {
			return "", fmt.Errorf("no route named %q", name)
		}
		u, err := route.URL()
		if err != nil {
			return "", err
		}

		return u.String(), nil
	}
}
