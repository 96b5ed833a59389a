package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"

	"github.com/target/storyweb"
	"github.com/target/storyweb/internal/domain/guard"
	"github.com/target/storyweb/internal/observability/statsd"
)

// RouterServices holds everything the HTTP router wires together.
type RouterServices struct {
	Sessions SessionAccessor
	Guards   GuardEvaluator
	Expiry   ExpiryHandler
	Auth     AuthFlows
	Accounts AccountReader

	Readiness ReadinessChecker // optional; nil makes /readyz mirror /healthz

	Cookies     CookieConfig
	CSRF        CSRFConfig
	Compression *CompressionConfig // nil disables gzip

	// TemplateFS and StaticFS override the embedded (or, in dev, on-disk) assets.
	TemplateFS fs.FS
	StaticFS   fs.FS

	IsDev   bool         // Development mode: templates and static files come from disk.
	Logger  *slog.Logger // optional
	Metrics statsd.Sink  // optional
}

// NewRouter builds the browser-facing handler with its middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	switch {
	case services.Sessions == nil:
		return nil, errors.New("sessions is required")
	case services.Guards == nil:
		return nil, errors.New("guards is required")
	case services.Auth == nil:
		return nil, errors.New("auth is required")
	case services.Accounts == nil:
		return nil, errors.New("accounts is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := resolveAssets(services)
	if err != nil {
		return nil, err
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("template renderer: %w", err)
	}

	h := &UIHandlers{
		T:        tr,
		Sessions: services.Sessions,
		Expiry:   services.Expiry,
		Auth:     services.Auth,
		Accounts: services.Accounts,
		Cookies:  services.Cookies,
		IsDev:    services.IsDev,
		Logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", liveness)
	mux.HandleFunc("HEAD /healthz", liveness)
	mux.Handle("GET /readyz", readiness(services.Readiness))
	mux.Handle("HEAD /readyz", readiness(services.Readiness))
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))
	registerAuthRoutes(mux, h)
	registerUIRoutes(mux, h, guardRouteConfig{guards: services.Guards, cookies: services.Cookies, loading: http.HandlerFunc(h.Loading)})
	mux.HandleFunc("/", h.NotFound)

	csrf := services.CSRF
	if csrf.CookieDomain == "" {
		csrf.CookieDomain = services.Cookies.Domain
	}

	var handler http.Handler = recordRoute(mux)
	handler = LoadSession(services.Sessions, services.Cookies)(handler)
	handler = CSRFProtection(csrf)(handler)
	if services.Compression != nil {
		compression := *services.Compression
		if compression.Logger == nil {
			compression.Logger = logger
		}
		handler = Compression(compression)(handler)
	}
	handler = Logging(logger, services.Metrics)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

// resolveAssets picks the template and static filesystems: explicit overrides,
// then disk in dev mode, then the embedded copies.
func resolveAssets(services RouterServices) (fs.FS, fs.FS, error) {
	templateFS, staticFS := services.TemplateFS, services.StaticFS
	if templateFS == nil {
		if services.IsDev {
			templateFS = os.DirFS(TemplatePathFromRoot)
		} else {
			sub, err := fs.Sub(storyweb.TemplateFS, TemplatePathFromRoot)
			if err != nil {
				return nil, nil, fmt.Errorf("template sub-filesystem: %w", err)
			}
			templateFS = sub
		}
	}
	if staticFS == nil {
		if services.IsDev {
			staticFS = os.DirFS(StaticPathFromRoot)
		} else {
			sub, err := fs.Sub(storyweb.StaticFS, StaticPathFromRoot)
			if err != nil {
				return nil, nil, fmt.Errorf("static sub-filesystem: %w", err)
			}
			staticFS = sub
		}
	}
	return templateFS, staticFS, nil
}

//nolint:gochecknoglobals // compiled once
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders caches content-hashed assets for a year and nothing else.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

func registerAuthRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /auth/oauth/start", h.OAuthStart)
	mux.HandleFunc("GET /auth/oauth/callback", h.OAuthCallback)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /logout", h.Logout)
}

type guardRouteConfig struct {
	guards  GuardEvaluator
	cookies CookieConfig
	loading http.Handler
}

func (cfg guardRouteConfig) wrap(a guard.Audience) func(http.Handler) http.Handler {
	return Guard(cfg.guards, cfg.cookies, a, cfg.loading)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg guardRouteConfig) {
	// Open to everyone.
	mux.HandleFunc("GET /{$}", h.Page(PageMeta{Title: "Storyweb", CurrentPage: PageHome}))
	mux.HandleFunc("GET /landing-page", h.Page(PageMeta{Title: "Welcome", CurrentPage: PageLanding}))
	mux.HandleFunc("GET /pricing", h.Pricing)
	mux.HandleFunc("GET /faq", h.Page(PageMeta{Title: "FAQ", CurrentPage: PageFAQ}))

	public := cfg.wrap(guard.AudiencePublic)
	mux.Handle("GET /login", public(http.HandlerFunc(h.LoginPage)))
	mux.Handle("POST /login", public(http.HandlerFunc(h.Login)))
	mux.Handle("GET /signup", public(h.Page(PageMeta{Title: "Sign up", CurrentPage: PageSignup})))
	mux.Handle("GET /admin/login", public(http.HandlerFunc(h.AdminLoginPage)))
	mux.Handle("POST /admin/login", public(http.HandlerFunc(h.AdminLogin)))

	private := cfg.wrap(guard.AudiencePrivate)
	mux.Handle("GET /profile", private(http.HandlerFunc(h.Profile)))
	mux.Handle("GET /cart", private(http.HandlerFunc(h.Cart)))
	mux.Handle("POST /cart", private(http.HandlerFunc(h.SelectPlan)))

	mux.Handle("GET /dashboard", cfg.wrap(guard.AudienceProtectedUser)(http.HandlerFunc(h.Dashboard)))

	admin := cfg.wrap(guard.AudienceProtectedAdmin)
	mux.Handle("GET /admin/{$}", admin(http.HandlerFunc(h.AdminHome)))
	mux.Handle("GET /admin/users", admin(http.HandlerFunc(h.AdminUsers)))
}
