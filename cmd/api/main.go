package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "dispatch/docs" // swagger docs

	"dispatch/internal/common/pagination"
	"dispatch/internal/config"
	hhttp "dispatch/internal/handler/http"
	harticle "dispatch/internal/handler/http/article"
	hauth "dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/middleware"
	hnewsletter "dispatch/internal/handler/http/newsletter"
	hpublisher "dispatch/internal/handler/http/publisher"
	"dispatch/internal/handler/http/requestid"
	"dispatch/internal/handler/http/respond"
	hsubscription "dispatch/internal/handler/http/subscription"
	huser "dispatch/internal/handler/http/user"
	"dispatch/internal/handler/web"
	"dispatch/internal/infra/adapter/persistence/sqlstore"
	"dispatch/internal/infra/db"
	"dispatch/internal/observability/logging"
	"dispatch/internal/observability/metrics"
	"dispatch/internal/observability/slo"
	"dispatch/internal/observability/tracing"
	authservice "dispatch/internal/service/auth"
	artUC "dispatch/internal/usecase/article"
	nlUC "dispatch/internal/usecase/newsletter"
	"dispatch/internal/usecase/notify"
	pubUC "dispatch/internal/usecase/publisher"
	subUC "dispatch/internal/usecase/subscription"
	userUC "dispatch/internal/usecase/user"
	pkgconfig "dispatch/pkg/config"
	"dispatch/pkg/security/csp"
)

// @title           Dispatch API
// @version         1.0
// @description     Role-based news desk: journalists write, editors approve, readers subscribe.

// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	secCfg := loadSecurityConfig(logger)
	secret := validateJWTSecret(logger, secCfg)
	serverCfg := mustLoad(logger, "server", config.LoadServerConfig)
	httpCfg := mustLoad(logger, "http", pkgconfig.LoadHTTPConfig)

	database, dialect := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, dialect, version, secCfg, secret, serverCfg, httpCfg)
	runServer(logger, components, serverCfg, version)
}

func mustLoad[T any](logger *slog.Logger, name string, load func() (T, error)) T {
	cfg, err := load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("section", name), slog.Any("error", err))
		os.Exit(1)
	}
	return cfg
}

// loadSecurityConfig reads SECURITY_CONFIG, falling back to the built-in
// policy when the variable is unset.
func loadSecurityConfig(logger *slog.Logger) *config.SecurityConfig {
	cfg, err := config.LoadSecurityConfigOrDefault(os.Getenv("SECURITY_CONFIG"))
	if err != nil {
		logger.Error("failed to load security configuration", slog.Any("error", err))
		os.Exit(1)
	}
	return cfg
}

// validateJWTSecret refuses to start with a short or well-known secret.
func validateJWTSecret(logger *slog.Logger, secCfg *config.SecurityConfig) string {
	secret := os.Getenv(secCfg.GetJWTSecretEnv())
	if err := hauth.ValidateJWTSecret(secret); err != nil {
		logger.Error("JWT secret validation failed",
			slog.String("env", secCfg.GetJWTSecretEnv()),
			slog.Any("error", err))
		os.Exit(1)
	}
	return secret
}

// initDatabase opens DATABASE_URL and runs migrations.
func initDatabase(logger *slog.Logger) (*sql.DB, db.Dialect) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, dialect, err := db.Open(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Error("failed to open database", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database, dialect); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, database, "dispatch"); err != nil {
		logger.Warn("database pool metrics unavailable", slog.Any("error", err))
	}
	logger.Info("database ready", slog.String("dialect", string(dialect)))
	return database, dialect
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds the handler and everything that needs stopping.
type ServerComponents struct {
	Handler         http.Handler
	Notify          notify.Service
	TracingShutdown func(context.Context) error
	Limiters        []*middleware.RateLimiter
	SweepInterval   time.Duration
}

func setupServer(
	logger *slog.Logger,
	database *sql.DB,
	dialect db.Dialect,
	version string,
	secCfg *config.SecurityConfig,
	secret string,
	serverCfg *config.ServerConfig,
	httpCfg *pkgconfig.HTTPConfig,
) *ServerComponents {
	store := sqlstore.New(database, dialect)

	notifyCfg := mustLoad(logger, "notify", config.LoadNotifyConfig)
	for _, w := range notifyCfg.Warnings {
		logger.Warn("notify configuration", slog.String("warning", w))
	}
	channels := []notify.Channel{
		notify.NewEmailChannel(notifyCfg.Email),
		notify.NewTwitterChannel(notifyCfg.Twitter),
		notify.NewSlackChannel(notifyCfg.Slack),
	}
	for _, ch := range channels {
		logger.Info("notification channel", slog.String("channel", ch.Name()), slog.Bool("enabled", ch.IsEnabled()))
	}
	notifySvc := notify.NewService(channels, notifyCfg.MaxConcurrent)

	requirements := authservice.CredentialRequirements{
		MinPasswordLength: secCfg.GetMinPasswordLength(),
		WeakPasswords:     secCfg.GetWeakPasswords(),
	}
	artSvc := &artUC.Service{Store: store, Notifier: notifySvc, Logger: logger}
	nlSvc := &nlUC.Service{Store: store}
	pubSvc := &pubUC.Service{Store: store}
	subSvc := &subUC.Service{Store: store}
	userSvc := &userUC.Service{Store: store, Policy: requirements}
	authSvc := authservice.NewAuthService(authservice.NewStoreProvider(store.Users(), requirements), logger)

	proxies, err := middleware.ParseTrustedProxies(httpCfg.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}
	ip := middleware.IPExtractor{TrustedProxies: proxies}
	tokenLimiter := middleware.NewRateLimiter("auth_token", httpCfg.LoginInterval, httpCfg.LoginBurst, ip)
	loginLimiter := middleware.NewRateLimiter("web_login", httpCfg.LoginInterval, httpCfg.LoginBurst, ip)

	pagePolicy, apiPolicy, swaggerPolicy := csp.PagePolicy(), csp.APIPolicy(), csp.SwaggerUIPolicy()
	if !httpCfg.CSPEnabled {
		pagePolicy, apiPolicy, swaggerPolicy = csp.NewCSPBuilder(), csp.NewCSPBuilder(), csp.NewCSPBuilder()
		logger.Warn("CSP is disabled")
	}
	for _, p := range []*csp.CSPBuilder{pagePolicy, apiPolicy, swaggerPolicy} {
		p.ReportOnly(httpCfg.CSPReportOnly)
	}

	issuer := hauth.NewTokenIssuer(secret, secCfg.GetJWTExpiry())
	apiMux := http.NewServeMux()
	apiMux.Handle("POST /auth/token", tokenLimiter.Middleware(hauth.TokenHandler(authSvc, issuer)))
	harticle.Register(apiMux, artSvc, pagination.LoadFromEnv(), logger)
	hnewsletter.Register(apiMux, nlSvc)
	hpublisher.Register(apiMux, pubSvc)
	hsubscription.Register(apiMux, subSvc)
	huser.Register(apiMux, userSvc)

	authz := hauth.Authz(issuer, store.Users(), hauth.Endpoints{
		Public:     secCfg.GetPublicEndpoints(),
		PublicRead: secCfg.GetPublicReadEndpoints(),
	})
	api := middleware.SecurityHeaders(apiPolicy, nil)(authz(apiMux))

	sessions := web.NewSessionManager(database, dialect, web.SessionConfig{
		Lifetime:     serverCfg.SessionLifetime,
		IdleTimeout:  serverCfg.SessionIdle,
		SecureCookie: serverCfg.SecureCookie,
	})
	app := newWebApp(logger, sessions, authSvc, artSvc, nlSvc, pubSvc, subSvc, userSvc, loginLimiter, pagePolicy, notifyCfg.Slack.SiteURL)

	rootMux := http.NewServeMux()
	hhttp.RegisterOps(rootMux, database, version, notifySvc)
	rootMux.Handle("/api/", http.StripPrefix("/api", api))
	rootMux.Handle("GET /swagger/", middleware.SecurityHeaders(swaggerPolicy, nil)(httpSwagger.WrapHandler))
	rootMux.Handle("/", app.Handler())

	corsCfg, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Order: request ID first so every later layer can log it.
	handler := hhttp.Chain(rootMux,
		requestid.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		tracing.Middleware,
		middleware.CORS(corsCfg, logger),
		hhttp.InputLimits(hhttp.DefaultMaxBodyBytes),
		hhttp.Timeout(serverCfg.RequestTimeout),
	)

	return &ServerComponents{
		Handler:         handler,
		Notify:          notifySvc,
		TracingShutdown: tracing.Init(httpCfg.TraceSampleRatio),
		Limiters:        []*middleware.RateLimiter{tokenLimiter, loginLimiter},
		SweepInterval:   httpCfg.SweepInterval,
	}
}

func newWebApp(
	logger *slog.Logger,
	sessions *scs.SessionManager,
	authSvc *authservice.AuthService,
	artSvc *artUC.Service,
	nlSvc *nlUC.Service,
	pubSvc *pubUC.Service,
	subSvc *subUC.Service,
	userSvc *userUC.Service,
	loginLimiter *middleware.RateLimiter,
	pagePolicy *csp.CSPBuilder,
	siteURL string,
) *web.App {
	app, err := web.New(web.Deps{
		Sessions:      sessions,
		Auth:          authSvc,
		Articles:      artSvc,
		Newsletters:   nlSvc,
		Publishers:    pubSvc,
		Subscriptions: subSvc,
		Users:         userSvc,
		Pagination:    pagination.LoadFromEnv(),
		LoginLimiter:  loginLimiter,
		PagePolicy:    pagePolicy,
		SiteURL:       siteURL,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	return app
}

// runServer serves until SIGINT or SIGTERM, then drains requests, pending
// notifications and spans.
func runServer(logger *slog.Logger, components *ServerComponents, serverCfg *config.ServerConfig, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, rl := range components.Limiters {
		go rl.RunSweeper(ctx, components.SweepInterval)
	}
	go slo.DefaultTracker.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()

	if err := components.Notify.Shutdown(shutdownCtx); err != nil {
		logger.Warn("pending notifications dropped", slog.Any("error", err))
	}
	if err := components.TracingShutdown(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
