// Package web serves the server-rendered UI: html/template pages with scs
// cookie sessions. Every permission decision goes through the same use
// cases as the REST API.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"

	"dispatch/internal/common/pagination"
	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/middleware"
	authservice "dispatch/internal/service/auth"
	artUC "dispatch/internal/usecase/article"
	nlUC "dispatch/internal/usecase/newsletter"
	pubUC "dispatch/internal/usecase/publisher"
	subUC "dispatch/internal/usecase/subscription"
	userUC "dispatch/internal/usecase/user"
	"dispatch/pkg/security/csp"
)

// Authenticator checks a username and password.
type Authenticator interface {
	Authenticate(ctx context.Context, creds authservice.Credentials) (*entity.User, error)
}

// Deps are the collaborators of the web UI.
type Deps struct {
	Sessions      *scs.SessionManager
	Auth          Authenticator
	Articles      *artUC.Service
	Newsletters   *nlUC.Service
	Publishers    *pubUC.Service
	Subscriptions *subUC.Service
	Users         *userUC.Service
	Pagination    pagination.Config
	// LoginLimiter throttles POST /login per client when set.
	LoginLimiter *middleware.RateLimiter
	// PagePolicy defaults to csp.PagePolicy.
	PagePolicy *csp.CSPBuilder
	// SiteURL prefixes feed links. The request host is used when empty.
	SiteURL string
	Logger  *slog.Logger
}

// App holds parsed templates and the use cases behind the pages.
type App struct {
	Deps
	sessions  *scs.SessionManager
	logger    *slog.Logger
	templates map[string]*template.Template
}

// New parses the embedded templates.
func New(d Deps) (*App, error) {
	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.Pagination.DefaultLimit == 0 {
		d.Pagination = pagination.DefaultConfig()
	}
	d.SiteURL = strings.TrimRight(d.SiteURL, "/")
	return &App{Deps: d, sessions: d.Sessions, logger: logger, templates: t}, nil
}

// Handler returns the routed UI wrapped in session loading and page headers.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.Handler { return a.requireUser(h) }

	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /{$}", a.landing)
	mux.HandleFunc("GET /register", a.registerForm)
	mux.HandleFunc("POST /register", a.register)
	mux.HandleFunc("GET /login", a.loginForm)
	mux.Handle("POST /login", a.limitLogin(http.HandlerFunc(a.loginSubmit)))
	mux.HandleFunc("POST /logout", a.logoutSubmit)
	mux.HandleFunc("GET /access-denied", a.accessDenied)
	mux.HandleFunc("GET /feed.xml", a.feed)

	mux.Handle("GET /dashboard", authed(a.dashboard))

	mux.Handle("GET /articles", authed(a.articleList))
	mux.Handle("GET /articles/new", authed(a.articleNew))
	mux.Handle("POST /articles/new", authed(a.articleCreate))
	mux.Handle("GET /articles/{id}", authed(a.articleDetail))
	mux.Handle("GET /articles/{id}/edit", authed(a.articleEdit))
	mux.Handle("POST /articles/{id}/edit", authed(a.articleUpdate))
	mux.Handle("GET /articles/{id}/delete", authed(a.articleDeleteConfirm))
	mux.Handle("POST /articles/{id}/delete", authed(a.articleDelete))
	mux.Handle("POST /articles/{id}/approve", authed(a.articleApprove))
	mux.Handle("POST /articles/{id}/reject", authed(a.articleReject))
	mux.Handle("GET /pending", authed(a.pending))

	mux.Handle("GET /newsletters", authed(a.newsletterList))
	mux.Handle("GET /newsletters/new", authed(a.newsletterNew))
	mux.Handle("POST /newsletters/new", authed(a.newsletterCreate))
	mux.Handle("GET /newsletters/{id}", authed(a.newsletterDetail))

	mux.Handle("GET /subscriptions", authed(a.subscriptions))
	mux.Handle("POST /subscriptions/publishers/{id}/toggle", authed(a.toggle(entity.SourcePublisher)))
	mux.Handle("POST /subscriptions/journalists/{id}/toggle", authed(a.toggle(entity.SourceJournalist)))

	mux.Handle("GET /admin/publishers", authed(a.adminPublishers))
	mux.Handle("POST /admin/publishers", authed(a.adminPublisherCreate))
	mux.Handle("POST /admin/publishers/{id}/members", authed(a.adminPublisherMembers))

	policy := a.PagePolicy
	if policy == nil {
		policy = csp.PagePolicy()
	}
	headers := middleware.SecurityHeaders(policy, nil)
	return headers(a.sessions.LoadAndSave(a.loadUser(mux)))
}

func (a *App) limitLogin(next http.Handler) http.Handler {
	if a.LoginLimiter == nil {
		return next
	}
	return a.LoginLimiter.Middleware(next)
}

type ctxKey struct{}

func currentUser(ctx context.Context) *entity.User {
	u, _ := ctx.Value(ctxKey{}).(*entity.User)
	return u
}

// loadUser resolves the session's user id. Deactivated or deleted users
// are logged out.
func (a *App) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := a.sessions.GetInt64(ctx, sessionUserKey)
		if id == 0 {
			next.ServeHTTP(w, r)
			return
		}
		u, err := a.Users.Get(ctx, id)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			a.serverError(w, r, err)
			return
		}
		if u == nil || !u.IsActive {
			_ = a.logout(ctx)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKey{}, u)))
	})
}

func (a *App) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r.Context()) == nil {
			redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()))
			return
		}
		next(w, r)
	})
}

// fail maps a use case error onto a page: permission failures go to the
// access-denied page, missing resources to a 404.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrForbidden), errors.Is(err, entity.ErrOnlyReaders):
		redirect(w, r, "/access-denied")
	case errors.Is(err, entity.ErrUnauthorized):
		redirect(w, r, "/login")
	case errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrInvalidInput):
		a.render(w, r, http.StatusNotFound, "not_found.html", view{Title: "Not found"})
	default:
		a.serverError(w, r, err)
	}
}

func asValidation(err error, target **entity.ValidationError) bool {
	return errors.As(err, target)
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if next == "" || next[0] != '/' || len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return "/dashboard"
	}
	return next
}
