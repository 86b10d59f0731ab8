package article

import (
	"log/slog"
	"net/http"

	"dispatch/internal/common/pagination"
	artUC "dispatch/internal/usecase/article"
)

// Register registers all article-related HTTP handlers with the given mux.
// Authentication runs globally; anonymous callers reach the read routes and
// see approved articles only.
func Register(mux *http.ServeMux, svc *artUC.Service, paginationCfg pagination.Config, logger *slog.Logger) {
	mux.Handle("GET    /articles", ListHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger})
	mux.Handle("GET    /articles/subscribed", SubscribedHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger})
	mux.Handle("GET    /articles/pending", PendingHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger})
	mux.Handle("GET    /articles/{id}", GetHandler{svc})

	mux.Handle("POST   /articles", CreateHandler{svc})
	mux.Handle("PUT    /articles/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /articles/{id}", DeleteHandler{svc})
	mux.Handle("POST   /articles/{id}/approve", ApproveHandler{Svc: svc, Logger: logger})
	mux.Handle("POST   /articles/{id}/reject", RejectHandler{svc})
}
