package article

import (
	"log/slog"
	"net/http"
	"strconv"

	"dispatch/internal/common/pagination"
	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/requestid"
	"dispatch/internal/handler/http/respond"
	"dispatch/internal/observability/logging"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

// parseListQuery reads ?search, ?ordering, ?mine, ?page and ?limit.
// Unknown orderings fall back to newest first.
func parseListQuery(r *http.Request, cfg pagination.Config) (artUC.ListQuery, error) {
	params, err := pagination.ParseQueryParams(r, cfg)
	if err != nil {
		return artUC.ListQuery{}, err
	}
	q := r.URL.Query()
	mine, _ := strconv.ParseBool(q.Get("mine"))
	return artUC.ListQuery{
		Search: q.Get("search"),
		Order:  repository.ParseArticleOrder(q.Get("ordering")),
		Page:   params,
		Mine:   mine,
	}, nil
}

func writePage(w http.ResponseWriter, res *artUC.PaginatedResult) {
	respond.JSON(w, http.StatusOK, pagination.NewResponse(toDTOs(res.Data), res.Pagination))
}

type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists articles visible to the caller.
// @Summary      List articles
// @Description  Editors see every article, journalists see approved articles plus their own drafts, readers and anonymous visitors see approved articles.
// @Tags         articles
// @Produce      json
// @Param        search    query  string  false  "Case-insensitive title/content search"
// @Param        ordering  query  string  false  "created_at, -created_at, title, -title, approved_at, -approved_at"
// @Param        mine      query  bool    false  "Only the caller's own articles"
// @Param        page      query  int     false  "Page number (1-based)" default(1) minimum(1)
// @Param        limit     query  int     false  "Items per page" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      500 {string} string "Internal server error"
// @Router       /articles [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.Logger)

	q, err := parseListQuery(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("invalid article list parameters",
			slog.String("error", err.Error()),
			slog.String("request_id", requestid.FromContext(ctx)))
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.List(ctx, auth.UserFromContext(ctx), q)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	logger.Debug("article list served",
		slog.Int("page", q.Page.Page),
		slog.Int("limit", q.Page.Limit),
		slog.Int64("total", res.Pagination.Total))
	writePage(w, res)
}

type SubscribedHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists approved articles from the reader's subscriptions.
// @Summary      Subscribed feed
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        search    query  string  false  "Case-insensitive title/content search"
// @Param        ordering  query  string  false  "Ordering field"
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        limit     query  int     false  "Items per page"
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {object} map[string]string "Only readers can access subscribed articles"
// @Failure      401 {string} string "Authentication required"
// @Router       /articles/subscribed [get]
func (h SubscribedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseListQuery(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.Svc.Subscribed(ctx, auth.UserFromContext(ctx), q)
	if err != nil {
		logging.WithRequestID(ctx, h.Logger).Debug("subscribed feed refused", slog.Any("error", err))
		auth.Fail(w, r, err)
		return
	}
	writePage(w, res)
}

type PendingHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists the review queue, oldest first.
// @Summary      Pending articles
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page number (1-based)"
// @Param        limit  query  int  false  "Items per page"
// @Success      200 {object} pagination.Response[DTO]
// @Failure      401 {string} string "Authentication required"
// @Failure      403 {string} string "Editors only"
// @Router       /articles/pending [get]
func (h PendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.Svc.Pending(ctx, auth.UserFromContext(ctx), params)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	logging.WithRequestID(ctx, h.Logger).Info("pending queue served",
		slog.Int64("pending", res.Pagination.Total))
	writePage(w, res)
}
