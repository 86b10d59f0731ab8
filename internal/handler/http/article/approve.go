package article

import (
	"log/slog"
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	"dispatch/internal/observability/logging"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

type ApproveHandler struct {
	Svc    *artUC.Service
	Logger *slog.Logger
}

// ServeHTTP approves a pending article and triggers notifications.
// @Summary      Approve article
// @Description  Editors only. Approval is one-way; a second approval is rejected.
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Article ID"
// @Success      200 {object} DTO
// @Failure      400 {object} map[string]string "Article is already approved."
// @Failure      403 {string} string "Editors only"
// @Failure      404 {string} string "Not found"
// @Router       /articles/{id}/approve [post]
func (h ApproveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	ctx := r.Context()
	editor := auth.UserFromContext(ctx)
	a, err := h.Svc.Approve(ctx, editor, id)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	logging.WithRequestID(ctx, h.Logger).Info("article approved",
		slog.Int64("article_id", id),
		slog.Int64("editor_id", editor.ID))
	respond.JSON(w, http.StatusOK, toDTO(*a))
}

type RejectHandler struct{ Svc *artUC.Service }

// ServeHTTP removes a pending article from the queue.
// @Summary      Reject article
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Article ID"
// @Success      200 {object} DTO
// @Failure      403 {string} string "Editors only"
// @Router       /articles/{id}/reject [post]
func (h RejectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.Svc.Reject(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(repository.ArticleWithSource{Article: a}))
}
