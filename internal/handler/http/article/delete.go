package article

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	artUC "dispatch/internal/usecase/article"
)

type DeleteHandler struct{ Svc *artUC.Service }

// ServeHTTP deletes an article.
// @Summary      Delete article
// @Tags         articles
// @Security     BearerAuth
// @Param        id path int true "Article ID"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      403 {string} string "Forbidden"
// @Failure      404 {string} string "Not found"
// @Router       /articles/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		auth.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
