package article

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	artUC "dispatch/internal/usecase/article"
)

type GetHandler struct{ Svc *artUC.Service }

// ServeHTTP returns one article.
// @Summary      Get article
// @Description  Articles the caller may not view are reported as not found.
// @Tags         articles
// @Produce      json
// @Param        id path int true "Article ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      404 {string} string "Not found"
// @Router       /articles/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := h.Svc.Get(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(*a))
}
