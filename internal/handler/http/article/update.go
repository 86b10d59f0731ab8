package article

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

type UpdateHandler struct{ Svc *artUC.Service }

// ServeHTTP changes an article's title and content.
// @Summary      Update article
// @Description  Authors and editors may modify; omitted fields are unchanged.
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path int           true "Article ID"
// @Param        article body updateRequest true "Changed fields"
// @Success      200 {object} DTO
// @Failure      400 {object} map[string]string "Validation error"
// @Failure      403 {string} string "Forbidden"
// @Failure      404 {string} string "Not found"
// @Router       /articles/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req updateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		auth.Fail(w, r, err)
		return
	}
	a, err := h.Svc.Update(r.Context(), auth.UserFromContext(r.Context()), artUC.UpdateInput{
		ID:      id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(repository.ArticleWithSource{Article: a}))
}
