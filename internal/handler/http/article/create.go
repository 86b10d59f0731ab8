package article

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/respond"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

type CreateHandler struct{ Svc *artUC.Service }

// ServeHTTP files a new pending article.
// @Summary      Create article
// @Description  Journalists are recorded as the author. Editors must give publisher_id. Approval fields are ignored.
// @Tags         articles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        article body createRequest true "New article"
// @Success      201 {object} DTO
// @Failure      400 {object} map[string]string "Validation error"
// @Failure      401 {string} string "Authentication required"
// @Failure      403 {string} string "Readers cannot write articles"
// @Router       /articles [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		auth.Fail(w, r, err)
		return
	}
	a, err := h.Svc.Create(r.Context(), auth.UserFromContext(r.Context()), artUC.CreateInput{
		Title:       req.Title,
		Content:     req.Content,
		PublisherID: req.PublisherID,
	})
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(repository.ArticleWithSource{Article: a}))
}
