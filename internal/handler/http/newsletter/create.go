package newsletter

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/respond"
	nlUC "dispatch/internal/usecase/newsletter"
)

type CreateHandler struct{ Svc *nlUC.Service }

// ServeHTTP creates a newsletter authored by the calling journalist.
// @Summary      Create newsletter
// @Tags         newsletters
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        newsletter body writeRequest true "Newsletter"
// @Success      201 {object} DTO
// @Failure      400 {object} map[string]string "Validation error"
// @Failure      403 {string} string "Journalists only"
// @Router       /newsletters [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		auth.Fail(w, r, err)
		return
	}
	n, err := h.Svc.Create(r.Context(), auth.UserFromContext(r.Context()), req.input())
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(n))
}
