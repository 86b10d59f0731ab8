package newsletter

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	nlUC "dispatch/internal/usecase/newsletter"
)

type UpdateHandler struct{ Svc *nlUC.Service }

// ServeHTTP replaces a newsletter's fields and article set.
// @Summary      Update newsletter
// @Tags         newsletters
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path int          true "Newsletter ID"
// @Param        newsletter body writeRequest true "Newsletter"
// @Success      200 {object} DTO
// @Failure      403 {string} string "Owner or editor only"
// @Router       /newsletters/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req writeRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		auth.Fail(w, r, err)
		return
	}
	n, err := h.Svc.Update(r.Context(), auth.UserFromContext(r.Context()), id, req.input())
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(n))
}
