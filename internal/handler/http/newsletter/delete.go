package newsletter

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	nlUC "dispatch/internal/usecase/newsletter"
)

type DeleteHandler struct{ Svc *nlUC.Service }

// ServeHTTP deletes a newsletter; its articles are kept.
// @Summary      Delete newsletter
// @Tags         newsletters
// @Security     BearerAuth
// @Param        id path int true "Newsletter ID"
// @Success      204 "No Content"
// @Router       /newsletters/{id} [delete]
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
