package newsletter

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	nlUC "dispatch/internal/usecase/newsletter"
)

type GetHandler struct{ Svc *nlUC.Service }

// ServeHTTP returns a newsletter. Readers and visitors only see the
// approved articles inside it.
// @Summary      Get newsletter
// @Tags         newsletters
// @Produce      json
// @Param        id path int true "Newsletter ID"
// @Success      200 {object} DetailDTO
// @Failure      404 {string} string "Not found"
// @Router       /newsletters/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	v, err := h.Svc.Get(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDetail(v))
}
