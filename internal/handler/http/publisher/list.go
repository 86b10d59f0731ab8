package publisher

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	pubUC "dispatch/internal/usecase/publisher"
)

type ListHandler struct{ Svc *pubUC.Service }

// ServeHTTP lists publishers with their approved article counts.
// @Summary      List publishers
// @Tags         publishers
// @Produce      json
// @Success      200 {array} DTO
// @Router       /publishers [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, pc := range list {
		out = append(out, withCount(pc))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *pubUC.Service }

// ServeHTTP returns one publisher.
// @Summary      Get publisher
// @Tags         publishers
// @Produce      json
// @Param        id path int true "Publisher ID"
// @Success      200 {object} DTO
// @Failure      404 {string} string "Not found"
// @Router       /publishers/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := h.Svc.Detail(r.Context(), id)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, withCount(*d))
}
