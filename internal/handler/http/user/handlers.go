package user

import (
	"net/http"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	userUC "dispatch/internal/usecase/user"
)

type ListHandler struct{ Svc *userUC.Service }

// ServeHTTP lists user profiles.
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        role query string false "reader, journalist or editor"
// @Success      200 {array} DTO
// @Failure      400 {object} map[string]string "Unknown role"
// @Router       /users [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var role *entity.Role
	if s := r.URL.Query().Get("role"); s != "" {
		parsed, err := entity.ParseRole(s)
		if err != nil {
			auth.Fail(w, r, err)
			return
		}
		role = &parsed
	}
	list, err := h.Svc.List(r.Context(), role)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, u := range list {
		out = append(out, toDTO(u))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Svc *userUC.Service }

// ServeHTTP returns one profile.
// @Summary      Get user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} DTO
// @Failure      404 {string} string "Not found"
// @Router       /users/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	u, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(u))
}

type MeHandler struct{ Svc *userUC.Service }

// ServeHTTP returns the caller's own profile.
// @Summary      Current user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} MeDTO
// @Failure      401 {string} string "Authentication required"
// @Router       /users/me [get]
func (h MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.Me(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, MeDTO{DTO: toDTO(u), Email: u.Email, IsAdmin: u.IsAdmin})
}
