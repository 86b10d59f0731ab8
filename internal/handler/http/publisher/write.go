package publisher

import (
	"net/http"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	pubUC "dispatch/internal/usecase/publisher"
)

type CreateHandler struct{ Svc *pubUC.Service }

// ServeHTTP creates a publisher.
// @Summary      Create publisher
// @Tags         publishers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        publisher body writeRequest true "Publisher"
// @Success      201 {object} DTO
// @Failure      403 {string} string "Administrators only"
// @Failure      409 {string} string "Name already taken"
// @Router       /publishers [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		auth.Fail(w, r, err)
		return
	}
	p, err := h.Svc.Create(r.Context(), auth.UserFromContext(r.Context()), pubUC.Input(req))
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDTO(p))
}

type UpdateHandler struct{ Svc *pubUC.Service }

// ServeHTTP replaces a publisher's name, description and website.
// @Summary      Update publisher
// @Tags         publishers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id        path int          true "Publisher ID"
// @Param        publisher body writeRequest true "Publisher"
// @Success      200 {object} DTO
// @Router       /publishers/{id} [put]
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
	p, err := h.Svc.Update(r.Context(), auth.UserFromContext(r.Context()), id, pubUC.Input(req))
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}

type DeleteHandler struct{ Svc *pubUC.Service }

// ServeHTTP deletes a publisher and its articles.
// @Summary      Delete publisher
// @Tags         publishers
// @Security     BearerAuth
// @Param        id path int true "Publisher ID"
// @Success      204 "No Content"
// @Router       /publishers/{id} [delete]
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

type MembersHandler struct{ Svc *pubUC.Service }

// ServeHTTP adds or removes an editor or journalist.
// @Summary      Set publisher member
// @Tags         publishers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id     path int           true "Publisher ID"
// @Param        member body memberRequest true "Membership change"
// @Success      200 {object} DTO
// @Failure      400 {object} map[string]string "Role does not match kind"
// @Router       /publishers/{id}/members [post]
func (h MembersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var req memberRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		auth.Fail(w, r, err)
		return
	}
	p, err := h.Svc.SetMember(r.Context(), auth.UserFromContext(r.Context()), id, req.input())
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}
