// Package subscription provides the reader's subscription endpoints.
// Subscribing and unsubscribing are idempotent.
package subscription

import (
	"net/http"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	subUC "dispatch/internal/usecase/subscription"
)

// DTO is the reader's current subscription set.
type DTO struct {
	Publishers  []int64 `json:"publishers"`
	Journalists []int64 `json:"journalists"`
}

func toDTO(s entity.SubscriptionSet) DTO {
	d := DTO{Publishers: s.PublisherIDs, Journalists: s.JournalistIDs}
	if d.Publishers == nil {
		d.Publishers = []int64{}
	}
	if d.Journalists == nil {
		d.Journalists = []int64{}
	}
	return d
}

// Register registers the subscription handlers with the given mux.
func Register(mux *http.ServeMux, svc *subUC.Service) {
	mux.Handle("GET    /subscriptions", GetHandler{svc})
	mux.Handle("PUT    /subscriptions/{kind}/{id}", SetHandler{Svc: svc, On: true})
	mux.Handle("DELETE /subscriptions/{kind}/{id}", SetHandler{Svc: svc, On: false})
}

type GetHandler struct{ Svc *subUC.Service }

// ServeHTTP returns the reader's subscriptions.
// @Summary      Current subscriptions
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} DTO
// @Failure      403 {string} string "Readers only"
// @Router       /subscriptions [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	set, err := h.Svc.Get(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(set))
}

// SetHandler subscribes (On) or unsubscribes from one publisher or journalist.
type SetHandler struct {
	Svc *subUC.Service
	On  bool
}

// ServeHTTP applies the change and returns the resulting set.
// @Summary      Subscribe or unsubscribe
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        kind path string true "publishers or journalists"
// @Param        id   path int    true "Target ID"
// @Success      200 {object} DTO
// @Failure      403 {string} string "Readers only"
// @Failure      404 {string} string "Unknown kind or target"
// @Router       /subscriptions/{kind}/{id} [put]
// @Router       /subscriptions/{kind}/{id} [delete]
func (h SetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var kind entity.SourceKind
	switch r.PathValue("kind") {
	case "publishers":
		kind = entity.SourcePublisher
	case "journalists":
		kind = entity.SourceJournalist
	default:
		http.NotFound(w, r)
		return
	}
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	actor := auth.UserFromContext(ctx)
	if h.On {
		err = h.Svc.Subscribe(ctx, actor, kind, id)
	} else {
		err = h.Svc.Unsubscribe(ctx, actor, kind, id)
	}
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	set, err := h.Svc.Get(ctx, actor)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(set))
}
