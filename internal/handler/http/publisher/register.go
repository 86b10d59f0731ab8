package publisher

import (
	"net/http"

	pubUC "dispatch/internal/usecase/publisher"
)

// Register registers the publisher handlers with the given mux.
func Register(mux *http.ServeMux, svc *pubUC.Service) {
	mux.Handle("GET    /publishers", ListHandler{svc})
	mux.Handle("GET    /publishers/{id}", GetHandler{svc})

	mux.Handle("POST   /publishers", CreateHandler{svc})
	mux.Handle("PUT    /publishers/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /publishers/{id}", DeleteHandler{svc})
	mux.Handle("POST   /publishers/{id}/members", MembersHandler{svc})
}
