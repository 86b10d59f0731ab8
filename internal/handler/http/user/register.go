package user

import (
	"net/http"

	userUC "dispatch/internal/usecase/user"
)

// Register registers the user handlers with the given mux.
func Register(mux *http.ServeMux, svc *userUC.Service) {
	mux.Handle("GET /users", ListHandler{svc})
	mux.Handle("GET /users/me", MeHandler{svc})
	mux.Handle("GET /users/{id}", GetHandler{svc})
}
