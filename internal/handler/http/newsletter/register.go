package newsletter

import (
	"net/http"

	nlUC "dispatch/internal/usecase/newsletter"
)

// Register registers the newsletter handlers with the given mux.
func Register(mux *http.ServeMux, svc *nlUC.Service) {
	mux.Handle("GET    /newsletters", ListHandler{svc})
	mux.Handle("GET    /newsletters/{id}", GetHandler{svc})

	mux.Handle("POST   /newsletters", CreateHandler{svc})
	mux.Handle("PUT    /newsletters/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /newsletters/{id}", DeleteHandler{svc})
}
