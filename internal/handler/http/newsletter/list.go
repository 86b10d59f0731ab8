package newsletter

import (
	"net/http"
	"strconv"

	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/handler/http/respond"
	nlUC "dispatch/internal/usecase/newsletter"
)

type ListHandler struct{ Svc *nlUC.Service }

// ServeHTTP lists newsletters.
// @Summary      List newsletters
// @Tags         newsletters
// @Produce      json
// @Param        author  query  int   false  "Only newsletters by this author"
// @Param        mine    query  bool  false  "Only the caller's newsletters"
// @Success      200 {array} DTO
// @Failure      400 {string} string "Invalid query parameters"
// @Router       /newsletters [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var authorID int64
	if s := q.Get("author"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			respond.SafeError(w, http.StatusBadRequest, pathutil.ErrInvalidID)
			return
		}
		authorID = id
	}
	if mine, _ := strconv.ParseBool(q.Get("mine")); mine {
		u := auth.UserFromContext(r.Context())
		if u == nil {
			auth.Fail(w, r, errUnauthenticated)
			return
		}
		authorID = u.ID
	}

	list, err := h.Svc.List(r.Context(), authorID)
	if err != nil {
		auth.Fail(w, r, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, n := range list {
		out = append(out, toDTO(n))
	}
	respond.JSON(w, http.StatusOK, out)
}
