package newsletter_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/auth"
	"dispatch/internal/handler/http/newsletter"
	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
	"dispatch/internal/repository"
	nlUC "dispatch/internal/usecase/newsletter"
)

type env struct {
	store  repository.Store
	mux    *http.ServeMux
	jane   *entity.User
	joe    *entity.User
	editor *entity.User
	reader *entity.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := sqlstoretest.New(t)
	e := &env{
		store:  s,
		mux:    http.NewServeMux(),
		jane:   sqlstoretest.User(t, s, "jane", entity.RoleJournalist),
		joe:    sqlstoretest.User(t, s, "joe", entity.RoleJournalist),
		editor: sqlstoretest.User(t, s, "ed", entity.RoleEditor),
		reader: sqlstoretest.User(t, s, "rita", entity.RoleReader),
	}
	newsletter.Register(e.mux, &nlUC.Service{Store: s})
	return e
}

func (e *env) do(t *testing.T, u *entity.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if u != nil {
		req = req.WithContext(auth.WithUser(req.Context(), u))
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func (e *env) create(t *testing.T, u *entity.User, ids ...int64) newsletter.DTO {
	t.Helper()
	body, err := json.Marshal(map[string]any{"title": "Weekly", "description": "d", "article_ids": ids})
	require.NoError(t, err)
	rr := e.do(t, u, http.MethodPost, "/newsletters", string(body))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var out newsletter.DTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func path(id int64) string { return "/newsletters/" + strconv.FormatInt(id, 10) }

func TestCreate(t *testing.T) {
	e := newEnv(t)
	n := e.create(t, e.jane)
	assert.Equal(t, e.jane.ID, n.AuthorID)

	assert.Equal(t, http.StatusForbidden, e.do(t, e.reader, http.MethodPost, "/newsletters", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, e.jane, http.MethodPost, "/newsletters", `{"title":""}`).Code)

	rr := e.do(t, e.jane, http.MethodPost, "/newsletters", `{"title":"x","article_ids":[9999]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"field":"articles"`)
}

func TestGet_ReadersSeeOnlyApprovedArticles(t *testing.T) {
	e := newEnv(t)
	approved := sqlstoretest.Article(t, e.store, "Live", e.jane.ID, e.editor)
	draft := sqlstoretest.Article(t, e.store, "Draft", e.jane.ID, nil)
	n := e.create(t, e.jane, approved.ID, draft.ID)

	count := func(u *entity.User) int {
		rr := e.do(t, u, http.MethodGet, path(n.ID), "")
		require.Equal(t, http.StatusOK, rr.Code)
		var d newsletter.DetailDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&d))
		return len(d.Articles)
	}
	assert.Equal(t, 1, count(e.reader))
	assert.Equal(t, 1, count(nil))
	assert.Equal(t, 2, count(e.jane))
	assert.Equal(t, 2, count(e.editor))
}

func TestList_FilterByAuthor(t *testing.T) {
	e := newEnv(t)
	e.create(t, e.jane)
	e.create(t, e.joe)

	var all []newsletter.DTO
	require.NoError(t, json.NewDecoder(e.do(t, nil, http.MethodGet, "/newsletters", "").Body).Decode(&all))
	assert.Len(t, all, 2)

	var mine []newsletter.DTO
	require.NoError(t, json.NewDecoder(e.do(t, e.joe, http.MethodGet, "/newsletters?mine=true", "").Body).Decode(&mine))
	require.Len(t, mine, 1)
	assert.Equal(t, e.joe.ID, mine[0].AuthorID)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, nil, http.MethodGet, "/newsletters?mine=1", "").Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, nil, http.MethodGet, "/newsletters?author=x", "").Code)
}

func TestUpdateDelete_OwnerOrEditor(t *testing.T) {
	e := newEnv(t)
	n := e.create(t, e.jane)

	assert.Equal(t, http.StatusForbidden, e.do(t, e.joe, http.MethodPut, path(n.ID), `{"title":"Mine now"}`).Code)
	assert.Equal(t, http.StatusOK, e.do(t, e.editor, http.MethodPut, path(n.ID), `{"title":"Edited"}`).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, e.joe, http.MethodDelete, path(n.ID), "").Code)
	assert.Equal(t, http.StatusNoContent, e.do(t, e.jane, http.MethodDelete, path(n.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, e.jane, http.MethodGet, path(n.ID), "").Code)
}
