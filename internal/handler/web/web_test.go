package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain/entity"
	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
	"dispatch/internal/repository"
	authservice "dispatch/internal/service/auth"
	artUC "dispatch/internal/usecase/article"
	nlUC "dispatch/internal/usecase/newsletter"
	pubUC "dispatch/internal/usecase/publisher"
	subUC "dispatch/internal/usecase/subscription"
	userUC "dispatch/internal/usecase/user"
)

const testPassword = "correct horse"

// users authenticates any stored username with testPassword.
type users struct{ byName map[string]*entity.User }

func (u users) Authenticate(_ context.Context, creds authservice.Credentials) (*entity.User, error) {
	if got, ok := u.byName[creds.Username]; ok && creds.Password == testPassword {
		return got, nil
	}
	return nil, entity.ErrUnauthorized
}

type site struct {
	t      *testing.T
	store  repository.Store
	srv    *httptest.Server
	jane   *entity.User
	editor *entity.User
	reader *entity.User
}

func newSite(t *testing.T, opts ...func(*Deps)) *site {
	t.Helper()
	s := sqlstoretest.New(t)
	st := &site{
		t:      t,
		store:  s,
		jane:   sqlstoretest.User(t, s, "jane", entity.RoleJournalist),
		editor: sqlstoretest.User(t, s, "ed", entity.RoleEditor),
		reader: sqlstoretest.User(t, s, "rita", entity.RoleReader),
	}
	login := users{byName: map[string]*entity.User{"jane": st.jane, "ed": st.editor, "rita": st.reader}}
	deps := Deps{
		Sessions:      scs.New(),
		Auth:          login,
		Articles:      &artUC.Service{Store: s},
		Newsletters:   &nlUC.Service{Store: s},
		Publishers:    &pubUC.Service{Store: s},
		Subscriptions: &subUC.Service{Store: s},
		Users:         &userUC.Service{Store: s},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	app, err := New(deps)
	require.NoError(t, err)
	st.srv = httptest.NewServer(app.Handler())
	t.Cleanup(st.srv.Close)
	return st
}

// client returns a cookie-keeping client that does not follow redirects.
func (st *site) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(st.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (st *site) login(username string) *http.Client {
	c := st.client()
	res := st.post(c, "/login", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(st.t, http.StatusSeeOther, res.StatusCode)
	return c
}

type page struct {
	StatusCode int
	Location   string
	Body       string
}

func (st *site) read(res *http.Response, err error) page {
	require.NoError(st.t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(st.t, err)
	return page{StatusCode: res.StatusCode, Location: res.Header.Get("Location"), Body: string(b)}
}

func (st *site) get(c *http.Client, path string) page {
	return st.read(c.Get(st.srv.URL + path))
}

func (st *site) post(c *http.Client, path string, form url.Values) page {
	return st.read(c.PostForm(st.srv.URL+path, form))
}

/* ───────────────────────────── 1. sessions ───────────────────────────── */

func TestLoginFlow(t *testing.T) {
	st := newSite(t)
	c := st.client()

	res := st.get(c, "/dashboard")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login?next=%2Fdashboard", res.Location)

	res = st.post(c, "/login", url.Values{"username": {"rita"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, res.Body, "Please enter a correct username and password.")

	res = st.post(c, "/login", url.Values{"username": {"rita"}, "password": {testPassword}, "next": {"//evil.example"}})
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/dashboard", res.Location)

	res = st.get(c, "/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "You have no subscriptions yet.")

	res = st.post(c, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, http.StatusSeeOther, st.get(c, "/dashboard").StatusCode)
}

func TestSafeNext(t *testing.T) {
	for in, want := range map[string]string{
		"":                 "/dashboard",
		"/articles?page=2": "/articles?page=2",
		"//evil.example":   "/dashboard",
		`/\evil.example`:   "/dashboard",
		"https://x.test/":  "/dashboard",
	} {
		assert.Equal(t, want, safeNext(in), in)
	}
}

/* ───────────────────────────── 2. permissions ───────────────────────────── */

func TestRoleGatedPages(t *testing.T) {
	st := newSite(t)
	reader, jane, editor := st.login("rita"), st.login("jane"), st.login("ed")

	tests := []struct {
		name     string
		client   *http.Client
		path     string
		wantCode int
		wantLoc  string
	}{
		{"reader cannot review", reader, "/pending", http.StatusSeeOther, "/access-denied"},
		{"reader cannot write", reader, "/articles/new", http.StatusSeeOther, "/access-denied"},
		{"journalist cannot review", jane, "/pending", http.StatusSeeOther, "/access-denied"},
		{"editor cannot subscribe", editor, "/subscriptions", http.StatusSeeOther, "/access-denied"},
		{"editor reviews", editor, "/pending", http.StatusOK, ""},
		{"journalist writes", jane, "/articles/new", http.StatusOK, ""},
		{"non-admin publishers", editor, "/admin/publishers", http.StatusSeeOther, "/access-denied"},
		{"unknown article", reader, "/articles/999", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := st.get(tt.client, tt.path)
			assert.Equal(t, tt.wantCode, res.StatusCode)
			assert.Equal(t, tt.wantLoc, res.Location)
		})
	}

	// a reader cannot see another journalist's draft
	draft := sqlstoretest.Article(t, st.store, "Draft", st.jane.ID, nil)
	assert.Equal(t, http.StatusNotFound, st.get(reader, fmt.Sprintf("/articles/%d", draft.ID)).StatusCode)
}

/* ───────────────────────────── 3. articles ───────────────────────────── */

func TestArticleCreateAndApprove(t *testing.T) {
	st := newSite(t)
	jane, editor := st.login("jane"), st.login("ed")

	res := st.post(jane, "/articles/new", url.Values{"title": {""}, "content": {"text"}})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, res.Body, `class="field-error"`)

	res = st.post(jane, "/articles/new", url.Values{"title": {"Harbour"}, "content": {"The harbour reopened."}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	detail := res.Location
	res = st.get(jane, detail)
	assert.Contains(t, res.Body, "Article &#39;Harbour&#39; created successfully!")
	assert.Contains(t, res.Body, "Pending review")

	approve := detail + "/approve"
	res = st.post(editor, approve, nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/pending", res.Location)
	assert.Contains(t, st.get(editor, "/pending").Body, "has been approved successfully!")

	res = st.post(editor, approve, nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, detail, res.Location)
	assert.Contains(t, st.get(editor, detail).Body, "is already approved.")

	// approval is editor-only
	assert.Equal(t, "/access-denied", st.post(jane, approve, nil).Location)
}

func TestArticleReject(t *testing.T) {
	st := newSite(t)
	editor := st.login("ed")
	a := sqlstoretest.Article(t, st.store, "Rumour", st.jane.ID, nil)

	res := st.post(editor, fmt.Sprintf("/articles/%d/reject", a.ID), nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Contains(t, st.get(editor, "/pending").Body, "has been rejected and deleted.")

	got, err := st.store.Articles().Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArticleMarkdown(t *testing.T) {
	st := newSite(t)
	reader := st.login("rita")
	a := sqlstoretest.Article(t, st.store, "Styled", st.jane.ID, st.editor)
	a.Content = "Some **bold** news.\n\n<script>alert(1)</script>"
	require.NoError(t, st.store.Articles().Update(context.Background(), a))

	res := st.get(reader, fmt.Sprintf("/articles/%d", a.ID))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "<strong>bold</strong>")
	assert.NotContains(t, res.Body, "<script>alert(1)</script>")
}

func TestArticleEditOwnOnly(t *testing.T) {
	st := newSite(t)
	jane := st.login("jane")
	own := sqlstoretest.Article(t, st.store, "Mine", st.jane.ID, nil)
	joe := sqlstoretest.User(t, st.store, "joe", entity.RoleJournalist)
	other := sqlstoretest.Article(t, st.store, "Theirs", joe.ID, st.editor)

	res := st.post(jane, fmt.Sprintf("/articles/%d/edit", own.ID), url.Values{"title": {"Mine, revised"}, "content": {"New body"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	got, err := st.store.Articles().Get(context.Background(), own.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine, revised", got.Title)

	res = st.post(jane, fmt.Sprintf("/articles/%d/edit", other.ID), url.Values{"title": {"x"}, "content": {"y"}})
	assert.Equal(t, "/access-denied", res.Location)
}

/* ───────────────────────────── 4. subscriptions ───────────────────────────── */

func TestSubscriptionToggle(t *testing.T) {
	st := newSite(t)
	reader := st.login("rita")
	daily := sqlstoretest.Publisher(t, st.store, "Daily", nil, nil)
	path := fmt.Sprintf("/subscriptions/publishers/%d/toggle", daily.ID)

	req, err := http.NewRequest(http.MethodPost, st.srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Referer", st.srv.URL+"/subscriptions")
	res := st.read(reader.Do(req))
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/subscriptions", res.Location)

	body := st.get(reader, "/subscriptions").Body
	assert.Contains(t, body, "Subscribed to Daily")
	assert.Contains(t, body, "Unsubscribe")

	res = st.post(reader, path, nil)
	assert.Equal(t, "/dashboard", res.Location)
	assert.Contains(t, st.get(reader, "/dashboard").Body, "Unsubscribed from Daily")

	set, err := st.store.Subscriptions().Get(context.Background(), st.reader.ID)
	require.NoError(t, err)
	assert.Empty(t, set.PublisherIDs)

	// non-readers get a message instead of a subscription
	editor := st.login("ed")
	st.post(editor, path, nil)
	assert.Contains(t, st.get(editor, "/dashboard").Body, "Only readers can subscribe.")
}

/* ───────────────────────────── 5. newsletters ───────────────────────────── */

func TestNewsletterCreate(t *testing.T) {
	st := newSite(t)
	jane := st.login("jane")
	approved := sqlstoretest.Article(t, st.store, "Approved piece", st.jane.ID, st.editor)
	sqlstoretest.Article(t, st.store, "Unreviewed piece", st.jane.ID, nil)

	form := st.get(jane, "/newsletters/new").Body
	assert.Contains(t, form, "Approved piece")
	assert.NotContains(t, form, "Unreviewed piece")

	res := st.post(jane, "/newsletters/new", url.Values{
		"title":    {"Weekly"},
		"articles": {fmt.Sprint(approved.ID)},
	})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.True(t, strings.HasPrefix(res.Location, "/newsletters/"))
	body := st.get(st.login("rita"), res.Location).Body
	assert.Contains(t, body, "Weekly")
	assert.Contains(t, body, "Approved piece")

	res = st.post(jane, "/newsletters/new", url.Values{"title": {"Bad"}, "articles": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
