package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dispatch/internal/common/pagination"
	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/policy"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

type articleListData struct {
	Heading  string
	Articles []repository.ArticleWithSource
	Page     pagination.Metadata
	Search   string
	Ordering string
	CanWrite bool
}

func (a *App) articleList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	params, err := pagination.ParseQueryParams(r, a.Pagination)
	if err != nil {
		params = pagination.Params{}.WithDefaults(a.Pagination)
	}
	q := r.URL.Query()
	lq := artUC.ListQuery{
		Search: q.Get("search"),
		Order:  repository.ParseArticleOrder(q.Get("ordering")),
		Page:   params,
	}

	heading := "Published Articles"
	switch u.Role {
	case entity.RoleEditor:
		heading = "All Articles"
	case entity.RoleJournalist:
		heading = "My Articles"
		lq.Mine = true
	}

	res, err := a.Articles.List(r.Context(), u, lq)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "article_list.html", view{Title: heading, Data: articleListData{
		Heading:  heading,
		Articles: res.Data,
		Page:     res.Pagination,
		Search:   lq.Search,
		Ordering: string(lq.Order),
		CanWrite: policy.CanCreateArticle(u),
	}})
}

type articleDetailData struct {
	Article    repository.ArticleWithSource
	CanApprove bool
	CanEdit    bool
	CanDelete  bool
}

func (a *App) articleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return
	}
	u := currentUser(r.Context())
	art, err := a.Articles.Get(r.Context(), u, id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "article_detail.html", view{Title: art.Article.Title, Data: articleDetailData{
		Article:    *art,
		CanApprove: policy.CanApprove(u) && !art.Article.Approved,
		CanEdit:    policy.CanModifyArticle(u, art.Article),
		CanDelete:  policy.CanDeleteArticle(u, art.Article),
	}})
}

/* ───────────────────────────── create / edit ───────────────────────────── */

type articleFormData struct {
	Heading    string
	Action     string
	Publishers []repository.PublisherWithCount
	// NeedsPublisher is set for editors, who file on behalf of a publisher.
	NeedsPublisher bool
}

func (a *App) articleFormData(r *http.Request, heading, action string) (articleFormData, error) {
	d := articleFormData{Heading: heading, Action: action}
	if u := currentUser(r.Context()); u.Role == entity.RoleEditor {
		list, err := a.Publishers.List(r.Context())
		if err != nil {
			return d, err
		}
		d.Publishers = list
		d.NeedsPublisher = true
	}
	return d, nil
}

func (a *App) articleNew(w http.ResponseWriter, r *http.Request) {
	if !policy.CanCreateArticle(currentUser(r.Context())) {
		redirect(w, r, "/access-denied")
		return
	}
	d, err := a.articleFormData(r, "Create New Article", "/articles/new")
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "article_form.html", view{Title: d.Heading, Data: d})
}

func (a *App) articleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	f := newForm(r.PostForm)
	in := artUC.CreateInput{Title: f.Get("title"), Content: f.Get("content")}
	if s := f.Get("publisher"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			in.PublisherID = &id
		}
	}

	art, err := a.Articles.Create(ctx, currentUser(ctx), in)
	if err != nil {
		if !errors.Is(err, entity.ErrInvalidInput) {
			a.fail(w, r, err)
			return
		}
		f.Fail(err)
		d, derr := a.articleFormData(r, "Create New Article", "/articles/new")
		if derr != nil {
			a.serverError(w, r, derr)
			return
		}
		a.render(w, r, http.StatusBadRequest, "article_form.html", view{Title: d.Heading, Form: f, Data: d})
		return
	}
	a.flash(ctx, "success", fmt.Sprintf("Article '%s' created successfully! It will be reviewed by an editor.", art.Title))
	redirect(w, r, fmt.Sprintf("/articles/%d", art.ID))
}

// editable loads the article and checks that the caller may modify it.
func (a *App) editable(w http.ResponseWriter, r *http.Request) (*repository.ArticleWithSource, bool) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return nil, false
	}
	u := currentUser(r.Context())
	art, err := a.Articles.Get(r.Context(), u, id)
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	if !policy.CanModifyArticle(u, art.Article) {
		redirect(w, r, "/access-denied")
		return nil, false
	}
	return art, true
}

func (a *App) articleEdit(w http.ResponseWriter, r *http.Request) {
	art, ok := a.editable(w, r)
	if !ok {
		return
	}
	f := newForm(nil)
	f.Values.Set("title", art.Article.Title)
	f.Values.Set("content", art.Article.Content)
	d := articleFormData{Heading: "Edit Article", Action: fmt.Sprintf("/articles/%d/edit", art.Article.ID)}
	a.render(w, r, http.StatusOK, "article_form.html", view{Title: d.Heading, Form: f, Data: d})
}

func (a *App) articleUpdate(w http.ResponseWriter, r *http.Request) {
	art, ok := a.editable(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	f := newForm(r.PostForm)
	title, content := f.Get("title"), f.Get("content")
	_, err := a.Articles.Update(ctx, currentUser(ctx), artUC.UpdateInput{ID: art.Article.ID, Title: &title, Content: &content})
	if err != nil {
		if !errors.Is(err, entity.ErrInvalidInput) {
			a.fail(w, r, err)
			return
		}
		f.Fail(err)
		d := articleFormData{Heading: "Edit Article", Action: fmt.Sprintf("/articles/%d/edit", art.Article.ID)}
		a.render(w, r, http.StatusBadRequest, "article_form.html", view{Title: d.Heading, Form: f, Data: d})
		return
	}
	a.flash(ctx, "success", "Article updated.")
	redirect(w, r, fmt.Sprintf("/articles/%d", art.Article.ID))
}

func (a *App) articleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	art, ok := a.editable(w, r)
	if !ok {
		return
	}
	a.render(w, r, http.StatusOK, "article_delete.html", view{Title: "Delete article", Data: art})
}

func (a *App) articleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return
	}
	ctx := r.Context()
	if err := a.Articles.Delete(ctx, currentUser(ctx), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.flash(ctx, "success", "Article deleted.")
	redirect(w, r, "/articles")
}

/* ───────────────────────────── review ───────────────────────────── */

func (a *App) pending(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, a.Pagination)
	if err != nil {
		params = pagination.Params{}.WithDefaults(a.Pagination)
	}
	res, err := a.Articles.Pending(r.Context(), currentUser(r.Context()), params)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "pending.html", view{Title: "Pending Articles", Data: articleListData{
		Heading:  "Pending Articles",
		Articles: res.Data,
		Page:     res.Pagination,
	}})
}

func (a *App) articleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return
	}
	ctx := r.Context()
	art, err := a.Articles.Approve(ctx, currentUser(ctx), id)
	switch {
	case errors.Is(err, entity.ErrAlreadyApproved):
		msg := "This article is already approved."
		if cur, gerr := a.Articles.Get(ctx, currentUser(ctx), id); gerr == nil {
			msg = fmt.Sprintf("Article '%s' is already approved.", cur.Article.Title)
		}
		a.flash(ctx, "warning", msg)
		redirect(w, r, fmt.Sprintf("/articles/%d", id))
	case err != nil:
		a.fail(w, r, err)
	default:
		a.flash(ctx, "success", fmt.Sprintf("Article '%s' has been approved successfully! Notifications have been sent to subscribers.", art.Article.Title))
		redirect(w, r, "/pending")
	}
}

func (a *App) articleReject(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return
	}
	ctx := r.Context()
	art, err := a.Articles.Reject(ctx, currentUser(ctx), id)
	switch {
	case errors.Is(err, entity.ErrAlreadyApproved):
		a.flash(ctx, "warning", "Approved articles cannot be rejected.")
		redirect(w, r, fmt.Sprintf("/articles/%d", id))
	case err != nil:
		a.fail(w, r, err)
	default:
		a.flash(ctx, "success", fmt.Sprintf("Article '%s' has been rejected and deleted.", art.Title))
		redirect(w, r, "/pending")
	}
}
