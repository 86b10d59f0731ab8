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
	nlUC "dispatch/internal/usecase/newsletter"
)

type newsletterListData struct {
	Newsletters []*entity.Newsletter
	CanCreate   bool
}

func (a *App) newsletterList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	var author int64
	if u.Role == entity.RoleJournalist {
		author = u.ID
	}
	list, err := a.Newsletters.List(r.Context(), author)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "newsletter_list.html", view{Title: "Newsletters", Data: newsletterListData{
		Newsletters: list,
		CanCreate:   policy.CanCreateNewsletter(u),
	}})
}

func (a *App) newsletterDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return
	}
	v, err := a.Newsletters.Get(r.Context(), currentUser(r.Context()), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "newsletter_detail.html", view{Title: v.Newsletter.Title, Data: v})
}

type newsletterFormData struct {
	Articles []repository.ArticleWithSource
	Selected []int64
}

// ownApproved lists the journalist's approved articles for the picker.
func (a *App) ownApproved(r *http.Request) ([]repository.ArticleWithSource, error) {
	ctx := r.Context()
	res, err := a.Articles.List(ctx, currentUser(ctx), artUC.ListQuery{
		Mine: true,
		Page: pagination.Params{Page: 1, Limit: a.Pagination.MaxLimit},
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.ArticleWithSource, 0, len(res.Data))
	for _, item := range res.Data {
		if item.Article.Approved {
			out = append(out, item)
		}
	}
	return out, nil
}

func (a *App) newsletterNew(w http.ResponseWriter, r *http.Request) {
	if !policy.CanCreateNewsletter(currentUser(r.Context())) {
		redirect(w, r, "/access-denied")
		return
	}
	arts, err := a.ownApproved(r)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "newsletter_form.html", view{Title: "Create Newsletter", Data: newsletterFormData{Articles: arts}})
}

func (a *App) newsletterCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !policy.CanCreateNewsletter(currentUser(ctx)) {
		redirect(w, r, "/access-denied")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f := newForm(r.PostForm)
	var ids []int64
	for _, s := range r.PostForm["articles"] {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f.Errors["articles"] = "Select a valid choice."
			continue
		}
		ids = append(ids, id)
	}

	if len(f.Errors) > 0 {
		a.newsletterFormError(w, r, f, ids)
		return
	}
	n, err := a.Newsletters.Create(ctx, currentUser(ctx), nlUC.Input{
		Title:       f.Get("title"),
		Description: f.Get("description"),
		ArticleIDs:  ids,
	})
	if err != nil {
		if !errors.Is(err, entity.ErrInvalidInput) {
			a.fail(w, r, err)
			return
		}
		f.Fail(err)
		a.newsletterFormError(w, r, f, ids)
		return
	}
	a.flash(ctx, "success", fmt.Sprintf("Newsletter '%s' created successfully!", n.Title))
	redirect(w, r, fmt.Sprintf("/newsletters/%d", n.ID))
}

func (a *App) newsletterFormError(w http.ResponseWriter, r *http.Request, f *form, selected []int64) {
	arts, err := a.ownApproved(r)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusBadRequest, "newsletter_form.html", view{
		Title: "Create Newsletter",
		Form:  f,
		Data:  newsletterFormData{Articles: arts, Selected: selected},
	})
}
