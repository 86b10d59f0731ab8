package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/policy"
	"dispatch/internal/repository"
	pubUC "dispatch/internal/usecase/publisher"
)

type adminPublishersData struct {
	Publishers  []repository.PublisherWithCount
	Editors     []*entity.User
	Journalists []*entity.User
}

func (a *App) adminData(r *http.Request) (adminPublishersData, error) {
	ctx := r.Context()
	var d adminPublishersData
	pubs, err := a.Publishers.List(ctx)
	if err != nil {
		return d, err
	}
	d.Publishers = pubs
	editor, journalist := entity.RoleEditor, entity.RoleJournalist
	if d.Editors, err = a.Users.List(ctx, &editor); err != nil {
		return d, err
	}
	if d.Journalists, err = a.Users.List(ctx, &journalist); err != nil {
		return d, err
	}
	return d, nil
}

func (a *App) renderAdmin(w http.ResponseWriter, r *http.Request, status int, f *form) {
	d, err := a.adminData(r)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, status, "admin_publishers.html", view{Title: "Publishers", Form: f, Data: d})
}

func (a *App) adminPublishers(w http.ResponseWriter, r *http.Request) {
	if !policy.CanManagePublishers(currentUser(r.Context())) {
		redirect(w, r, "/access-denied")
		return
	}
	a.renderAdmin(w, r, http.StatusOK, nil)
}

func (a *App) adminPublisherCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	f := newForm(r.PostForm)
	p, err := a.Publishers.Create(ctx, currentUser(ctx), pubUC.Input{
		Name:        f.Get("name"),
		Description: f.Get("description"),
		Website:     f.Get("website"),
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidInput):
			f.Fail(err)
		case errors.Is(err, entity.ErrConflict):
			f.Errors["name"] = "A publisher with this name already exists."
		default:
			a.fail(w, r, err)
			return
		}
		a.renderAdmin(w, r, http.StatusBadRequest, f)
		return
	}
	a.flash(ctx, "success", fmt.Sprintf("Publisher '%s' created.", p.Name))
	redirect(w, r, "/admin/publishers")
}

// adminPublisherMembers adds or removes one editor or journalist.
func (a *App) adminPublisherMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		a.fail(w, r, entity.ErrNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	userID, _ := strconv.ParseInt(r.PostForm.Get("user_id"), 10, 64)
	_, err = a.Publishers.SetMember(ctx, currentUser(ctx), id, pubUC.MemberInput{
		UserID: userID,
		Kind:   repository.MemberKind(r.PostForm.Get("kind")),
		Member: r.PostForm.Get("action") != "remove",
	})
	var ve *entity.ValidationError
	switch {
	case asValidation(err, &ve):
		a.flash(ctx, "danger", ve.Message)
	case err != nil:
		a.fail(w, r, err)
		return
	default:
		a.flash(ctx, "success", "Publisher members updated.")
	}
	redirect(w, r, "/admin/publishers")
}
