package web

import (
	"net/http"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/pathutil"
	"dispatch/internal/policy"
)

type subscriptionRow struct {
	ID         int64
	Name       string
	Subscribed bool
}

type subscriptionsData struct {
	Publishers  []subscriptionRow
	Journalists []subscriptionRow
}

func (a *App) subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := currentUser(ctx)
	set, err := a.Subscriptions.Get(ctx, u)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	pubs, err := a.Publishers.List(ctx)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	role := entity.RoleJournalist
	journalists, err := a.Users.List(ctx, &role)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	var d subscriptionsData
	for _, p := range pubs {
		d.Publishers = append(d.Publishers, subscriptionRow{
			ID: p.Publisher.ID, Name: p.Publisher.Name, Subscribed: set.HasPublisher(p.Publisher.ID),
		})
	}
	for _, j := range journalists {
		d.Journalists = append(d.Journalists, subscriptionRow{
			ID: j.ID, Name: j.DisplayName(), Subscribed: set.HasJournalist(j.ID),
		})
	}
	a.render(w, r, http.StatusOK, "subscriptions.html", view{Title: "My Subscriptions", Data: d})
}

// toggle flips a subscription and returns to the referring page.
func (a *App) toggle(kind entity.SourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		u := currentUser(ctx)
		back := safeNext(refererPath(r))
		if !policy.CanSubscribe(u) {
			a.flash(ctx, "danger", "Only readers can subscribe.")
			redirect(w, r, back)
			return
		}
		id, err := pathutil.PathID(r, "id")
		if err != nil {
			a.fail(w, r, entity.ErrNotFound)
			return
		}
		name, err := a.sourceName(r, kind, id)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		on, err := a.Subscriptions.Toggle(ctx, u, kind, id)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if on {
			a.flash(ctx, "success", "Subscribed to "+name)
		} else {
			a.flash(ctx, "info", "Unsubscribed from "+name)
		}
		redirect(w, r, back)
	}
}

func (a *App) sourceName(r *http.Request, kind entity.SourceKind, id int64) (string, error) {
	if kind == entity.SourcePublisher {
		p, err := a.Publishers.Get(r.Context(), id)
		if err != nil {
			return "", err
		}
		return p.Name, nil
	}
	j, err := a.Users.Get(r.Context(), id)
	if err != nil {
		return "", err
	}
	return j.DisplayName(), nil
}

// refererPath keeps only the path and query of a same-host Referer.
func refererPath(r *http.Request) string {
	ref, err := r.URL.Parse(r.Referer())
	if err != nil || r.Referer() == "" || ref.Host != "" && ref.Host != r.Host {
		return ""
	}
	return ref.RequestURI()
}
