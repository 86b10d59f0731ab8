package web

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"dispatch/internal/common/pagination"
	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

const dashboardItems = 5

type dashboardData struct {
	PendingCount     int64
	Recent           []repository.ArticleWithSource
	Newsletters      []*entity.Newsletter
	Publishers       []*entity.Publisher
	Feed             []repository.ArticleWithSource
	PublisherCount   int
	JournalistCount  int
	HasSubscriptions bool
}

// dashboard loads the role's panels concurrently.
func (a *App) dashboard(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	g, ctx := errgroup.WithContext(r.Context())
	first := pagination.Params{Page: 1, Limit: dashboardItems}
	var d dashboardData

	switch u.Role {
	case entity.RoleEditor:
		g.Go(func() error {
			res, err := a.Articles.Pending(ctx, u, first)
			if err != nil {
				return err
			}
			d.PendingCount = res.Pagination.Total
			return nil
		})
		g.Go(func() error {
			res, err := a.Articles.List(ctx, u, artUC.ListQuery{
				Order:        repository.OrderApprovedDesc,
				ApprovedOnly: true,
				Page:         first,
			})
			if err != nil {
				return err
			}
			d.Recent = res.Data
			return nil
		})
		g.Go(func() error {
			list, err := a.Publishers.ForMember(ctx, u.ID)
			if err != nil {
				return err
			}
			d.Publishers = list
			return nil
		})
	case entity.RoleJournalist:
		g.Go(func() error {
			res, err := a.Articles.List(ctx, u, artUC.ListQuery{Mine: true, Page: first})
			if err != nil {
				return err
			}
			d.Recent = res.Data
			return nil
		})
		g.Go(func() error {
			list, err := a.Newsletters.List(ctx, u.ID)
			if err != nil {
				return err
			}
			d.Newsletters = list[:min(len(list), dashboardItems)]
			return nil
		})
	default:
		g.Go(func() error {
			set, err := a.Subscriptions.Get(ctx, u)
			if err != nil {
				return err
			}
			d.PublisherCount = len(set.PublisherIDs)
			d.JournalistCount = len(set.JournalistIDs)
			d.HasSubscriptions = d.PublisherCount+d.JournalistCount > 0
			return nil
		})
		g.Go(func() error {
			res, err := a.Articles.Subscribed(ctx, u, artUC.ListQuery{Page: first})
			if err != nil {
				return err
			}
			d.Feed = res.Data
			return nil
		})
		g.Go(func() error {
			res, err := a.Articles.List(ctx, u, artUC.ListQuery{Page: first})
			if err != nil {
				return err
			}
			d.Recent = res.Data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "dashboard.html", view{Title: "Dashboard", Data: d})
}
