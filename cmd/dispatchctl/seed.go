package main

import (
	"context"
	"fmt"

	"dispatch/internal/domain/entity"
	"dispatch/internal/repository"
	authservice "dispatch/internal/service/auth"
	articleUC "dispatch/internal/usecase/article"
	newsletterUC "dispatch/internal/usecase/newsletter"
	publisherUC "dispatch/internal/usecase/publisher"
	subscriptionUC "dispatch/internal/usecase/subscription"
	userUC "dispatch/internal/usecase/user"
)

// SeedResult counts what Seed created.
type SeedResult struct {
	Users      int
	Publishers int
	Articles   int
	Approved   int
	Skipped    bool
}

type sampleUser struct {
	username, first, last string
	role                  entity.Role
	admin                 bool
}

var sampleUsers = []sampleUser{
	{username: "editor", first: "Eda", last: "Stone", role: entity.RoleEditor, admin: true},
	{username: "alice", first: "Alice", last: "Reyes", role: entity.RoleJournalist},
	{username: "bob", first: "Bob", last: "Okafor", role: entity.RoleJournalist},
	{username: "reader", first: "Rui", last: "Lind", role: entity.RoleReader},
}

// Seed loads a small newsroom through the use cases so every row passes the
// same validation as the API. It does nothing if the sample editor exists.
// Approvals go out without notifications.
func Seed(ctx context.Context, store repository.Store, req authservice.CredentialRequirements, password string) (*SeedResult, error) {
	existing, err := store.Users().GetByUsername(ctx, sampleUsers[0].username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SeedResult{Skipped: true}, nil
	}

	res := &SeedResult{}
	users := &userUC.Service{Store: store, Policy: req}
	byName := make(map[string]*entity.User, len(sampleUsers))
	for _, su := range sampleUsers {
		u, err := users.Register(ctx, userUC.RegisterInput{
			Username:        su.username,
			Email:           su.username + "@dispatch.example",
			FirstName:       su.first,
			LastName:        su.last,
			Role:            string(su.role),
			Password:        password,
			PasswordConfirm: password,
			IsAdmin:         su.admin,
		})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", su.username, err)
		}
		byName[su.username] = u
		res.Users++
	}
	editor, alice, bob, reader := byName["editor"], byName["alice"], byName["bob"], byName["reader"]

	publishers := &publisherUC.Service{Store: store}
	daily, err := publishers.Create(ctx, editor, publisherUC.Input{
		Name:        "Dispatch Daily",
		Description: "Local news, every morning.",
		Website:     "https://daily.dispatch.example",
	})
	if err != nil {
		return nil, fmt.Errorf("seed publisher: %w", err)
	}
	res.Publishers++
	members := []publisherUC.MemberInput{
		{UserID: editor.ID, Kind: repository.MemberEditor, Member: true},
		{UserID: alice.ID, Kind: repository.MemberJournalist, Member: true},
	}
	for _, m := range members {
		if _, err := publishers.SetMember(ctx, editor, daily.ID, m); err != nil {
			return nil, fmt.Errorf("seed membership: %w", err)
		}
	}

	articles := &articleUC.Service{Store: store}
	drafts := []struct {
		author  *entity.User
		in      articleUC.CreateInput
		approve bool
	}{
		{alice, articleUC.CreateInput{Title: "Council passes budget", Content: "The city council approved next year's budget on Tuesday."}, true},
		{alice, articleUC.CreateInput{Title: "Library extends hours", Content: "The central library will stay open until nine on weekdays."}, false},
		{bob, articleUC.CreateInput{Title: "Harbour bridge reopens", Content: "Repairs finished two weeks ahead of schedule."}, true},
		{editor, articleUC.CreateInput{Title: "Letter from the editor", Content: "Welcome to the new Dispatch Daily.", PublisherID: &daily.ID}, false},
	}
	var approvedIDs []int64
	for _, d := range drafts {
		a, err := articles.Create(ctx, d.author, d.in)
		if err != nil {
			return nil, fmt.Errorf("seed article %q: %w", d.in.Title, err)
		}
		res.Articles++
		if !d.approve {
			continue
		}
		if _, err := articles.Approve(ctx, editor, a.ID); err != nil {
			return nil, fmt.Errorf("seed approval %q: %w", d.in.Title, err)
		}
		approvedIDs = append(approvedIDs, a.ID)
		res.Approved++
	}

	newsletters := &newsletterUC.Service{Store: store}
	if _, err := newsletters.Create(ctx, alice, newsletterUC.Input{
		Title:       "Week in review",
		Description: "The stories that mattered this week.",
		ArticleIDs:  approvedIDs[:1],
	}); err != nil {
		return nil, fmt.Errorf("seed newsletter: %w", err)
	}

	subs := &subscriptionUC.Service{Store: store}
	if err := subs.Subscribe(ctx, reader, entity.SourceJournalist, alice.ID); err != nil {
		return nil, fmt.Errorf("seed subscription: %w", err)
	}
	if err := subs.Subscribe(ctx, reader, entity.SourcePublisher, daily.ID); err != nil {
		return nil, fmt.Errorf("seed subscription: %w", err)
	}
	return res, nil
}
