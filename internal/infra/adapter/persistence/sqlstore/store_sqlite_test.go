package sqlstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/domain/entity"
	"dispatch/internal/infra/adapter/persistence/sqlstore"
	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
	"dispatch/internal/repository"
)

func newSQLiteStore(t *testing.T) *sqlstore.Store { return sqlstoretest.New(t) }

func mustUser(t *testing.T, s repository.Store, username string, role entity.Role) *entity.User {
	return sqlstoretest.User(t, s, username, role)
}

func TestSQLite_SourceExclusivityConstraint(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	j := mustUser(t, s, "jane", entity.RoleJournalist)
	p := &entity.Publisher{Name: "Daily", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, s.Publishers().Create(ctx, p))

	now := time.Now().UTC()
	both := &entity.Article{Title: "t", Content: "c", AuthorID: &j.ID, PublisherID: &p.ID, CreatedAt: now, UpdatedAt: now}
	assert.Error(t, s.Articles().Create(ctx, both))

	neither := &entity.Article{Title: "t", Content: "c", CreatedAt: now, UpdatedAt: now}
	assert.Error(t, s.Articles().Create(ctx, neither))

	ok := &entity.Article{Title: "t", Content: "c", PublisherID: &p.ID, CreatedAt: now, UpdatedAt: now}
	assert.NoError(t, s.Articles().Create(ctx, ok))
}

func TestSQLite_ApproveOnceAndVisible(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	j := mustUser(t, s, "jane", entity.RoleJournalist)
	ed := mustUser(t, s, "ed", entity.RoleEditor)

	now := time.Now().UTC()
	a := &entity.Article{Title: "Budget", Content: "c", AuthorID: &j.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Articles().Create(ctx, a))

	at := now.Add(time.Minute).Truncate(time.Second)
	ok, err := s.Articles().Approve(ctx, a.ID, ed.ID, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Articles().Approve(ctx, a.ID, ed.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "second approval must not match")

	got, err := s.Articles().GetWithSource(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Article.Approved)
	require.NotNil(t, got.Article.ApprovedBy)
	assert.Equal(t, ed.ID, *got.Article.ApprovedBy)
	require.NotNil(t, got.Article.ApprovedAt)
	assert.True(t, got.Article.ApprovedAt.Equal(at))
	assert.Equal(t, "jane", got.SourceName)
}

func TestSQLite_ConcurrentApprovalSucceedsOnce(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	j := mustUser(t, s, "jane", entity.RoleJournalist)
	ed := mustUser(t, s, "ed", entity.RoleEditor)
	now := time.Now().UTC()
	a := &entity.Article{Title: "t", Content: "c", AuthorID: &j.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Articles().Create(ctx, a))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(tx repository.Store) error {
				ok, err := tx.Articles().Approve(ctx, a.ID, ed.ID, time.Now().UTC())
				if err == nil && ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
				return err
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestSQLite_ListScopes(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	jane := mustUser(t, s, "jane", entity.RoleJournalist)
	joe := mustUser(t, s, "joe", entity.RoleJournalist)

	now := time.Now().UTC()
	mk := func(title string, author int64, approved bool) {
		a := &entity.Article{Title: title, Content: "Lorem ipsum", AuthorID: &author, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, s.Articles().Create(ctx, a))
		if approved {
			_, err := s.Articles().Approve(ctx, a.ID, jane.ID, now)
			require.NoError(t, err)
		}
	}
	mk("Jane draft", jane.ID, false)
	mk("Jane live", jane.ID, true)
	mk("Joe draft", joe.ID, false)
	mk("Joe live 100%", joe.ID, true)

	approved := true
	list, err := s.Articles().List(ctx, repository.ArticleFilter{Approved: &approved, Order: repository.OrderTitleAsc}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.Articles().List(ctx, repository.ArticleFilter{Approved: &approved, OrAuthorID: &jane.ID}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = s.Articles().List(ctx, repository.ArticleFilter{Keywords: []string{"100%"}}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Joe live 100%", list[0].Article.Title)

	n, err := s.Articles().Count(ctx, repository.ArticleFilter{Sources: &entity.SubscriptionSet{JournalistIDs: []int64{joe.ID}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Articles().Count(ctx, repository.ArticleFilter{Sources: &entity.SubscriptionSet{}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLite_SubscriptionsRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	reader := mustUser(t, s, "rita", entity.RoleReader)
	jane := mustUser(t, s, "jane", entity.RoleJournalist)
	p := &entity.Publisher{Name: "Daily", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, s.Publishers().Create(ctx, p))

	before, err := s.Subscriptions().Get(ctx, reader.ID)
	require.NoError(t, err)

	subs := s.Subscriptions()
	require.NoError(t, subs.Add(ctx, reader.ID, entity.SourcePublisher, p.ID))
	require.NoError(t, subs.Add(ctx, reader.ID, entity.SourcePublisher, p.ID))
	require.NoError(t, subs.Add(ctx, reader.ID, entity.SourceJournalist, jane.ID))

	mid, err := subs.Get(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p.ID}, mid.PublisherIDs)
	assert.Equal(t, []int64{jane.ID}, mid.JournalistIDs)

	readers, err := subs.Subscribers(ctx, entity.SourceJournalist, jane.ID)
	require.NoError(t, err)
	require.Len(t, readers, 1)
	assert.Equal(t, "rita", readers[0].Username)

	require.NoError(t, subs.Remove(ctx, reader.ID, entity.SourcePublisher, p.ID))
	require.NoError(t, subs.Remove(ctx, reader.ID, entity.SourcePublisher, p.ID))
	require.NoError(t, subs.Remove(ctx, reader.ID, entity.SourceJournalist, jane.ID))

	after, err := subs.Get(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSQLite_PublishersAndNewsletters(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	jane := mustUser(t, s, "jane", entity.RoleJournalist)
	ed := mustUser(t, s, "ed", entity.RoleEditor)
	now := time.Now().UTC()

	p := &entity.Publisher{Name: "Daily", EditorIDs: []int64{ed.ID}, JournalistIDs: []int64{jane.ID}, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Publishers().Create(ctx, p))

	exists, err := s.Publishers().ExistsByName(ctx, "daily", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Publishers().ExistsByName(ctx, "daily", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	a := &entity.Article{Title: "t", Content: "c", PublisherID: &p.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Articles().Create(ctx, a))
	_, err = s.Articles().Approve(ctx, a.ID, ed.ID, now)
	require.NoError(t, err)

	list, err := s.Publishers().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ArticleCount)
	assert.Equal(t, []int64{ed.ID}, list[0].Publisher.EditorIDs)

	mine, err := s.Publishers().ListForMember(ctx, jane.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	n := &entity.Newsletter{Title: "Weekly", AuthorID: jane.ID, ArticleIDs: []int64{a.ID}, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Newsletters().Create(ctx, n))

	got, err := s.Newsletters().Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, got.ArticleIDs)

	n.ArticleIDs = nil
	n.Title = "Weekly v2"
	require.NoError(t, s.Newsletters().Update(ctx, n))
	got, err = s.Newsletters().Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly v2", got.Title)
	assert.Empty(t, got.ArticleIDs)

	ids, err := s.Articles().ExistingIDs(ctx, []int64{a.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids)
}
