package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
)

func TestFeed_ListsApprovedOnly(t *testing.T) {
	st := newSite(t)
	a := sqlstoretest.Article(t, st.store, "Harbour reopens", st.jane.ID, st.editor)
	a.Content = "The **harbour** reopened\n\non Monday."
	require.NoError(t, st.store.Articles().Update(context.Background(), a))
	sqlstoretest.Article(t, st.store, "Unreviewed", st.jane.ID, nil)

	res := st.get(st.client(), "/feed.xml")
	require.Equal(t, http.StatusOK, res.StatusCode)

	feed, err := gofeed.NewParser().ParseString(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "Dispatch", feed.Title)
	require.Len(t, feed.Items, 1)

	item := feed.Items[0]
	assert.Equal(t, "Harbour reopens", item.Title)
	assert.Equal(t, fmt.Sprintf("%s/articles/%d", st.srv.URL, a.ID), item.Link)
	assert.Equal(t, fmt.Sprintf("dispatch-article-%d", a.ID), item.GUID)
	assert.Equal(t, "The harbour reopened on Monday.", item.Description)
	require.NotNil(t, item.PublishedParsed)
	assert.WithinDuration(t, *a.ApprovedAt, *item.PublishedParsed, time.Second)
	require.NotNil(t, item.Author)
	assert.Equal(t, "jane", item.Author.Name)
}

func TestFeed_LinksUseSiteURL(t *testing.T) {
	st := newSite(t, func(d *Deps) { d.SiteURL = "https://news.dispatch.test/" })
	a := sqlstoretest.Article(t, st.store, "Harbour reopens", st.jane.ID, st.editor)

	req, err := http.NewRequest(http.MethodGet, st.srv.URL+"/feed.xml", nil)
	require.NoError(t, err)
	req.Host = "attacker.example"
	req.Header.Set("X-Forwarded-Proto", "https")
	res := st.read(st.client().Do(req))
	require.Equal(t, http.StatusOK, res.StatusCode)

	feed, err := gofeed.NewParser().ParseString(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "https://news.dispatch.test/", feed.Link)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, fmt.Sprintf("https://news.dispatch.test/articles/%d", a.ID), feed.Items[0].Link)
	assert.NotContains(t, res.Body, "attacker.example")
}

func TestFeed_Empty(t *testing.T) {
	st := newSite(t)
	res := st.get(st.client(), "/feed.xml")
	require.Equal(t, http.StatusOK, res.StatusCode)

	feed, err := gofeed.NewParser().ParseString(res.Body)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}

func TestFeed_AdvertisedInLayout(t *testing.T) {
	st := newSite(t)
	res := st.get(st.client(), "/")
	require.Equal(t, http.StatusOK, res.StatusCode)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	require.NoError(t, err)
	link := doc.Find(`link[rel="alternate"][type="application/rss+xml"]`)
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "/feed.xml", link.AttrOr("href", ""))
}

func TestPlainExcerpt(t *testing.T) {
	assert.Equal(t, "Title Some bold text & more", plainExcerpt("# Title\n\nSome **bold** text & more", 200))
	assert.Equal(t, "<script>alert(1)</script>", plainExcerpt("<script>alert(1)</script>", 200))

	long := plainExcerpt(strings.Repeat("word ", 100), 200)
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.Equal(t, 203, utf8.RuneCountInString(long))
}
