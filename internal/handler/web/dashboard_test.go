package web

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/infra/adapter/persistence/sqlstore/sqlstoretest"
)

func TestEditorDashboard(t *testing.T) {
	st := newSite(t)
	ctx := context.Background()
	sqlstoretest.Publisher(t, st.store, "Daily Planet", []int64{st.editor.ID}, []int64{st.jane.ID})
	sqlstoretest.Publisher(t, st.store, "Evening Star", nil, nil)

	older := sqlstoretest.Article(t, st.store, "Ferry timetable", st.jane.ID, nil)
	newer := sqlstoretest.Article(t, st.store, "Harbour reopens", st.jane.ID, nil)
	sqlstoretest.Article(t, st.store, "Unreviewed draft", st.jane.ID, nil)
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []int64{older.ID, newer.ID} {
		ok, err := st.store.Articles().Approve(ctx, id, st.editor.ID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.True(t, ok)
	}

	res := st.get(st.login("ed"), "/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	require.NoError(t, err)

	publishers := doc.Find("p.publisher")
	require.Equal(t, 1, publishers.Length())
	assert.Equal(t, "Daily Planet", publishers.Text())
	assert.NotContains(t, res.Body, "Evening Star")
	assert.Contains(t, res.Body, "1 article(s) waiting for approval")

	var recent []string
	doc.Find(".card > a[href^='/articles/']").Each(func(_ int, s *goquery.Selection) {
		recent = append(recent, s.Text())
	})
	assert.Equal(t, []string{"Harbour reopens", "Ferry timetable"}, recent)
}

func TestEditorDashboard_NoPublishers(t *testing.T) {
	st := newSite(t)
	res := st.get(st.login("ed"), "/dashboard")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "You are not an editor for any publisher yet.")
}
