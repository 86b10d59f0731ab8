package web

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"dispatch/internal/common/pagination"
	"dispatch/internal/repository"
	artUC "dispatch/internal/usecase/article"
)

const (
	feedItems       = 20
	feedExcerptRune = 200
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	DC      string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Creator     string  `xml:"dc:creator,omitempty"`
	PubDate     string  `xml:"pubDate,omitempty"`
	Description string  `xml:"description"`
}

// feed serves the newest approved articles as RSS 2.0. It is public, so
// only approved articles are ever listed.
func (a *App) feed(w http.ResponseWriter, r *http.Request) {
	res, err := a.Articles.List(r.Context(), nil, artUC.ListQuery{
		Order: repository.OrderApprovedDesc,
		Page:  pagination.Params{Page: 1, Limit: feedItems},
	})
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	base := a.siteBase(r)
	ch := rssChannel{
		Title:       "Dispatch",
		Link:        base + "/",
		Description: "Newly approved articles",
		Items:       make([]rssItem, 0, len(res.Data)),
	}
	for i, item := range res.Data {
		art := item.Article
		it := rssItem{
			Title:       art.Title,
			Link:        fmt.Sprintf("%s/articles/%d", base, art.ID),
			GUID:        rssGUID{Value: fmt.Sprintf("dispatch-article-%d", art.ID)},
			Creator:     item.SourceName,
			Description: plainExcerpt(art.Content, feedExcerptRune),
		}
		if art.ApprovedAt != nil {
			it.PubDate = art.ApprovedAt.UTC().Format(time.RFC1123Z)
			if i == 0 {
				ch.LastBuildDate = it.PubDate
			}
		}
		ch.Items = append(ch.Items, it)
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(rssFeed{Version: "2.0", DC: "http://purl.org/dc/elements/1.1/", Channel: ch}); err != nil {
		a.logger.Error("feed encode failed", slog.Any("error", err))
	}
}

// plainExcerpt renders the Markdown body and keeps the visible text only.
func plainExcerpt(content string, max int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(renderMarkdown(content))))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max]) + "..."
}

func (a *App) siteBase(r *http.Request) string {
	if a.SiteURL != "" {
		return a.SiteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
