package web

import (
	"html/template"

	"gitlab.com/golang-commonmark/markdown"
)

// Raw HTML in article bodies is escaped; journalists write Markdown only.
var md = markdown.New(
	markdown.HTML(false),
	markdown.Linkify(true),
	markdown.Typographer(true),
	markdown.MaxNesting(10),
)

func renderMarkdown(src string) template.HTML {
	return template.HTML(md.RenderToString([]byte(src)))
}
