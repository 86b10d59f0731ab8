package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"dispatch/internal/domain/entity"
	"dispatch/internal/handler/http/requestid"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"datep": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006 15:04")
	},
	"excerpt": func(a *entity.Article, n int) string { return a.Excerpt(n) },
	"checked": func(ids []int64, id int64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	},
}

// parseTemplates pairs every page with the shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		name := path.Base(p)
		if name == "layout.html" {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// form carries submitted values and field errors back to a page.
type form struct {
	Values url.Values
	Errors map[string]string
}

func newForm(v url.Values) *form {
	if v == nil {
		v = url.Values{}
	}
	return &form{Values: v, Errors: map[string]string{}}
}

func (f *form) Get(key string) string { return f.Values.Get(key) }

// Fail records err against its field, or the form as a whole.
func (f *form) Fail(err error) {
	var ve *entity.ValidationError
	if asValidation(err, &ve) {
		f.Errors[ve.Field] = ve.Message
		return
	}
	f.Errors["form"] = err.Error()
}

// view is the data every template receives.
type view struct {
	Title   string
	User    *entity.User
	Flashes []Flash
	Path    string
	Form    *form
	Data    any
}

func (a *App) render(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	t, ok := a.templates[name]
	if !ok {
		a.serverError(w, r, fmt.Errorf("template %q not found", name))
		return
	}
	v.User = currentUser(r.Context())
	v.Flashes = a.popFlashes(r.Context())
	v.Path = r.URL.Path
	if v.Form == nil {
		v.Form = newForm(nil)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		a.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("web request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
