package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login.html", "list.html", "form.html", "error.html"}

var templateFuncs = template.FuncMap{
	"num": func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	},
}

// parseTemplates returns one template set per page, each layered over the
// shared layout.
func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// page carries what every template needs.
type page struct {
	loc   *i18n.Localizer
	Title string
	Lang  string
	User  *types.User
}

// T translates key for the page locale.
func (p page) T(key string, args ...any) string {
	return p.loc.T(key, args...)
}

func (s *Server) newPage(r *http.Request, titleKey string) page {
	loc := localizer(r)
	return page{loc: loc, Title: loc.T(titleKey), Lang: loc.Tag().String(), User: currentUser(r)}
}

// render executes name into a buffer first so a template error still yields
// a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := s.pages[name]
	if !ok {
		s.logger.Error("unknown template", "name", name)
		http.Error(w, localizer(r).T(i18n.KeyGenericError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("rendering template", "name", name, "error", err)
		http.Error(w, localizer(r).T(i18n.KeyGenericError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	page
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, key string) {
	p := s.newPage(r, "app.title")
	s.render(w, r, status, "error.html", errorPage{page: p, Message: p.T(key)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
