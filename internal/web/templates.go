package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"tourbook/internal/flow"
	"tourbook/internal/format"
	"tourbook/internal/metrics"
	"tourbook/internal/models"
	"tourbook/internal/nav"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = []string{"catalog", "detail", "booking", "confirmation"}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"currency":  format.Currency,
		"date":      format.Date,
		"guests":    format.Guests,
		"quoteLine": format.QuoteLine,
		"tourPath":  nav.TourPath,
		"missing": func(missing []flow.Field, name string) bool {
			for _, f := range missing {
				if string(f) == name {
					return true
				}
			}
			return false
		},
		"name": func(e *models.Experience) string {
			if e == nil {
				return ""
			}
			return e.DisplayName()
		},
	}
}

// parsePages builds one template set per page, each sharing the base layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t, err := template.New(page).Funcs(templateFuncs()).ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		pages[page] = t
	}
	return pages, nil
}

// render executes the base layout for page into a buffer so a template error
// never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, status int, data any) {
	t, ok := s.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error().Err(err).Str("page", page).Msg("template exec error")
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}

	metrics.IncPageView(page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
