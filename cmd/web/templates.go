package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"settimohub.it/hub-web/internal/i18n"
	"settimohub.it/hub-web/internal/observability"
	"settimohub.it/hub-web/internal/seo"
)

// layoutData feeds templates/layout.tmpl.
type layoutData struct {
	Lang      string
	Brand     string
	Meta      seo.Meta
	JSONLD    []template.JS
	CSRFToken string
	Languages []langLink
	// Body is the rendered application tree for app pages.
	Body template.HTML
	// Info is set on /info pages.
	Info *infoData
}

type infoData struct {
	Title   string
	Summary string
	HTML    template.HTML
	Updated string
}

type langLink struct {
	Code   string
	Label  string
	Href   string
	Active bool
}

func parseTemplates(dir string, bundle *i18n.Bundle) (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"t":   bundle.T,
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func (s *site) templates() (*template.Template, error) {
	if s.devMode {
		return parseTemplates(s.cfg.Site.TemplatesDir, s.bundle)
	}
	if s.tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return s.tmplCache, nil
}

// render executes the base layout into a buffer so template failures become a
// clean 500.
func (s *site) render(w http.ResponseWriter, r *http.Request, data layoutData) {
	t, err := s.templates()
	if err != nil {
		observability.FromContext(r.Context()).Error("template parse failed", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		observability.FromContext(r.Context()).Error("template exec failed", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
