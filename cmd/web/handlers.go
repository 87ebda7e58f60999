package main

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"settimohub.it/hub-web/internal/app"
	"settimohub.it/hub-web/internal/content"
	mw "settimohub.it/hub-web/internal/middleware"
	"settimohub.it/hub-web/internal/observability"
	"settimohub.it/hub-web/internal/page"
	"settimohub.it/hub-web/internal/render"
	"settimohub.it/hub-web/internal/router"
	"settimohub.it/hub-web/internal/seo"
)

// controller returns the visitor's controller in the request language. A
// controller whose start failed is still returned so the page renders empty.
func (s *site) controller(w http.ResponseWriter, r *http.Request) (*app.Controller, bool) {
	sess := mw.SessionFromContext(r.Context())
	if sess == nil {
		mw.WriteError(w, r, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	ctrl, err := s.sessions.Get(r.Context(), sess.ID, mw.Lang(r.Context()))
	if ctrl == nil {
		observability.FromContext(r.Context()).Warn("session unavailable", zap.Error(err))
		mw.WriteError(w, r, http.StatusServiceUnavailable, "service unavailable")
		return nil, false
	}
	return ctrl, true
}

// handleHome renders the home view.
func (s *site) handleHome(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	ctrl.Navigate(r.Context(), router.HomeFragment)
	s.renderApp(w, r, ctrl)
}

// handleShop renders a shop detail. Shops missing from the selected
// municipality redirect home.
func (s *site) handleShop(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	fragment := ctrl.Navigate(r.Context(), router.ShopFragment(chi.URLParam(r, "id")))
	if route := router.Parse(fragment); route.View != router.ShopDetail {
		http.Redirect(w, r, route.Path(), http.StatusSeeOther)
		return
	}
	s.renderApp(w, r, ctrl)
}

// handleInfo renders a markdown info page.
func (s *site) handleInfo(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r.Context())
	p, err := s.pages.Get(r.Context(), chi.URLParam(r, "slug"), lang)
	if errors.Is(err, content.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("info page failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "page unavailable")
		return
	}

	title := p.Title
	if p.SEO.Title != "" {
		title = p.SEO.Title
	}
	description := p.Summary
	if p.SEO.Description != "" {
		description = p.SEO.Description
	}
	data := s.baseData(r, lang, r.URL.Path)
	data.Meta = seo.Page(s.cfg.Site.Brand, s.cfg.Site.BaseURL, r.URL.Path, lang, title, description).
		WithAlternates(s.cfg.Site.BaseURL, r.URL.Path, s.bundle.Supported())
	data.Info = &infoData{
		Title:   p.Title,
		Summary: p.Summary,
		HTML:    template.HTML(p.HTML),
	}
	if !p.UpdatedAt.IsZero() {
		data.Info.Updated = p.UpdatedAt.Format("2006-01-02")
	}
	s.render(w, r, data)
}

func (s *site) handleMunicipality(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, c *app.Controller) {
		c.Change(ctx, app.IDMunicipality, r.PostFormValue("comune"))
	})
}

func (s *site) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, c *app.Controller) {
		c.Input(app.IDSearch, r.PostFormValue("q"))
		c.Click(ctx, app.IDSearchButton)
	})
}

func (s *site) handleReset(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, c *app.Controller) {
		c.Click(ctx, app.IDResetButton)
	})
}

func (s *site) handleCategory(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, c *app.Controller) {
		c.SelectCategory(ctx, r.PostFormValue(render.CategoryFieldName))
	})
}

func (s *site) handleAllCategories(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, c *app.Controller) {
		c.Click(ctx, app.IDAllCats)
	})
}

func (s *site) handleMenu(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ctx context.Context, c *app.Controller) {
		c.Click(ctx, app.IDMenuButton)
	})
}

// act runs an interaction against the visitor's controller. htmx requests get
// the re-rendered #app fragment; plain form posts are redirected to the view
// the controller now shows, anchored at any requested scroll target.
func (s *site) act(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, c *app.Controller)) {
	ctrl, ok := s.controller(w, r)
	if !ok {
		return
	}
	fn(r.Context(), ctrl)

	if mw.IsHTMX(r.Context()) {
		body, scroll, scrolled, err := s.renderTree(r, ctrl)
		if err != nil {
			observability.FromContext(r.Context()).Error("render failed", zap.Error(err))
			mw.WriteError(w, r, http.StatusInternalServerError, "render failed")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("HX-Reswap", reswap(scroll, scrolled))
		_, _ = w.Write(body)
		return
	}

	var scroll string
	ctrl.Do(func(surface app.Surface) {
		if d, ok := surface.(*page.Document); ok {
			scroll, _ = d.TakeScroll()
		}
	})
	location := ctrl.Snapshot().Route.Path()
	if strings.HasPrefix(scroll, "#") {
		location += scroll
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// reswap keeps the htmx outerHTML swap and scrolls to the requested target.
func reswap(scroll string, scrolled bool) string {
	switch {
	case !scrolled:
		return "outerHTML"
	case strings.HasPrefix(scroll, "#"):
		return "outerHTML show:" + scroll + ":top"
	default:
		return "outerHTML show:window:top"
	}
}

// renderApp renders the controller's tree inside the full layout.
func (s *site) renderApp(w http.ResponseWriter, r *http.Request, ctrl *app.Controller) {
	body, _, _, err := s.renderTree(r, ctrl)
	if err != nil {
		observability.FromContext(r.Context()).Error("render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	snap := ctrl.Snapshot()
	path := snap.Route.Path()
	data := s.baseData(r, snap.Lang, path)
	data.Meta, data.JSONLD = s.pageMeta(snap.Lang, snap)
	data.Body = template.HTML(body)
	s.render(w, r, data)
}

// renderTree serialises the #app tree with the session CSRF token and takes the
// pending scroll request.
func (s *site) renderTree(r *http.Request, ctrl *app.Controller) ([]byte, string, bool, error) {
	token := ""
	if sess := mw.SessionFromContext(r.Context()); sess != nil {
		token = sess.CSRFToken
	}
	var (
		buf      bytes.Buffer
		scroll   string
		scrolled bool
		err      error
	)
	ctrl.Do(func(surface app.Surface) {
		d, ok := surface.(*page.Document)
		if !ok {
			err = errors.New("surface cannot render")
			return
		}
		d.SetCSRFToken(token)
		scroll, scrolled = d.TakeScroll()
		err = d.Render(&buf)
	})
	return buf.Bytes(), scroll, scrolled, err
}

func (s *site) baseData(r *http.Request, lang, path string) layoutData {
	data := layoutData{
		Lang:      lang,
		Brand:     s.cfg.Site.Brand,
		Languages: s.languages(lang, path),
	}
	if sess := mw.SessionFromContext(r.Context()); sess != nil {
		data.CSRFToken = sess.CSRFToken
	}
	return data
}
