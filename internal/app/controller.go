// Package app holds the session state of one visitor and the controller that
// sequences loading, rendering, filtering and routing on a Surface.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"settimohub.it/hub-web/internal/catalog"
	"settimohub.it/hub-web/internal/dom"
	"settimohub.it/hub-web/internal/filter"
	"settimohub.it/hub-web/internal/links"
	"settimohub.it/hub-web/internal/router"
	"settimohub.it/hub-web/internal/view"
)

// Controller drives one Surface from one Store. All methods are safe for
// concurrent use; event listeners run with the controller lock held.
type Controller struct {
	mu         sync.Mutex
	source     catalog.Source
	newSurface SurfaceFactory
	surface    Surface
	bound      Surface
	store      *Store
	views      view.Builder
	logger     *zap.Logger
	year       int
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for aborted loads.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTranslator sets the message source of the view builders.
func WithTranslator(t view.Translator) Option {
	return func(c *Controller) { c.views.T = t }
}

// WithLinks overrides the outbound link hosts.
func WithLinks(b links.Builder) Option {
	return func(c *Controller) { c.views.Links = b }
}

// WithLang sets the initial language.
func WithLang(lang string) Option {
	return func(c *Controller) {
		if lang != "" {
			c.views.Lang = lang
		}
	}
}

// New returns a controller reading from source and rendering into a surface
// built by newSurface.
func New(source catalog.Source, newSurface SurfaceFactory, opts ...Option) *Controller {
	c := &Controller{
		source:     source,
		newSurface: newSurface,
		store:      NewStore(),
		views:      view.Builder{Lang: "it"},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.surface = newSurface(c.views.Lang)
	return c
}

// Start binds the UI, loads the municipalities, selects the first one, stamps
// the year and routes once. A failed load aborts the sequence.
func (c *Controller) Start(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bindUI()
	if err := c.loadMunicipalities(ctx); err != nil {
		return err
	}
	first := ""
	if list := c.store.Municipalities(); len(list) > 0 {
		first = list[0].ID
	}
	if err := c.selectMunicipality(ctx, first); err != nil {
		return err
	}
	c.year = now.Year()
	c.surface.SetYear(c.year)
	c.route()
	return nil
}

// BindUI attaches the page listeners. Binding the same surface twice is a no-op.
func (c *Controller) BindUI() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindUI()
}

// LoadMunicipalities fetches the municipality list and fills the select control.
func (c *Controller) LoadMunicipalities(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadMunicipalities(ctx)
}

// SelectMunicipality selects id, loads its shops, clears the filters and
// re-renders the category and shop grids. Unknown ids are ignored. A call
// overtaken by a later selection returns nil without touching the state.
func (c *Controller) SelectMunicipality(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectMunicipality(ctx, id)
}

// SelectCategory filters by category the way a category button does. A
// rendered button with that label is clicked; otherwise the filter is set
// directly, which yields no results for an unknown category.
func (c *Controller) SelectCategory(ctx context.Context, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if grid := c.surface.Element(IDCategoryGrid); grid != nil {
		for _, btn := range grid.QueryAll("button") {
			if btn.Value() == category {
				btn.Dispatch(dom.NewEvent(ctx, "click"))
				return
			}
		}
	}
	c.selectCategory(category)
}

// Navigate sets the fragment and routes. It returns the fragment after
// routing, which is "#/" when a shop could not be resolved.
func (c *Controller) Navigate(ctx context.Context, fragment string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.SetFragment(fragment)
	c.route()
	return c.surface.Fragment()
}

// Click dispatches a click on the element with id. It reports whether the
// element exists and the default action was not prevented.
func (c *Controller) Click(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el := c.surface.Element(id)
	if el == nil {
		return false
	}
	return el.Dispatch(dom.NewEvent(ctx, "click"))
}

// Input sets the value of a form control without firing events.
func (c *Controller) Input(id, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el := c.surface.Element(id)
	if el == nil {
		return false
	}
	el.SetValue(value)
	return true
}

// Change sets the value of a form control and dispatches a change event.
func (c *Controller) Change(ctx context.Context, id, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el := c.surface.Element(id)
	if el == nil {
		return false
	}
	el.SetValue(value)
	ev := dom.NewEvent(ctx, "change")
	ev.Value = value
	return el.Dispatch(ev)
}

// KeyDown dispatches a keydown event for key on the element with id.
func (c *Controller) KeyDown(ctx context.Context, id, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el := c.surface.Element(id)
	if el == nil {
		return false
	}
	ev := dom.NewEvent(ctx, "keydown")
	ev.Key = key
	return el.Dispatch(ev)
}

// Lang returns the current language.
func (c *Controller) Lang() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views.Lang
}

// SetLang switches to a fresh surface in lang and repaints it from the stored
// state without reloading data. It reports whether the language changed.
func (c *Controller) SetLang(lang string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lang == "" || lang == c.views.Lang {
		return false
	}
	fragment := c.surface.Fragment()
	c.views.Lang = lang
	c.surface = c.newSurface(lang)
	c.repaint(fragment)
	return true
}

// State returns a copy of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.State()
}

// Snapshot describes what the surface currently shows.
type Snapshot struct {
	Lang         string
	Route        router.Route
	Municipality *catalog.Municipality
	Shop         *catalog.Shop
	Criteria     filter.Criteria
}

// Snapshot returns the current route and the records it shows.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Lang:     c.views.Lang,
		Route:    router.Parse(c.surface.Fragment()),
		Criteria: c.store.Criteria(),
	}
	if sel := c.store.Selected(); sel != nil {
		m := *sel
		s.Municipality = &m
	}
	if s.Route.View == router.ShopDetail {
		if shop, ok := c.store.Shop(s.Route.ShopID); ok {
			s.Shop = &shop
		}
	}
	return s
}

// Do runs fn with the current surface while holding the controller lock.
func (c *Controller) Do(fn func(s Surface)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.surface)
}

func (c *Controller) bindUI() {
	s := c.surface
	if c.bound == s {
		return
	}
	c.bound = s

	if btn := s.Element(IDMenuButton); btn != nil {
		btn.On("click", func(*dom.Event) {
			if menu := c.surface.Element(IDMobileMenu); menu != nil {
				menu.ToggleClass(dom.HiddenClass)
			}
		})
	}

	if body := s.Body(); body != nil {
		body.On("click", func(ev *dom.Event) {
			if ev.Target == nil {
				return
			}
			link := ev.Target.Closest("[" + ScrollAttr + "]")
			if link == nil {
				return
			}
			ev.PreventDefault()
			c.surface.ScrollTo(link.AttrOr(ScrollAttr))
		})
	}

	if btn := s.Element(IDSearchButton); btn != nil {
		btn.On("click", func(*dom.Event) { c.search() })
	}
	if btn := s.Element(IDResetButton); btn != nil {
		btn.On("click", func(*dom.Event) { c.reset() })
	}
	if input := s.Element(IDSearch); input != nil {
		input.On("keydown", func(ev *dom.Event) {
			if ev.Key == "Enter" {
				c.search()
			}
		})
	}
	if sel := s.Element(IDMunicipality); sel != nil {
		sel.On("change", func(ev *dom.Event) {
			id := ev.Value
			if id == "" && ev.Target != nil {
				id = ev.Target.Value()
			}
			if err := c.selectMunicipality(ev.Context(), id); err != nil {
				return
			}
			c.surface.ShowHome()
		})
	}
	if btn := s.Element(IDAllCats); btn != nil {
		btn.On("click", func(*dom.Event) {
			c.store.SetCategoryFilter("")
			c.applyFilters()
		})
	}
}

func (c *Controller) loadMunicipalities(ctx context.Context) error {
	list, err := c.source.Municipalities(ctx)
	if err != nil {
		c.logger.Warn("load municipalities aborted", zap.Error(err))
		return err
	}
	c.store.SetMunicipalities(list)
	c.surface.SetMunicipalityOptions(c.views.MunicipalityOptions(c.store.Municipalities(), c.selectedID()))
	return nil
}

// selectMunicipality must be called with c.mu held. The lock is released while
// the shops are fetched.
func (c *Controller) selectMunicipality(ctx context.Context, id string) error {
	m, ok := c.store.Municipality(id)
	if !ok {
		return nil
	}
	seq := c.store.BeginSelection()

	c.mu.Unlock()
	shops, err := c.source.Shops(ctx, m.ID)
	c.mu.Lock()

	if !c.store.Current(seq) {
		c.logger.Debug("selection superseded", zap.String("municipality", m.ID), zap.Uint64("request", seq))
		return nil
	}
	if err != nil {
		c.logger.Warn("load shops aborted", zap.String("municipality", m.ID), zap.Error(err))
		return err
	}
	c.store.CommitSelection(seq, m, shops)
	c.surface.SetMunicipalityOptions(c.views.MunicipalityOptions(c.store.Municipalities(), m.ID))
	c.surface.SetSearchValue("")
	c.renderCategories()
	c.renderShops()
	return nil
}

func (c *Controller) selectedID() string {
	if sel := c.store.Selected(); sel != nil {
		return sel.ID
	}
	return ""
}

func (c *Controller) renderCategories() {
	sel := c.store.Selected()
	if sel == nil {
		return
	}
	c.surface.RenderCategories(c.views.Categories(sel), func(_ *dom.Event, category string) {
		c.selectCategory(category)
	})
}

func (c *Controller) renderShops() {
	c.surface.RenderShops(c.views.ShopCards(c.store.Shops()), func(ev *dom.Event, shopID string) {
		ev.PreventDefault()
		c.surface.SetFragment(router.ShopFragment(shopID))
		c.route()
	})
	c.applyFilters()
}

// applyFilters reads the search input into the store and filters the rendered cards.
func (c *Controller) applyFilters() int {
	c.store.SetTextFilter(c.surface.SearchValue())
	n := filter.Apply(c.surface.ShopCards(), c.store.Criteria())
	c.surface.SetResultCount(n)
	return n
}

func (c *Controller) search() {
	c.applyFilters()
	c.surface.ScrollTo(ShopsSection)
}

func (c *Controller) reset() {
	c.surface.SetSearchValue("")
	c.store.ClearFilters()
	c.applyFilters()
}

func (c *Controller) selectCategory(category string) {
	c.store.SetCategoryFilter(category)
	c.applyFilters()
	c.surface.ScrollTo(ShopsSection)
}

// route shows the view named by the current fragment. An unknown shop resets
// the fragment to home.
func (c *Controller) route() router.Route {
	r := router.Parse(c.surface.Fragment())
	if r.View == router.ShopDetail {
		if shop, ok := c.store.Shop(r.ShopID); ok {
			c.surface.ShowShop(c.views.Detail(c.store.Selected(), shop))
			c.surface.ScrollTo("")
			return r
		}
		c.logger.Debug("shop not in current selection", zap.String("shop", r.ShopID))
		c.surface.SetFragment(router.HomeFragment)
		r = router.Route{View: router.Home}
	}
	c.surface.ShowHome()
	return r
}

// repaint rebuilds a fresh surface from the stored state.
func (c *Controller) repaint(fragment string) {
	c.bindUI()
	c.surface.SetMunicipalityOptions(c.views.MunicipalityOptions(c.store.Municipalities(), c.selectedID()))
	c.surface.SetSearchValue(c.store.Criteria().Text)
	c.renderCategories()
	c.renderShops()
	if c.year != 0 {
		c.surface.SetYear(c.year)
	}
	c.surface.SetFragment(strings.TrimSpace(fragment))
	c.route()
}
