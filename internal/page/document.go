// Package page builds the document skeleton of the directory and renders view
// models into it. A Document is the Surface an app.Controller drives.
package page

import (
	"io"
	"strconv"

	"settimohub.it/hub-web/internal/app"
	"settimohub.it/hub-web/internal/dom"
	"settimohub.it/hub-web/internal/nav"
	"settimohub.it/hub-web/internal/render"
	"settimohub.it/hub-web/internal/router"
	"settimohub.it/hub-web/internal/view"
)

// RootID is the id of the element wrapping the whole document.
const RootID = "app"

// CSRFField is the name of the hidden token input carried by every form.
const CSRFField = "csrf_token"

// Element ids filled by ShowShop and SetResultCount.
const (
	IDHomeView   = "homeView"
	IDShopView   = "shopView"
	IDShopCount  = "shopCount"
	IDBcComune   = "bcComune"
	IDBcShop     = "bcShop"
	IDShopTitle  = "shopTitle"
	IDShopCat    = "shopCat"
	IDShopDesc   = "shopDesc"
	IDShopAddr   = "shopAddr"
	IDShopHours  = "shopHours"
	IDShopPhone  = "shopPhone"
	IDShopEmail  = "shopEmail"
	IDShopWhats  = "shopWhats"
	IDShopMaps   = "shopMaps"
	IDProdGrid   = "prodGrid"
	IDSearchForm = "searchForm"
)

// Document is a headless page. It is not safe for concurrent use; the
// controller that owns it serialises access.
type Document struct {
	tr       view.Translator
	lang     string
	root     *dom.Element
	byID     map[string]*dom.Element
	fragment string
	scroll   string
	scrolled bool
}

var _ app.Surface = (*Document)(nil)

// New builds the skeleton in lang.
func New(t view.Translator, lang string) *Document {
	d := &Document{tr: t, lang: lang, fragment: router.HomeFragment}
	d.root = d.build()
	d.index()
	return d
}

// Factory returns an app.SurfaceFactory producing documents.
func Factory(t view.Translator) app.SurfaceFactory {
	return func(lang string) app.Surface { return New(t, lang) }
}

// Lang returns the document language.
func (d *Document) Lang() string { return d.lang }

// Root returns the element wrapping the document.
func (d *Document) Root() *dom.Element { return d.root }

// Element returns the element with id, or nil.
func (d *Document) Element(id string) *dom.Element {
	if id == RootID {
		return d.root
	}
	if e, ok := d.byID[id]; ok && e.ID() == id {
		return e
	}
	return d.root.ByID(id)
}

// Body is the root element.
func (d *Document) Body() *dom.Element { return d.root }

// SetMunicipalityOptions replaces the options of the municipality select.
func (d *Document) SetMunicipalityOptions(opts []view.Option) {
	sel := d.Element(app.IDMunicipality)
	if sel == nil {
		return
	}
	sel.Clear()
	for _, o := range opts {
		sel.Append(render.Option(o))
	}
}

// RenderCategories replaces the category grid.
func (d *Document) RenderCategories(cats []view.Category, onSelect func(ev *dom.Event, category string)) {
	grid := d.Element(app.IDCategoryGrid)
	if grid == nil {
		return
	}
	grid.Clear()
	for _, c := range cats {
		label := c.Label
		var h dom.Handler
		if onSelect != nil {
			h = func(ev *dom.Event) { onSelect(ev, label) }
		}
		grid.Append(render.CategoryButton(c, h))
	}
}

// RenderShops replaces the shop grid.
func (d *Document) RenderShops(cards []view.ShopCard, onOpen func(ev *dom.Event, shopID string)) {
	grid := d.Element(app.IDShopsGrid)
	if grid == nil {
		return
	}
	grid.Clear()
	for _, c := range cards {
		grid.Append(render.ShopCard(c, onOpen))
	}
}

// ShopCards returns the rendered shop cards.
func (d *Document) ShopCards() []*dom.Element {
	grid := d.Element(app.IDShopsGrid)
	if grid == nil {
		return nil
	}
	return grid.QueryAll("article")
}

// SetResultCount updates the results counter.
func (d *Document) SetResultCount(n int) {
	if el := d.Element(IDShopCount); el != nil {
		el.SetText(d.tf("shops.count", n))
		el.SetData("count", strconv.Itoa(n))
	}
}

// SearchValue returns the raw search input.
func (d *Document) SearchValue() string {
	if el := d.Element(app.IDSearch); el != nil {
		return el.Value()
	}
	return ""
}

// SetSearchValue sets the search input.
func (d *Document) SetSearchValue(v string) {
	if el := d.Element(app.IDSearch); el != nil {
		el.SetValue(v)
	}
}

// ShowHome shows the home view and hides the detail view.
func (d *Document) ShowHome() {
	d.setHidden(IDShopView, true)
	d.setHidden(IDHomeView, false)
}

// ShowShop fills and shows the detail view.
func (d *Document) ShowShop(s view.ShopDetail) {
	d.setHidden(IDHomeView, true)
	d.setHidden(IDShopView, false)

	d.setText(IDBcComune, s.MunicipalityName)
	d.setText(IDBcShop, s.Name)
	d.setText(IDShopTitle, s.Name)
	d.setText(IDShopDesc, s.Description)
	d.setText(IDShopAddr, s.Address)
	d.setText(IDShopHours, s.Hours)
	d.setText(IDShopPhone, s.Phone)
	d.setText(IDShopEmail, s.Email)
	d.setText(IDShopCat, s.Category)

	if a := d.Element(IDShopWhats); a != nil {
		a.SetAttr("href", s.WhatsAppHref)
	}
	if a := d.Element(IDShopMaps); a != nil {
		a.SetAttr("href", s.MapsHref)
	}

	grid := d.Element(IDProdGrid)
	if grid == nil {
		return
	}
	grid.Clear()
	if len(s.Products) == 0 {
		grid.Append(render.EmptyProducts(s.EmptyMessage))
		return
	}
	for _, p := range s.Products {
		grid.Append(render.ProductCard(p))
	}
}

// ScrollTo records a scroll request; "" is the top of the page.
func (d *Document) ScrollTo(selector string) {
	d.scroll = selector
	d.scrolled = true
}

// TakeScroll returns and clears the pending scroll request.
func (d *Document) TakeScroll() (string, bool) {
	s, ok := d.scroll, d.scrolled
	d.scroll, d.scrolled = "", false
	return s, ok
}

// SetYear stamps the footer year.
func (d *Document) SetYear(year int) {
	d.setText(app.IDYear, strconv.Itoa(year))
}

// Fragment returns the current location fragment.
func (d *Document) Fragment() string { return d.fragment }

// SetFragment sets the location fragment.
func (d *Document) SetFragment(fragment string) {
	if fragment == "" {
		fragment = router.HomeFragment
	}
	d.fragment = fragment
}

// SetCSRFToken fills the token input of every form.
func (d *Document) SetCSRFToken(token string) {
	for _, in := range d.root.QueryAll("input[name=" + CSRFField + "]") {
		in.SetValue(token)
	}
}

// Render writes the document markup.
func (d *Document) Render(w io.Writer) error {
	return d.root.Render(w)
}

// HTML returns the document markup.
func (d *Document) HTML() string {
	return d.root.HTML()
}

func (d *Document) setHidden(id string, hidden bool) {
	if el := d.Element(id); el != nil {
		el.SetClass(dom.HiddenClass, hidden)
	}
}

func (d *Document) setText(id, text string) {
	if el := d.Element(id); el != nil {
		el.SetText(text)
	}
}

func (d *Document) t(key string) string {
	if d.tr == nil {
		return key
	}
	return d.tr.T(d.lang, key)
}

func (d *Document) tf(key string, args ...any) string {
	if d.tr == nil {
		return key
	}
	return d.tr.Tf(d.lang, key, args...)
}

func (d *Document) index() {
	d.byID = map[string]*dom.Element{}
	for _, e := range d.root.QueryAll("[id]") {
		d.byID[e.ID()] = e
	}
}

// navLinks renders the main navigation; in-page targets scroll instead of navigating.
func (d *Document) navLinks(class string) []*dom.Element {
	items := nav.Build("/")
	out := make([]*dom.Element, 0, len(items))
	for _, it := range items {
		attrs := dom.Attrs{"href": it.Href, "class": class}
		if it.Scroll != "" {
			attrs[app.ScrollAttr] = it.Scroll
		}
		out = append(out, dom.El("a", attrs, d.t(it.LabelKey)))
	}
	return out
}
