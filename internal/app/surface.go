package app

import (
	"settimohub.it/hub-web/internal/dom"
	"settimohub.it/hub-web/internal/view"
)

// Element ids the controller binds to.
const (
	IDMenuButton   = "menuBtn"
	IDMobileMenu   = "mobileMenu"
	IDSearch       = "search"
	IDSearchButton = "btnSearch"
	IDResetButton  = "btnReset"
	IDMunicipality = "comuneSelect"
	IDAllCats      = "btnAllCats"
	IDCategoryGrid = "catGrid"
	IDShopsGrid    = "shopsGrid"
	IDYear         = "year"
)

// ShopsSection is the scroll target of search and category actions.
const ShopsSection = "#negozi"

// ScrollAttr marks links that scroll to the selector in their value.
const ScrollAttr = "data-scroll"

// Surface is the document the controller renders into. Event listeners are
// attached to its elements; the surface itself decides how view models are
// turned into elements.
type Surface interface {
	// Element returns the element with id, or nil.
	Element(id string) *dom.Element
	// Body is the root delegated listeners are attached to.
	Body() *dom.Element

	SetMunicipalityOptions(opts []view.Option)
	RenderCategories(cats []view.Category, onSelect func(ev *dom.Event, category string))
	RenderShops(cards []view.ShopCard, onOpen func(ev *dom.Event, shopID string))
	// ShopCards returns the rendered shop cards the filter works on.
	ShopCards() []*dom.Element
	SetResultCount(n int)

	SearchValue() string
	SetSearchValue(v string)

	ShowHome()
	ShowShop(d view.ShopDetail)
	// ScrollTo records a scroll request; "" means the top of the page.
	ScrollTo(selector string)
	SetYear(year int)

	Fragment() string
	SetFragment(fragment string)
}

// SurfaceFactory builds an empty surface for a language.
type SurfaceFactory func(lang string) Surface
