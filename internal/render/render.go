// Package render builds the repeated pieces of the page (category buttons, shop
// and product cards) from view models.
package render

import (
	"settimohub.it/hub-web/internal/dom"
	"settimohub.it/hub-web/internal/filter"
	"settimohub.it/hub-web/internal/view"
)

const (
	cardClass    = "bg-white/70 backdrop-blur border border-slate-200 rounded-2xl shadow-sm p-4"
	chipClass    = "inline-flex items-center px-3 py-1 rounded-full bg-slate-100 text-slate-700 text-xs"
	primaryClass = "px-3 py-1.5 rounded-lg bg-emerald-600 text-white"
)

// CategoryFieldName is the form field a category button submits.
const CategoryFieldName = "c"

// Chip renders a small rounded label.
func Chip(text string) *dom.Element {
	return dom.El("span", dom.Attrs{"class": chipClass}, text)
}

// Option renders one <option> of the municipality select.
func Option(o view.Option) *dom.Element {
	return dom.El("option", dom.Attrs{"value": o.Value, "selected": o.Selected}, o.Label)
}

// CategoryButton renders a category button. It submits its label as the
// category field so it works without scripting; onClick may be nil.
func CategoryButton(c view.Category, onClick dom.Handler) *dom.Element {
	return dom.El("button", dom.Attrs{
		"type":    "submit",
		"name":    CategoryFieldName,
		"value":   c.Label,
		"class":   cardClass + " text-left hover:shadow-md transition-shadow",
		"data":    map[string]string{"role": "category"},
		"onClick": handlerOrNil(onClick),
	},
		dom.El("p", dom.Attrs{"class": "text-sm font-semibold"}, c.Label),
		dom.El("p", dom.Attrs{"class": "text-xs text-slate-600"}, c.Caption),
	)
}

// ShopCard renders a shop card. The filter engine reads its data-name and
// data-category attributes. onOpen, when set, is called with the shop id on a click
// of the open control.
func ShopCard(c view.ShopCard, onOpen func(ev *dom.Event, shopID string)) *dom.Element {
	open := dom.El("a", dom.Attrs{
		"href":  c.Href,
		"class": primaryClass,
		"data":  map[string]string{"role": "open"},
	}, c.OpenLabel)
	if onOpen != nil {
		id := c.ID
		open.On("click", func(ev *dom.Event) { onOpen(ev, id) })
	}
	return dom.El("article", dom.Attrs{
		"class": cardClass,
		"data": map[string]string{
			filter.CategoryKey: c.Category,
			filter.NameKey:     c.SearchName,
			"id":               c.ID,
		},
	},
		dom.El("div", dom.Attrs{"class": "aspect-video rounded-xl bg-gradient-to-br from-emerald-100 to-emerald-50 border mb-3"}),
		dom.El("h3", dom.Attrs{"class": "font-semibold"}, c.Name),
		dom.El("p", dom.Attrs{"class": "text-sm text-slate-600"}, c.Description),
		dom.El("div", dom.Attrs{"class": "mt-3 flex items-center justify-between text-xs"},
			Chip(c.Category),
			open,
		),
	)
}

// ProductCard renders a product with its price and a WhatsApp inquiry link.
func ProductCard(p view.ProductCard) *dom.Element {
	return dom.El("article", dom.Attrs{"class": cardClass},
		dom.El("div", dom.Attrs{"class": "aspect-video rounded-xl bg-gradient-to-br from-slate-100 to-slate-50 border mb-3"}),
		dom.El("h3", dom.Attrs{"class": "font-semibold"}, p.Name),
		dom.El("p", dom.Attrs{"class": "text-sm text-slate-600"}, p.Unit),
		dom.El("div", dom.Attrs{"class": "mt-3 flex items-center justify-between text-sm"},
			dom.El("span", dom.Attrs{"class": "font-semibold", "data": map[string]string{"role": "price"}}, p.Price),
			dom.El("a", dom.Attrs{
				"class":  "px-3 py-2 rounded-lg bg-emerald-600 text-white text-sm",
				"target": "_blank",
				"rel":    "noopener",
				"href":   p.InquiryHref,
			}, p.WriteLabel),
		),
	)
}

// EmptyProducts renders the notice shown when a shop lists no products.
func EmptyProducts(msg string) *dom.Element {
	return dom.El("div", dom.Attrs{"class": "text-sm text-slate-600", "data": map[string]string{"role": "empty"}}, msg)
}

// a nil Handler stored in an interface is not nil, so it is dropped explicitly.
func handlerOrNil(h dom.Handler) any {
	if h == nil {
		return nil
	}
	return h
}
