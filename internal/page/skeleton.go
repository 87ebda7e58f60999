package page

import (
	"settimohub.it/hub-web/internal/app"
	"settimohub.it/hub-web/internal/dom"
)

const (
	panelClass = "bg-white/70 backdrop-blur border border-slate-200 rounded-2xl shadow-sm p-4"
	inputClass = "w-full rounded-xl border border-slate-300 px-4 py-2"
	btnClass   = "px-4 py-2 rounded-xl bg-emerald-600 text-white"
	ghostClass = "px-4 py-2 rounded-xl border border-slate-300"
)

// form builds a POST form that also works through htmx: the server answers an
// htmx request with the re-rendered #app.
func form(id, action string, children ...any) *dom.Element {
	attrs := dom.Attrs{
		"method":    "post",
		"action":    action,
		"hx-post":   action,
		"hx-target": "#" + RootID,
		"hx-swap":   "outerHTML",
	}
	if id != "" {
		attrs["id"] = id
	}
	kids := append([]any{dom.El("input", dom.Attrs{"type": "hidden", "name": CSRFField, "value": ""})}, children...)
	return dom.El("form", attrs, kids...)
}

func label(forID, text string) *dom.Element {
	return dom.El("label", dom.Attrs{"for": forID, "class": "block text-sm font-medium mb-1"}, text)
}

func (d *Document) build() *dom.Element {
	return dom.El("div", dom.Attrs{"id": RootID, "class": "min-h-screen flex flex-col"},
		d.header(),
		dom.El("main", dom.Attrs{"class": "flex-1 max-w-6xl mx-auto w-full px-4 py-8"},
			d.homeView(),
			d.shopView(),
		),
		d.footer(),
	)
}

func (d *Document) header() *dom.Element {
	return dom.El("header", dom.Attrs{"class": "border-b border-slate-200 bg-white/80"},
		dom.El("div", dom.Attrs{"class": "max-w-6xl mx-auto px-4 py-3 flex items-center justify-between"},
			dom.El("a", dom.Attrs{"href": "/", "class": "font-bold text-emerald-700"}, d.t("brand.name")),
			dom.El("nav", dom.Attrs{"class": "hidden md:flex gap-6 text-sm"}, d.navLinks("hover:text-emerald-700")),
			form("", "/menu",
				dom.El("button", dom.Attrs{
					"id":         app.IDMenuButton,
					"type":       "submit",
					"class":      "md:hidden " + ghostClass,
					"aria-label": d.t("menu.toggle"),
				}, d.t("menu.toggle")),
			),
		),
		dom.El("nav", dom.Attrs{"id": app.IDMobileMenu, "class": "md:hidden hidden px-4 pb-3 flex flex-col gap-2 text-sm"},
			d.navLinks("py-1"),
		),
	)
}

func (d *Document) homeView() *dom.Element {
	return dom.El("section", dom.Attrs{"id": IDHomeView},
		dom.El("div", dom.Attrs{"class": "mb-8"},
			dom.El("h1", dom.Attrs{"class": "text-3xl font-bold"}, d.t("hero.title")),
			dom.El("p", dom.Attrs{"class": "text-slate-600 mt-2"}, d.t("hero.subtitle")),
		),
		dom.El("div", dom.Attrs{"class": "grid gap-4 md:grid-cols-3 mb-10"},
			form(IDSearchForm, "/cerca",
				label(app.IDSearch, d.t("search.label")),
				dom.El("div", dom.Attrs{"class": "flex gap-2"},
					dom.El("input", dom.Attrs{
						"id":          app.IDSearch,
						"name":        "q",
						"type":        "search",
						"value":       "",
						"placeholder": d.t("search.placeholder"),
						"class":       inputClass,
					}),
					dom.El("button", dom.Attrs{"id": app.IDSearchButton, "type": "submit", "class": btnClass}, d.t("search.button")),
					dom.El("button", dom.Attrs{
						"id":         app.IDResetButton,
						"type":       "submit",
						"formaction": "/reset",
						"hx-post":    "/reset",
						"class":      ghostClass,
					}, d.t("search.reset")),
				),
			),
			form("comuneForm", "/comune",
				label(app.IDMunicipality, d.t("municipality.label")),
				dom.El("div", dom.Attrs{"class": "flex gap-2"},
					dom.El("select", dom.Attrs{
						"id":         app.IDMunicipality,
						"name":       "comune",
						"class":      inputClass,
						"hx-post":    "/comune",
						"hx-trigger": "change",
						"hx-target":  "#" + RootID,
						"hx-swap":    "outerHTML",
					}),
					dom.El("button", dom.Attrs{"type": "submit", "class": ghostClass}, d.t("municipality.submit")),
				),
			),
		),
		dom.El("section", dom.Attrs{"id": "categorie", "class": "mb-10"},
			dom.El("div", dom.Attrs{"class": "flex items-center justify-between mb-4"},
				dom.El("h2", dom.Attrs{"class": "text-xl font-semibold"}, d.t("categories.title")),
				form("", "/categorie/tutte",
					dom.El("button", dom.Attrs{"id": app.IDAllCats, "type": "submit", "class": "text-sm text-emerald-700"}, d.t("categories.all")),
				),
			),
			form("catForm", "/categoria",
				dom.El("div", dom.Attrs{"id": app.IDCategoryGrid, "class": "grid grid-cols-2 md:grid-cols-4 gap-3"}),
			),
		),
		dom.El("section", dom.Attrs{"id": "negozi"},
			dom.El("div", dom.Attrs{"class": "flex items-baseline justify-between mb-4"},
				dom.El("h2", dom.Attrs{"class": "text-xl font-semibold"}, d.t("shops.title")),
				dom.El("p", dom.Attrs{"id": IDShopCount, "class": "text-sm text-slate-600", "aria-live": "polite"}),
			),
			dom.El("div", dom.Attrs{"id": app.IDShopsGrid, "class": "grid sm:grid-cols-2 lg:grid-cols-3 gap-4"}),
		),
	)
}

func (d *Document) shopView() *dom.Element {
	field := func(labelKey, id string) *dom.Element {
		return dom.El("div", nil,
			dom.El("dt", dom.Attrs{"class": "text-xs uppercase text-slate-500"}, d.t(labelKey)),
			dom.El("dd", dom.Attrs{"id": id, "class": "text-sm"}),
		)
	}
	return dom.El("section", dom.Attrs{"id": IDShopView, "class": "hidden"},
		dom.El("nav", dom.Attrs{"class": "text-sm text-slate-600 mb-4", "aria-label": "breadcrumb"},
			dom.El("a", dom.Attrs{"href": "/", "class": "hover:underline"}, d.t("nav.home")),
			" › ",
			dom.El("a", dom.Attrs{"id": IDBcComune, "href": "/#negozi", "class": "hover:underline"}),
			" › ",
			dom.El("span", dom.Attrs{"id": IDBcShop, "class": "font-medium text-slate-900"}),
		),
		dom.El("div", dom.Attrs{"class": panelClass + " mb-8"},
			dom.El("div", dom.Attrs{"class": "flex flex-wrap items-center gap-3"},
				dom.El("h1", dom.Attrs{"id": IDShopTitle, "class": "text-2xl font-bold"}),
				dom.El("span", dom.Attrs{
					"id":         IDShopCat,
					"class":      "inline-flex items-center px-3 py-1 rounded-full bg-slate-100 text-slate-700 text-xs",
					"aria-label": d.t("shop.category"),
				}),
			),
			dom.El("p", dom.Attrs{"id": IDShopDesc, "class": "text-slate-600 mt-2"}),
			dom.El("dl", dom.Attrs{"class": "grid sm:grid-cols-2 gap-3 mt-4"},
				field("shop.address", IDShopAddr),
				field("shop.hours", IDShopHours),
				field("shop.phone", IDShopPhone),
				field("shop.email", IDShopEmail),
			),
			dom.El("div", dom.Attrs{"class": "flex flex-wrap gap-3 mt-4"},
				dom.El("a", dom.Attrs{"id": IDShopWhats, "href": "#", "target": "_blank", "rel": "noopener", "class": btnClass}, d.t("shop.whatsapp")),
				dom.El("a", dom.Attrs{"id": IDShopMaps, "href": "#", "target": "_blank", "rel": "noopener", "class": ghostClass}, d.t("shop.maps")),
			),
		),
		dom.El("h2", dom.Attrs{"class": "text-xl font-semibold mb-4"}, d.t("shop.products")),
		dom.El("div", dom.Attrs{"id": IDProdGrid, "class": "grid sm:grid-cols-2 lg:grid-cols-3 gap-4"}),
		dom.El("p", dom.Attrs{"class": "mt-8"},
			dom.El("a", dom.Attrs{"href": "/#negozi", "class": "text-emerald-700 hover:underline"}, d.t("shop.back")),
		),
	)
}

func (d *Document) footer() *dom.Element {
	return dom.El("footer", dom.Attrs{"class": "border-t border-slate-200 py-6 text-center text-sm text-slate-600"},
		"© ",
		dom.El("span", dom.Attrs{"id": app.IDYear}),
		" "+d.t("brand.name")+" · "+d.t("footer.rights"),
	)
}
