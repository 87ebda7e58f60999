package main

import (
	"html/template"

	"settimohub.it/hub-web/internal/app"
	"settimohub.it/hub-web/internal/catalog"
	"settimohub.it/hub-web/internal/nav"
	"settimohub.it/hub-web/internal/seo"
)

// pageMeta describes the page a snapshot shows, with its JSON-LD blocks.
func (s *site) pageMeta(lang string, snap app.Snapshot) (seo.Meta, []template.JS) {
	brand := s.cfg.Site.Brand
	base := s.cfg.Site.BaseURL
	t := func(key string) string { return s.bundle.T(lang, key) }

	if snap.Shop != nil {
		shop := *snap.Shop
		path := nav.ShopPath(shop.ID)
		meta := seo.Page(brand, base, path, lang, shop.Name, shop.Description).
			WithAlternates(base, path, s.bundle.Supported())
		meta.OG.Type = "business.business"

		locality := ""
		if snap.Municipality != nil {
			locality = snap.Municipality.Name
		}
		crumbs := nav.ShopCrumbs(locality, shop.ID, shop.Name)
		items := make([]seo.BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			label := c.Label
			if c.LabelKey != "" {
				label = t(c.LabelKey)
			}
			items = append(items, seo.BreadcrumbItem{Name: label, Item: seo.Absolute(base, c.Href)})
		}
		return meta, []template.JS{
			template.JS(seo.JSON(seo.LocalBusiness(business(shop, locality, seo.Absolute(base, path))))),
			template.JS(seo.JSON(seo.BreadcrumbList(items))),
		}
	}

	meta := seo.Page(brand, base, "/", lang, t("home.title"), t("home.description")).
		WithAlternates(base, "/", s.bundle.Supported())
	home := seo.Absolute(base, "/")
	return meta, []template.JS{
		template.JS(seo.JSON(seo.Organization(brand, home, seo.Absolute(base, "/assets/img/logo.svg")))),
		template.JS(seo.JSON(seo.WebSite(brand, home, ""))),
	}
}

func business(shop catalog.Shop, locality, url string) seo.Business {
	b := seo.Business{
		Name:        shop.Name,
		Description: shop.Description,
		URL:         url,
		Category:    shop.Category,
		Address:     shop.Address,
		Locality:    locality,
		Phone:       shop.Phone,
		Email:       shop.Email,
		Hours:       shop.Hours,
	}
	for _, p := range shop.Products {
		b.Offers = append(b.Offers, seo.Offer{Name: p.Name, Price: p.Price.Float(), Unit: p.Unit})
	}
	return b
}

// languages lists the language switch links for path.
func (s *site) languages(current, path string) []langLink {
	out := make([]langLink, 0, len(s.bundle.Supported()))
	for _, code := range s.bundle.Supported() {
		out = append(out, langLink{
			Code:   code,
			Label:  s.bundle.T(code, "lang.name"),
			Href:   path + "?hl=" + code,
			Active: code == current,
		})
	}
	return out
}
