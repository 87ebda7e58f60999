// Package view builds the data the renderer needs from catalog values. Builders
// are pure: they never touch a document.
package view

import (
	"strings"

	"settimohub.it/hub-web/internal/catalog"
	"settimohub.it/hub-web/internal/format"
	"settimohub.it/hub-web/internal/links"
	"settimohub.it/hub-web/internal/nav"
)

// Translator resolves message keys. *i18n.Bundle satisfies it.
type Translator interface {
	T(lang, key string) string
	Tf(lang, key string, args ...any) string
}

// Option is one entry of the municipality select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Category is a category button.
type Category struct {
	Label   string
	Caption string
}

// ShopCard holds what a shop card shows and the attributes the filter reads.
type ShopCard struct {
	ID          string
	Name        string
	SearchName  string
	Description string
	Category    string
	Href        string
	OpenLabel   string
}

// ProductCard is one entry of the shop's product grid.
type ProductCard struct {
	Name        string
	Unit        string
	Price       string
	InquiryHref string
	WriteLabel  string
}

// ShopDetail fills the detail view.
type ShopDetail struct {
	ShopID           string
	MunicipalityName string
	Name             string
	Description      string
	Category         string
	Address          string
	Hours            string
	Phone            string
	Email            string
	WhatsAppHref     string
	MapsHref         string
	Products         []ProductCard
	EmptyMessage     string
	Breadcrumbs      []nav.Crumb
}

// Builder turns catalog values into view models for one language.
type Builder struct {
	T     Translator
	Lang  string
	Links links.Builder
}

func (b Builder) t(key string) string {
	if b.T == nil {
		return key
	}
	return b.T.T(b.Lang, key)
}

func (b Builder) tf(key string, args ...any) string {
	if b.T == nil {
		return key
	}
	return b.T.Tf(b.Lang, key, args...)
}

// contact returns the link builder with its greeting in the builder language.
func (b Builder) contact() links.Builder {
	lb := b.Links
	if b.T != nil {
		if g := b.T.T(b.Lang, "msg.greeting"); g != "" && g != "msg.greeting" {
			lb.Greeting = g
		}
	}
	return lb
}

// MunicipalityOptions lists one option per municipality, value=id and label=name.
func (b Builder) MunicipalityOptions(list []catalog.Municipality, selectedID string) []Option {
	out := make([]Option, 0, len(list))
	for _, m := range list {
		out = append(out, Option{Value: m.ID, Label: m.Name, Selected: m.ID == selectedID})
	}
	return out
}

// Categories returns the category buttons of m; nil yields none.
func (b Builder) Categories(m *catalog.Municipality) []Category {
	if m == nil {
		return nil
	}
	caption := b.t("category.discover")
	out := make([]Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		out = append(out, Category{Label: c, Caption: caption})
	}
	return out
}

// ShopCards returns one card per shop, in list order.
func (b Builder) ShopCards(shops []catalog.Shop) []ShopCard {
	open := b.t("card.open")
	out := make([]ShopCard, 0, len(shops))
	for _, s := range shops {
		out = append(out, ShopCard{
			ID:          s.ID,
			Name:        s.Name,
			SearchName:  strings.ToLower(s.Name),
			Description: s.Description,
			Category:    s.Category,
			Href:        nav.ShopPath(s.ID),
			OpenLabel:   open,
		})
	}
	return out
}

// Products returns the product cards of shop. Inquiry links use the shop phone,
// not the WhatsApp handle.
func (b Builder) Products(shop catalog.Shop) []ProductCard {
	write := b.t("product.write")
	contact := b.contact()
	out := make([]ProductCard, 0, len(shop.Products))
	for _, p := range shop.Products {
		msg := b.tf("msg.product_inquiry", p.Name, p.Unit)
		out = append(out, ProductCard{
			Name:        p.Name,
			Unit:        p.Unit,
			Price:       format.Euro(p.Price.Float(), b.Lang),
			InquiryHref: contact.Messaging(strings.TrimSpace(shop.Phone), msg),
			WriteLabel:  write,
		})
	}
	return out
}

// Detail builds the detail view of shop inside municipality (which may be nil).
func (b Builder) Detail(m *catalog.Municipality, shop catalog.Shop) ShopDetail {
	municipality := ""
	if m != nil {
		municipality = m.Name
	}
	contact := b.contact()
	d := ShopDetail{
		ShopID:           shop.ID,
		MunicipalityName: municipality,
		Name:             shop.Name,
		Description:      shop.Description,
		Category:         shop.Category,
		Address:          shop.Address,
		Hours:            shop.Hours,
		Phone:            shop.Phone,
		Email:            shop.Email,
		WhatsAppHref:     contact.Messaging(shop.ContactNumber(), b.tf("msg.shop_inquiry", shop.Name)),
		MapsHref:         contact.Map(shop.Address),
		Products:         b.Products(shop),
		Breadcrumbs:      nav.ShopCrumbs(municipality, shop.ID, shop.Name),
	}
	if len(d.Products) == 0 {
		d.EmptyMessage = b.t("products.empty")
	}
	return d
}
