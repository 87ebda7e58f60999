package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
		}
		if it.Item != "" {
			entry["item"] = it.Item
		}
		el = append(el, entry)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Business describes a shop for LocalBusiness markup.
type Business struct {
	Name        string
	Description string
	URL         string
	Category    string
	Address     string
	Locality    string
	Phone       string
	Email       string
	Hours       string
	Offers      []Offer
}

// Offer is one priced product or service.
type Offer struct {
	Name  string
	Price float64
	Unit  string
}

// LocalBusiness returns a LocalBusiness schema with an offer catalog when the
// shop lists products.
func LocalBusiness(b Business) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     b.Name,
	}
	if b.Description != "" {
		m["description"] = b.Description
	}
	if b.URL != "" {
		m["url"] = b.URL
	}
	if b.Phone != "" {
		m["telephone"] = b.Phone
	}
	if b.Email != "" {
		m["email"] = b.Email
	}
	if b.Hours != "" {
		m["openingHours"] = b.Hours
	}
	if b.Category != "" {
		m["additionalType"] = b.Category
	}
	if b.Address != "" || b.Locality != "" {
		addr := map[string]any{"@type": "PostalAddress", "addressCountry": "IT"}
		if b.Address != "" {
			addr["streetAddress"] = b.Address
		}
		if b.Locality != "" {
			addr["addressLocality"] = b.Locality
		}
		m["address"] = addr
	}
	if len(b.Offers) > 0 {
		items := make([]map[string]any, 0, len(b.Offers))
		for _, o := range b.Offers {
			offer := map[string]any{
				"@type":         "Offer",
				"price":         o.Price,
				"priceCurrency": "EUR",
				"itemOffered":   map[string]any{"@type": "Product", "name": o.Name},
			}
			if o.Unit != "" {
				offer["eligibleQuantity"] = map[string]any{"@type": "QuantitativeValue", "unitText": o.Unit}
			}
			items = append(items, offer)
		}
		m["hasOfferCatalog"] = map[string]any{
			"@type":           "OfferCatalog",
			"name":            b.Name,
			"itemListElement": items,
		}
	}
	return m
}
