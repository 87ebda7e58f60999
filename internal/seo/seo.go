package seo

import (
	"net/url"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	Locale      string
	SiteName    string
}

type Twitter struct {
	Card  string
	Title string
}

// Alternate is one hreflang variant of the current page.
type Alternate struct {
	Lang string
	Href string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
}

// Page fills the common fields of a page's metadata. path is site-relative.
func Page(brand, baseURL, path, lang, title, description string) Meta {
	full := brand
	if title != "" && title != brand {
		full = title + " · " + brand
	}
	canonical := Absolute(baseURL, path)
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Type:        "website",
			URL:         canonical,
			Locale:      ogLocale(lang),
			SiteName:    brand,
		},
		Twitter: Twitter{Card: "summary", Title: full},
	}
}

// WithAlternates adds an hreflang link per language using the ?hl= switch.
func (m Meta) WithAlternates(baseURL, path string, langs []string) Meta {
	m.Alternates = make([]Alternate, 0, len(langs))
	for _, lang := range langs {
		u := Absolute(baseURL, path)
		if parsed, err := url.Parse(u); err == nil {
			q := parsed.Query()
			q.Set("hl", lang)
			parsed.RawQuery = q.Encode()
			u = parsed.String()
		}
		m.Alternates = append(m.Alternates, Alternate{Lang: lang, Href: u})
	}
	return m
}

// Absolute joins baseURL and a site path. An empty base leaves the path relative.
func Absolute(baseURL, path string) string {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}

func ogLocale(lang string) string {
	switch lang {
	case "it":
		return "it_IT"
	case "en":
		return "en_GB"
	case "":
		return ""
	default:
		return lang
	}
}
