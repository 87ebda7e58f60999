package nav

import (
    "strings"
)

// Item represents a top-level navigation item.
type Item struct {
    Href     string // e.g. "/#negozi"
    Scroll   string // in-page target for smooth scrolling, e.g. "#negozi"
    LabelKey string // i18n key, e.g. "nav.shops"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
    Href     string
    Scroll   string
    LabelKey string
    Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
    Href     string
    LabelKey string
    Label    string
    Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
    {Href: "/#categorie", Scroll: "#categorie", LabelKey: "nav.categories"},
    {Href: "/#negozi", Scroll: "#negozi", LabelKey: "nav.shops"},
    {Href: "/info/chi-siamo", LabelKey: "nav.info"},
}

// Build renders navigation items with active state given the current path.
// In-page anchors are active only on the home page.
func Build(currentPath string) []RenderedItem {
    if currentPath == "" {
        currentPath = "/"
    }
    items := make([]RenderedItem, 0, len(Main))
    for _, it := range Main {
        items = append(items, RenderedItem{
            Href:     it.Href,
            Scroll:   it.Scroll,
            LabelKey: it.LabelKey,
            Active:   isActive(it.Href, currentPath),
        })
    }
    return items
}

func isActive(href, currentPath string) bool {
    if i := strings.IndexByte(href, '#'); i != -1 {
        return currentPath == "/" && href[:i] == "/"
    }
    // match exact or prefix boundary: "/info" or "/info/..."
    return currentPath == href || strings.HasPrefix(currentPath, href+"/")
}

// ShopPath returns the server path of a shop detail page.
func ShopPath(shopID string) string {
    return "/shop/" + shopID
}

// ShopCrumbs builds Home › municipality › shop for a shop detail page.
// The municipality crumb links back to the shop list of the home page.
func ShopCrumbs(municipality, shopID, shopName string) []Crumb {
    crumbs := []Crumb{{Href: "/", LabelKey: "nav.home"}}
    if municipality != "" {
        crumbs = append(crumbs, Crumb{Href: "/#negozi", Label: municipality})
    }
    label := shopName
    if label == "" {
        label = titleFromSegment(shopID)
    }
    crumbs = append(crumbs, Crumb{Href: ShopPath(shopID), Label: label, Active: true})
    return crumbs
}

func titleFromSegment(seg string) string {
    if seg == "" {
        return seg
    }
    // replace hyphens/underscores with spaces and capitalize first letter
    s := strings.ReplaceAll(seg, "-", " ")
    s = strings.ReplaceAll(s, "_", " ")
    r := []rune(s)
    r[0] = toUpper(r[0])
    return string(r)
}

func toUpper(r rune) rune {
    // ASCII only is sufficient for slugs here
    if r >= 'a' && r <= 'z' {
        return r - ('a' - 'A')
    }
    return r
}
