// Package router maps location fragments to views.
package router

import (
	"regexp"
	"strings"
)

// View identifies one of the two page states.
type View int

const (
	Home View = iota
	ShopDetail
)

func (v View) String() string {
	switch v {
	case ShopDetail:
		return "shop"
	default:
		return "home"
	}
}

// HomeFragment is the canonical fragment of the home view.
const HomeFragment = "#/"

// Route is the result of parsing a fragment.
type Route struct {
	View   View
	ShopID string
}

var shopPattern = regexp.MustCompile(`(?i)^#/shop/([a-z0-9-]+)`)

// Parse maps a fragment such as "#/shop/panificio-rossi" to a route. Anything that
// does not start with the shop pattern, the empty fragment included, is Home.
func Parse(fragment string) Route {
	if m := shopPattern.FindStringSubmatch(fragment); m != nil {
		return Route{View: ShopDetail, ShopID: m[1]}
	}
	return Route{View: Home}
}

// Fragment returns the canonical fragment for r.
func (r Route) Fragment() string {
	if r.View == ShopDetail && r.ShopID != "" {
		return ShopFragment(r.ShopID)
	}
	return HomeFragment
}

// Path returns the server path equivalent of r.
func (r Route) Path() string {
	return FragmentToPath(r.Fragment())
}

// ShopFragment returns "#/shop/<id>".
func ShopFragment(id string) string {
	return "#/shop/" + id
}

// PathToFragment maps a request path to the fragment the browser would carry:
// "/" is "#/", "/shop/x" is "#/shop/x".
func PathToFragment(path string) string {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "#" + path
}

// FragmentToPath is the inverse of PathToFragment.
func FragmentToPath(fragment string) string {
	p := strings.TrimPrefix(fragment, "#")
	if p == "" || !strings.HasPrefix(p, "/") {
		return "/"
	}
	return p
}
