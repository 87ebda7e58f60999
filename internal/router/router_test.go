package router

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     Route
	}{
		{name: "empty", fragment: "", want: Route{View: Home}},
		{name: "root", fragment: "#/", want: Route{View: Home}},
		{name: "section anchor", fragment: "#negozi", want: Route{View: Home}},
		{name: "shop", fragment: "#/shop/panificio-rossi", want: Route{View: ShopDetail, ShopID: "panificio-rossi"}},
		{name: "case insensitive", fragment: "#/SHOP/Abc-9", want: Route{View: ShopDetail, ShopID: "Abc-9"}},
		{name: "prefix match stops at invalid rune", fragment: "#/shop/rossi?x=1", want: Route{View: ShopDetail, ShopID: "rossi"}},
		{name: "missing id", fragment: "#/shop/", want: Route{View: Home}},
		{name: "invalid id", fragment: "#/shop/_rossi", want: Route{View: Home}},
		{name: "no hash", fragment: "/shop/rossi", want: Route{View: Home}},
		{name: "other route", fragment: "#/about", want: Route{View: Home}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Parse(tc.fragment); got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.fragment, got, tc.want)
			}
		})
	}
}

func TestPathFragmentMapping(t *testing.T) {
	t.Parallel()

	if got := PathToFragment("/"); got != "#/" {
		t.Errorf("expected #/, got %s", got)
	}
	if got := PathToFragment("/shop/rossi"); got != "#/shop/rossi" {
		t.Errorf("expected #/shop/rossi, got %s", got)
	}
	if got := PathToFragment(""); got != "#/" {
		t.Errorf("expected #/ for empty path, got %s", got)
	}
	if got := FragmentToPath("#/shop/rossi"); got != "/shop/rossi" {
		t.Errorf("expected /shop/rossi, got %s", got)
	}
	if got := FragmentToPath("#negozi"); got != "/" {
		t.Errorf("expected / for anchors, got %s", got)
	}
	r := Route{View: ShopDetail, ShopID: "rossi"}
	if r.Fragment() != "#/shop/rossi" || r.Path() != "/shop/rossi" {
		t.Errorf("unexpected route mapping: %s %s", r.Fragment(), r.Path())
	}
	if (Route{}).Fragment() != HomeFragment {
		t.Errorf("zero route must be home")
	}
}
