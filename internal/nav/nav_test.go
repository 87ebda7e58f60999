package nav

import "testing"

func TestBuildActiveState(t *testing.T) {
    items := Build("/")
    if len(items) != len(Main) {
        t.Fatalf("expected %d items, got %d", len(Main), len(items))
    }
    if !items[0].Active || !items[1].Active {
        t.Fatalf("expected in-page anchors active on home: %+v", items)
    }
    if items[2].Active {
        t.Fatalf("info link must not be active on home")
    }

    items = Build("/info/chi-siamo")
    if items[0].Active || !items[2].Active {
        t.Fatalf("unexpected active state on info page: %+v", items)
    }
}

func TestShopCrumbs(t *testing.T) {
    crumbs := ShopCrumbs("Settimo Torinese", "panificio-rossi", "Panificio Rossi")
    if len(crumbs) != 3 {
        t.Fatalf("expected 3 crumbs, got %d", len(crumbs))
    }
    if crumbs[0].LabelKey != "nav.home" || crumbs[0].Href != "/" {
        t.Errorf("unexpected home crumb: %+v", crumbs[0])
    }
    if crumbs[1].Label != "Settimo Torinese" {
        t.Errorf("unexpected municipality crumb: %+v", crumbs[1])
    }
    if !crumbs[2].Active || crumbs[2].Href != "/shop/panificio-rossi" {
        t.Errorf("unexpected shop crumb: %+v", crumbs[2])
    }

    crumbs = ShopCrumbs("", "ferramenta-bianchi", "")
    if len(crumbs) != 2 || crumbs[1].Label != "Ferramenta bianchi" {
        t.Fatalf("expected prettified id without municipality, got %+v", crumbs)
    }
}
