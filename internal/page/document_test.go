package page

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"settimohub.it/hub-web/internal/app"
	"settimohub.it/hub-web/internal/i18n"
	"settimohub.it/hub-web/internal/nav"
	"settimohub.it/hub-web/internal/view"
)

func newDocument(t *testing.T, lang string) *Document {
	t.Helper()
	b, err := i18n.Load("../../locales", "it", []string{"it", "en"})
	require.NoError(t, err)
	return New(b, lang)
}

func parse(t *testing.T, d *Document) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.HTML()))
	require.NoError(t, err)
	return doc
}

func TestSkeletonCarriesControlIDs(t *testing.T) {
	t.Parallel()

	d := newDocument(t, "it")
	doc := parse(t, d)

	for _, id := range []string{
		RootID, app.IDMenuButton, app.IDMobileMenu, app.IDSearch, app.IDSearchButton, app.IDResetButton,
		app.IDMunicipality, app.IDAllCats, app.IDCategoryGrid, app.IDShopsGrid, app.IDYear,
		IDHomeView, IDShopView, IDShopCount, IDBcComune, IDBcShop, IDShopTitle, IDShopCat, IDShopDesc,
		IDShopAddr, IDShopHours, IDShopPhone, IDShopEmail, IDShopWhats, IDShopMaps, IDProdGrid,
	} {
		require.Equal(t, 1, doc.Find("#"+id).Length(), id)
		require.NotNil(t, d.Element(id), id)
	}
	require.Nil(t, d.Element("missing"))

	require.True(t, doc.Find("#shopView").HasClass("hidden"))
	require.True(t, doc.Find("#mobileMenu").HasClass("hidden"))
	require.Equal(t, "/reset", doc.Find("#btnReset").AttrOr("formaction", ""))
	require.Equal(t, "q", doc.Find("#search").AttrOr("name", ""))
	require.Equal(t, "comune", doc.Find("#comuneSelect").AttrOr("name", ""))
	require.Equal(t, "/categoria", doc.Find("#catForm").AttrOr("action", ""))
	require.Equal(t, "#app", doc.Find("#searchForm").AttrOr("hx-target", ""))
	require.Equal(t, "Cerca un negozio", doc.Find("label[for=search]").Text())
	require.Equal(t, "#negozi", doc.Find("header nav a[href='/#negozi']").AttrOr("data-scroll", ""))
}

func TestCSRFTokenFillsEveryForm(t *testing.T) {
	t.Parallel()

	d := newDocument(t, "it")
	d.SetCSRFToken("tok")
	doc := parse(t, d)

	forms := doc.Find("form")
	require.Greater(t, forms.Length(), 3)
	forms.Each(func(_ int, f *goquery.Selection) {
		require.Equal(t, "tok", f.Find("input[name=csrf_token]").AttrOr("value", ""))
	})
}

func TestShowShopAndHome(t *testing.T) {
	t.Parallel()

	d := newDocument(t, "en")
	d.ShowShop(view.ShopDetail{
		ShopID:           "panificio-rossi",
		MunicipalityName: "Settimo Torinese",
		Name:             "Panificio Rossi",
		Category:         "Alimentari",
		Address:          "Via Italia 1",
		WhatsAppHref:     "https://wa.me/39011?text=x",
		MapsHref:         "https://maps.example/?q=x",
		Products:         []view.ProductCard{{Name: "Pane", Unit: "kg", Price: "€ 3.50"}},
		Breadcrumbs:      nav.ShopCrumbs("Settimo Torinese", "panificio-rossi", "Panificio Rossi"),
	})

	doc := parse(t, d)
	require.True(t, doc.Find("#homeView").HasClass("hidden"))
	require.False(t, doc.Find("#shopView").HasClass("hidden"))
	require.Equal(t, "Panificio Rossi", doc.Find("#shopTitle").Text())
	require.Equal(t, "Settimo Torinese", doc.Find("#bcComune").Text())
	require.Equal(t, "Alimentari", doc.Find("#shopCat").Text())
	require.Equal(t, "https://wa.me/39011?text=x", doc.Find("#shopWhats").AttrOr("href", ""))
	require.Equal(t, "https://maps.example/?q=x", doc.Find("#shopMaps").AttrOr("href", ""))
	require.Equal(t, 1, doc.Find("#prodGrid article").Length())

	d.ShowShop(view.ShopDetail{Name: "Vuoto", EmptyMessage: "nothing yet"})
	require.Equal(t, "nothing yet", d.Element(IDProdGrid).TextContent())

	d.ShowHome()
	require.False(t, d.Element(IDHomeView).Hidden())
	require.True(t, d.Element(IDShopView).Hidden())
}

func TestRenderGridsAndCounter(t *testing.T) {
	t.Parallel()

	d := newDocument(t, "it")
	d.SetMunicipalityOptions([]view.Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B", Selected: true}})
	require.Equal(t, "b", d.Element(app.IDMunicipality).Value())

	d.RenderCategories([]view.Category{{Label: "Alimentari", Caption: "Scopri"}}, nil)
	d.RenderShops([]view.ShopCard{{ID: "x", Name: "X", SearchName: "x"}, {ID: "y", Name: "Y", SearchName: "y"}}, nil)
	require.Len(t, d.ShopCards(), 2)
	d.RenderShops([]view.ShopCard{{ID: "z"}}, nil)
	require.Len(t, d.ShopCards(), 1)

	d.SetResultCount(1)
	require.Equal(t, "1 negozi", d.Element(IDShopCount).TextContent())
	require.Equal(t, "1", d.Element(IDShopCount).Data("count"))

	d.SetSearchValue("pane")
	require.Equal(t, "pane", d.SearchValue())

	_, ok := d.TakeScroll()
	require.False(t, ok)
	d.ScrollTo("#negozi")
	target, ok := d.TakeScroll()
	require.True(t, ok)
	require.Equal(t, "#negozi", target)

	d.SetFragment("")
	require.Equal(t, "#/", d.Fragment())
}
