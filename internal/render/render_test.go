package render

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"settimohub.it/hub-web/internal/dom"
	"settimohub.it/hub-web/internal/view"
)

func parse(t *testing.T, e *dom.Element) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(e.HTML()))
	require.NoError(t, err)
	return doc
}

func TestCategoryButton(t *testing.T) {
	t.Parallel()

	clicked := ""
	btn := CategoryButton(view.Category{Label: "Alimentari", Caption: "Scopri"}, func(ev *dom.Event) {
		clicked = ev.CurrentTarget.AttrOr("value")
	})

	doc := parse(t, btn)
	sel := doc.Find("button[name=c]")
	require.Equal(t, 1, sel.Length())
	require.Equal(t, "Alimentari", sel.AttrOr("value", ""))
	require.Equal(t, "submit", sel.AttrOr("type", ""))
	require.Equal(t, "Alimentari", strings.TrimSpace(sel.Find("p").First().Text()))
	require.Equal(t, "Scopri", strings.TrimSpace(sel.Find("p").Last().Text()))

	btn.Children()[0].Dispatch(dom.NewEvent(context.Background(), "click"))
	require.Equal(t, "Alimentari", clicked)

	require.False(t, CategoryButton(view.Category{Label: "x"}, nil).HasListener("click"))
}

func TestShopCard(t *testing.T) {
	t.Parallel()

	var opened string
	card := ShopCard(view.ShopCard{
		ID:          "panificio-rossi",
		Name:        "Panificio Rossi",
		SearchName:  "panificio rossi",
		Description: "Pane <b>caldo</b>",
		Category:    "Alimentari",
		Href:        "/shop/panificio-rossi",
		OpenLabel:   "Apri",
	}, func(ev *dom.Event, id string) {
		ev.PreventDefault()
		opened = id
	})

	doc := parse(t, card)
	article := doc.Find("article")
	require.Equal(t, "Alimentari", article.AttrOr("data-category", ""))
	require.Equal(t, "panificio rossi", article.AttrOr("data-name", ""))
	require.Equal(t, "Panificio Rossi", article.Find("h3").Text())
	require.Equal(t, "Pane <b>caldo</b>", article.Find("p").Text())
	require.Equal(t, 0, article.Find("b").Length())
	require.Equal(t, "Alimentari", article.Find("span").Text())
	require.Equal(t, "/shop/panificio-rossi", article.Find("a").AttrOr("href", ""))

	open := card.Query("[data-role=open]")
	require.NotNil(t, open)
	ok := open.Dispatch(dom.NewEvent(context.Background(), "click"))
	require.False(t, ok)
	require.Equal(t, "panificio-rossi", opened)
}

func TestProductCard(t *testing.T) {
	t.Parallel()

	doc := parse(t, ProductCard(view.ProductCard{
		Name:        "Pane",
		Unit:        "kg",
		Price:       "€ 3,50",
		InquiryHref: "https://wa.me/390111234567?text=x",
		WriteLabel:  "Scrivi su WhatsApp",
	}))

	require.Equal(t, "Pane", doc.Find("h3").Text())
	require.Equal(t, "kg", doc.Find("p").Text())
	require.Equal(t, "€ 3,50", doc.Find("[data-role=price]").Text())
	link := doc.Find("a")
	require.Equal(t, "https://wa.me/390111234567?text=x", link.AttrOr("href", ""))
	require.Equal(t, "_blank", link.AttrOr("target", ""))
	require.Equal(t, "noopener", link.AttrOr("rel", ""))
}

func TestOptionAndChip(t *testing.T) {
	t.Parallel()

	o := Option(view.Option{Value: "settimo", Label: "Settimo Torinese", Selected: true})
	require.True(t, o.HasAttr("selected"))
	require.Equal(t, "settimo", o.AttrOr("value"))
	require.False(t, Option(view.Option{Value: "v"}).HasAttr("selected"))

	require.Equal(t, "Servizi", Chip("Servizi").TextContent())
	require.Equal(t, "vuoto", EmptyProducts("vuoto").TextContent())
}
