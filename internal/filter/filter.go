// Package filter toggles the visibility of rendered shop cards.
package filter

import (
	"strings"

	"settimohub.it/hub-web/internal/dom"
)

const (
	// NameKey is the data attribute holding the lower-cased shop name.
	NameKey = "name"
	// CategoryKey is the data attribute holding the shop category.
	CategoryKey = "category"
)

// Criteria is the active text and category filter. Empty fields do not constrain.
type Criteria struct {
	Text     string
	Category string
}

// Normalize lower-cases and trims a free-text query.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Empty reports whether no constraint is active.
func (c Criteria) Empty() bool {
	return c.Text == "" && c.Category == ""
}

// Matches applies the criteria to a card's cached name and category. The name is
// expected lower-cased; the category comparison is exact and case-sensitive.
func (c Criteria) Matches(name, category string) bool {
	text := Normalize(c.Text)
	matchText := text == "" || strings.Contains(name, text)
	matchCat := c.Category == "" || category == c.Category
	return matchText && matchCat
}

// Apply shows or hides each card according to c and returns the number left visible.
// Only the data-name and data-category attributes of the cards are consulted.
func Apply(cards []*dom.Element, c Criteria) int {
	visible := 0
	for _, card := range cards {
		ok := c.Matches(card.Data(NameKey), card.Data(CategoryKey))
		card.SetClass(dom.HiddenClass, !ok)
		if ok {
			visible++
		}
	}
	return visible
}
