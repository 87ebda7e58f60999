package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Municipality groups shops and the category labels offered in that locality.
type Municipality struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"nome" yaml:"nome"`
	Categories []string `json:"categorie" yaml:"categorie"`
}

// Shop is a business listed under exactly one municipality.
type Shop struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"nome" yaml:"nome"`
	Description string    `json:"descrizione" yaml:"descrizione"`
	Category    string    `json:"categoria" yaml:"categoria"`
	Address     string    `json:"indirizzo" yaml:"indirizzo"`
	Hours       string    `json:"orari" yaml:"orari"`
	Phone       string    `json:"telefono" yaml:"telefono"`
	Email       string    `json:"email" yaml:"email"`
	WhatsApp    string    `json:"whatsapp,omitempty" yaml:"whatsapp"`
	Products    []Product `json:"prodotti" yaml:"prodotti"`
}

// ContactNumber returns the WhatsApp handle, falling back to the phone number.
func (s Shop) ContactNumber() string {
	if strings.TrimSpace(s.WhatsApp) != "" {
		return s.WhatsApp
	}
	return s.Phone
}

// Product is a priced item or service offered by a shop.
type Product struct {
	Name  string `json:"nome" yaml:"nome"`
	Unit  string `json:"unita" yaml:"unita"`
	Price Price  `json:"prezzo" yaml:"prezzo"`
}

// Price is a non-negative decimal amount. It decodes from numbers, numeric strings or null.
type Price float64

// Float returns the amount as float64.
func (p Price) Float() float64 { return float64(p) }

// UnmarshalJSON accepts 4.5, "4.5", "4,5" and null.
func (p *Price) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	v, err := parsePrice(raw)
	if err != nil {
		return fmt.Errorf("catalog: invalid price %s: %w", string(b), err)
	}
	*p = v
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML catalogs.
func (p *Price) UnmarshalYAML(value *yaml.Node) error {
	v, err := parsePrice(value.Value)
	if err != nil {
		return fmt.Errorf("catalog: invalid price %q: %w", value.Value, err)
	}
	*p = v
	return nil
}

func parsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "~" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	}
	return Price(v), nil
}

// FindMunicipality returns the municipality with id.
func FindMunicipality(list []Municipality, id string) (Municipality, bool) {
	for _, m := range list {
		if m.ID == id {
			return m, true
		}
	}
	return Municipality{}, false
}

// FindShop returns the shop with id.
func FindShop(list []Shop, id string) (Shop, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return Shop{}, false
}
