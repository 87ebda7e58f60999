package app

import (
	"settimohub.it/hub-web/internal/catalog"
	"settimohub.it/hub-web/internal/filter"
)

// State is the session state of one visitor.
type State struct {
	Municipalities []catalog.Municipality
	Selected       *catalog.Municipality
	Shops          []catalog.Shop
	TextFilter     string
	CategoryFilter string
}

// Store owns a State and the selection sequence. It does no locking; the
// Controller that owns it serialises access.
type Store struct {
	state State
	seq   uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	st := s.state
	st.Municipalities = append([]catalog.Municipality(nil), s.state.Municipalities...)
	st.Shops = append([]catalog.Shop(nil), s.state.Shops...)
	if s.state.Selected != nil {
		m := *s.state.Selected
		st.Selected = &m
	}
	return st
}

// SetMunicipalities replaces the municipality list. A selection that is no
// longer listed is dropped together with its shops.
func (s *Store) SetMunicipalities(list []catalog.Municipality) {
	s.state.Municipalities = append([]catalog.Municipality(nil), list...)
	if s.state.Selected == nil {
		return
	}
	if m, ok := catalog.FindMunicipality(s.state.Municipalities, s.state.Selected.ID); ok {
		s.state.Selected = &m
		return
	}
	s.state.Selected = nil
	s.state.Shops = nil
}

// Municipalities returns the loaded municipality list.
func (s *Store) Municipalities() []catalog.Municipality {
	return s.state.Municipalities
}

// Municipality looks id up in the loaded list.
func (s *Store) Municipality(id string) (catalog.Municipality, bool) {
	return catalog.FindMunicipality(s.state.Municipalities, id)
}

// Selected returns the selected municipality, or nil.
func (s *Store) Selected() *catalog.Municipality {
	return s.state.Selected
}

// Shops returns the shops of the selected municipality.
func (s *Store) Shops() []catalog.Shop {
	return s.state.Shops
}

// Shop looks id up in the shops of the selected municipality only.
func (s *Store) Shop(id string) (catalog.Shop, bool) {
	return catalog.FindShop(s.state.Shops, id)
}

// BeginSelection starts a new selection and returns its request id. Any
// selection started earlier is superseded.
func (s *Store) BeginSelection() uint64 {
	s.seq++
	return s.seq
}

// Current reports whether seq is the latest selection.
func (s *Store) Current(seq uint64) bool {
	return seq == s.seq
}

// CommitSelection stores m and its shops and clears both filters. It refuses
// a superseded request and reports whether the commit happened.
func (s *Store) CommitSelection(seq uint64, m catalog.Municipality, shops []catalog.Shop) bool {
	if !s.Current(seq) {
		return false
	}
	s.state.Selected = &m
	s.state.Shops = append([]catalog.Shop(nil), shops...)
	s.ClearFilters()
	return true
}

// SetTextFilter stores the normalized free-text filter.
func (s *Store) SetTextFilter(text string) {
	s.state.TextFilter = filter.Normalize(text)
}

// SetCategoryFilter stores the category filter. Values are not checked against
// the selected municipality's categories.
func (s *Store) SetCategoryFilter(category string) {
	s.state.CategoryFilter = category
}

// ClearFilters resets both filters.
func (s *Store) ClearFilters() {
	s.state.TextFilter = ""
	s.state.CategoryFilter = ""
}

// Criteria returns the active filters.
func (s *Store) Criteria() filter.Criteria {
	return filter.Criteria{Text: s.state.TextFilter, Category: s.state.CategoryFilter}
}
