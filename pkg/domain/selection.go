package domain

import "slices"

// MaxSelection is the largest number of companies a roadmap can be built from.
const MaxSelection = 3

// Selection is an ordered set of company ids, never larger than MaxSelection.
type Selection struct {
	IDs []string `json:"ids"`
}

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	return slices.Contains(s.IDs, id)
}

// Len returns the number of selected ids.
func (s Selection) Len() int { return len(s.IDs) }

// Toggle removes id when present, adds it when there is room, and otherwise
// returns ErrSelectionLimit leaving the set untouched. added reports the direction.
func (s *Selection) Toggle(id string) (added bool, err error) {
	if i := slices.Index(s.IDs, id); i >= 0 {
		s.IDs = slices.Delete(slices.Clone(s.IDs), i, i+1)
		return false, nil
	}
	if len(s.IDs) >= MaxSelection {
		return false, ErrSelectionLimit
	}
	s.IDs = append(slices.Clone(s.IDs), id)
	return true, nil
}

// Clear empties the selection.
func (s *Selection) Clear() { s.IDs = nil }

// SelectorDraft is the selector's stored filter and pick list.
type SelectorDraft struct {
	Filter    CompanyFilter `json:"filter"`
	Selection Selection     `json:"selection"`
}

// NewSelectorDraft returns a draft with default filters and nothing selected.
func NewSelectorDraft() *SelectorDraft {
	return &SelectorDraft{Filter: NewCompanyFilter()}
}
