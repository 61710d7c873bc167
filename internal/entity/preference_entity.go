package entity

// Preference names accepted from a backup. Anything else in the
// preferences section is ignored on import.
const (
	PrefSortOrder        = "sort_order"
	PrefShowCategory     = "show_category"
	PrefSelectedCategory = "selected_category"
)

type Preference struct {
	Name  string
	Value string
}

// ImportablePreference reports whether name is one of the whitelisted
// preference keys.
func ImportablePreference(name string) bool {
	switch name {
	case PrefSortOrder, PrefShowCategory, PrefSelectedCategory:
		return true
	}
	return false
}
