package services

const (
	FilterModeAnd = "and"
	FilterModeOr  = "or"
)

const (
	SortByRecency = "recency"
	SortByName    = "name"
)

const (
	DefaultFilterMode = FilterModeAnd
	DefaultSortMode   = SortByRecency
)

// IsValidFilterMode checks if a string is a valid filter mode constant
func IsValidFilterMode(mode string) bool {
	switch mode {
	case FilterModeAnd, FilterModeOr:
		return true
	default:
		return false
	}
}

// IsValidSortMode checks if a string is a valid sort mode constant
func IsValidSortMode(mode string) bool {
	switch mode {
	case SortByRecency, SortByName:
		return true
	default:
		return false
	}
}
