package shared

// Filter narrows and orders a listing. Repositories accept only the sort
// columns they whitelist and fall back to name otherwise.
type Filter struct {
	// Search is a case-insensitive substring of the name
	Search   string
	OrderBy  string
	OrderDir string
}

// DefaultFilter lists everything by name ascending
func DefaultFilter() Filter {
	return Filter{OrderBy: "name", OrderDir: "asc"}
}
