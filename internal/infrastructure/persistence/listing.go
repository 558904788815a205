package persistence

import (
	"strings"

	"github.com/cookbook/api/internal/domain/shared"
	"gorm.io/gorm"
)

// listing whitelists the columns a table can be searched and sorted by.
// Column names reach SQL verbatim, so only whitelisted ones are used.
type listing struct {
	sortable map[string]bool
	search   []string
}

var (
	recipeListing = listing{
		sortable: map[string]bool{"id": true, "name": true, "created_at": true, "updated_at": true, "pdf_status": true},
		search:   []string{"name", "note"},
	}
	termListing = listing{
		sortable: map[string]bool{"id": true, "name": true, "created_at": true},
		search:   []string{"name"},
	}
)

// apply adds the search condition and the ordering of filter to query.
// Ties are broken by id so repeated listings come back in the same order.
func (l listing) apply(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if term := strings.TrimSpace(filter.Search); term != "" && len(l.search) > 0 {
		like := "%" + term + "%"
		conds := make([]string, 0, len(l.search))
		args := make([]any, 0, len(l.search))
		for _, col := range l.search {
			conds = append(conds, "LOWER("+col+") LIKE LOWER(?)")
			args = append(args, like)
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}
	return query.Order(l.orderBy(filter)).Order("id ASC")
}

// orderBy falls back to name ascending for anything not whitelisted
func (l listing) orderBy(filter shared.Filter) string {
	col := strings.TrimSpace(filter.OrderBy)
	if !l.sortable[col] {
		col = "name"
	}
	dir := "ASC"
	if strings.EqualFold(strings.TrimSpace(filter.OrderDir), "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}
