package persistence

import (
	"fmt"
	"strings"

	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// allowedOrderColumns guards ORDER BY against injection; anything not in the
// list falls back to created_at.
var allowedOrderColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"price":      true,
	"rating":     true,
	"stock":      true,
	"status":     true,
	"placed_at":  true,
}

// applyFilter applies pagination and ordering from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := strings.ToLower(filter.OrderBy)
	if !allowedOrderColumns[orderBy] {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, dir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query
}
