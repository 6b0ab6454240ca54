package catalog_repo

import (
	"fmt"
	"strings"
)

// parseOrderBy turns "name" or "-created_at" into an ORDER BY clause.
// The column must be in the repository's column whitelist.
func parseOrderBy(validCols []string, orderBy string) (string, error) {
	if orderBy == "" {
		orderBy = "name"
	}

	direction := "ASC"
	col := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		col = orderBy[1:]
	}

	for _, valid := range validCols {
		if col == valid {
			return col + " " + direction, nil
		}
	}
	return "", fmt.Errorf("invalid order column: %s", col)
}
