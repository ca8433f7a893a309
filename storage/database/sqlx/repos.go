// Package sqlxrepos implements the domain repositories over postgres with sqlx.
package sqlxrepos

import (
	"strings"

	"github.com/trezcool/dizimo/core"
)

func orderBy(ordering []core.DBOrdering, dflt string) string {
	if len(ordering) == 0 {
		return dflt
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}
