package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/dizimo/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `ordering` query param: comma-separated field names, a "-"
// prefix meaning descending. Only fields in allowed survive.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !isAllowedField(field, allowed) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func isAllowedField(field string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, f := range allowed {
		if f == field {
			return true
		}
	}
	return false
}
