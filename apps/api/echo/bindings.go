package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mafunzo/core"
)

var orderingParam = "ordering"

// Ordering is bound from `?ordering=field1,-field2` ("-" for descending).
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.ToLower(strings.TrimSpace(field))
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// String formats the orderings back to the query param syntax.
func (ord Ordering) String() string {
	fields := make([]string, 0, len(ord.Orderings))
	for _, o := range ord.Orderings {
		if o.Ascending {
			fields = append(fields, o.Field)
		} else {
			fields = append(fields, "-"+o.Field)
		}
	}
	return strings.Join(fields, ",")
}
