package store

import (
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/salesdash/internal/database"
)

// dialect holds the few SQL fragments that differ between backends.
type dialect struct {
	// monthExpr yields the two-digit month of date_of_sale, in UTC.
	monthExpr string
	// lowerFn names a Unicode-aware lowercasing function.
	lowerFn     string
	placeholder func(n int) string
}

var dialects = map[database.Driver]dialect{
	database.DriverPostgres: {
		monthExpr:   `to_char(date_of_sale AT TIME ZONE 'UTC', 'MM')`,
		lowerFn:     "lower",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
	database.DriverSQLite: {
		monthExpr:   `strftime('%m', date_of_sale)`,
		lowerFn:     database.SQLiteLowerFunc,
		placeholder: func(int) string { return "?" },
	},
}

// args accumulates bound query arguments and hands out matching placeholders.
type args struct {
	d    dialect
	vals []any
}

func (a *args) add(v any) string {
	a.vals = append(a.vals, v)
	return a.d.placeholder(len(a.vals))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with s's own
// wildcard characters escaped. Use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(database.Lower(s)) + "%"
}
