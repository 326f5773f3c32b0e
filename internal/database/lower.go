package database

import (
	"database/sql/driver"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"modernc.org/sqlite"
)

// SQLiteLowerFunc is a Unicode-aware replacement for SQLite's lower(), which
// only folds ASCII. It is available on every SQLite connection opened by New.
const SQLiteLowerFunc = "unicode_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(SQLiteLowerFunc, 1, sqliteLower); err != nil {
		panic(fmt.Sprintf("registering %s: %v", SQLiteLowerFunc, err))
	}
}

// Lower lowercases s the same way SQLiteLowerFunc does.
func Lower(s string) string {
	// A Caser holds state and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}

func sqliteLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return Lower(v), nil
	case []byte:
		return Lower(string(v)), nil
	default:
		return v, nil
	}
}
