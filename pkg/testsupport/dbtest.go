package testsupport

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a shared-cache in-memory sqlite database. Distinct
// names give isolated databases, so tests usually pass t.Name().
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		name = "sitelint"
	}
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
}
