package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/pgsearch/internal/sqlrender"
)

// OpenSQLite opens the SQLite database at path read-only and introspects it.
// A nil logger discards output.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*Static, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return IntrospectSQLite(ctx, db, logger)
}

// IntrospectSQLite builds a catalog from sqlite_master and the table_info /
// foreign_key_list pragmas.
func IntrospectSQLite(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Static, error) {
	names, err := sqliteTables(ctx, db)
	if err != nil {
		return nil, err
	}

	tables := make([]table, 0, len(names))
	for _, name := range names {
		pk, err := sqlitePrimaryKey(ctx, db, name)
		if err != nil {
			return nil, err
		}
		fks, err := sqliteForeignKeys(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table{name: name, primaryKey: pk, foreignKeys: fks})
	}
	return fromSchema(tables, logger)
}

func sqliteTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// sqlitePrimaryKey returns the primary key column, or "" unless the key has
// exactly one column.
func sqlitePrimaryKey(ctx context.Context, db *sql.DB, tableName string) (string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+sqlrender.QuoteIdent(tableName)+")")
	if err != nil {
		return "", fmt.Errorf("table_info %s: %w", tableName, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return "", fmt.Errorf("scan table_info %s: %w", tableName, err)
		}
		if pk > 0 {
			keys = append(keys, name)
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(keys) != 1 {
		return "", nil
	}
	return keys[0], nil
}

// sqliteForeignKeys returns the single-column foreign keys of a table.
// Composite constraints (several rows sharing an id) are dropped.
func sqliteForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]foreignKey, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+sqlrender.QuoteIdent(tableName)+")")
	if err != nil {
		return nil, fmt.Errorf("foreign_key_list %s: %w", tableName, err)
	}
	defer rows.Close()

	byID := make(map[int][]foreignKey)
	var order []int
	for rows.Next() {
		var (
			id, seq                   int
			refTable, from            string
			to                        sql.NullString
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("scan foreign_key_list %s: %w", tableName, err)
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = append(byID[id], foreignKey{column: from, refTable: refTable, refColumn: to.String})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fks []foreignKey
	for _, id := range order {
		if len(byID[id]) != 1 {
			continue
		}
		fks = append(fks, byID[id][0])
	}
	return fks, nil
}
