package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// DefaultSchema is the PostgreSQL schema introspected when none is given.
const DefaultSchema = "public"

const pgTablesQuery = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name`

const pgPrimaryKeysQuery = `
	SELECT tc.table_name, kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
	WHERE tc.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY'
	ORDER BY tc.table_name, kcu.ordinal_position`

const pgForeignKeysQuery = `
	SELECT tc.constraint_name, kcu.table_name, kcu.column_name, ccu.table_name, ccu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
	JOIN information_schema.constraint_column_usage ccu
		ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
	WHERE tc.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'
	ORDER BY kcu.table_name, kcu.column_name`

// OpenPostgres connects to a PostgreSQL database and introspects a schema.
func OpenPostgres(ctx context.Context, dsn, schema string, logger *slog.Logger) (*Static, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return IntrospectPostgres(ctx, db, schema, logger)
}

// IntrospectPostgres builds a catalog from information_schema. An empty
// schema means DefaultSchema; a nil logger discards output.
func IntrospectPostgres(ctx context.Context, db *sql.DB, schema string, logger *slog.Logger) (*Static, error) {
	if schema == "" {
		schema = DefaultSchema
	}

	names, err := pgTables(ctx, db, schema)
	if err != nil {
		return nil, err
	}
	keys, err := pgPrimaryKeys(ctx, db, schema)
	if err != nil {
		return nil, err
	}
	fks, err := pgForeignKeys(ctx, db, schema)
	if err != nil {
		return nil, err
	}

	tables := make([]table, 0, len(names))
	for _, name := range names {
		t := table{name: name, foreignKeys: fks[name]}
		if cols := keys[name]; len(cols) == 1 {
			t.primaryKey = cols[0]
		}
		tables = append(tables, t)
	}
	return fromSchema(tables, logger)
}

func pgTables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	rows, err := db.QueryContext(ctx, pgTablesQuery, schema)
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

func pgPrimaryKeys(ctx context.Context, db *sql.DB, schema string) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx, pgPrimaryKeysQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("list primary keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string][]string)
	for rows.Next() {
		var tableName, column string
		if err := rows.Scan(&tableName, &column); err != nil {
			return nil, fmt.Errorf("scan primary key: %w", err)
		}
		keys[tableName] = append(keys[tableName], column)
	}
	return keys, rows.Err()
}

// pgForeignKeys groups single-column foreign keys by referencing table.
// Multi-column constraints produce several rows per name and are dropped.
func pgForeignKeys(ctx context.Context, db *sql.DB, schema string) (map[string][]foreignKey, error) {
	rows, err := db.QueryContext(ctx, pgForeignKeysQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("list foreign keys: %w", err)
	}
	defer rows.Close()

	type constraint struct {
		table string
		fks   []foreignKey
	}
	byName := make(map[string]*constraint)
	var order []string
	for rows.Next() {
		var name, tableName, column, refTable, refColumn string
		if err := rows.Scan(&name, &tableName, &column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		c, ok := byName[name]
		if !ok {
			c = &constraint{table: tableName}
			byName[name] = c
			order = append(order, name)
		}
		c.fks = append(c.fks, foreignKey{column: column, refTable: refTable, refColumn: refColumn})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]foreignKey)
	for _, name := range order {
		c := byName[name]
		if len(c.fks) != 1 {
			continue
		}
		out[c.table] = append(out[c.table], c.fks[0])
	}
	return out, nil
}
