package catalog

import (
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
)

// table is the schema information introspection collects per table.
type table struct {
	name        string
	primaryKey  string // empty when the table has no single-column key
	foreignKeys []foreignKey
}

// foreignKey is a single-column foreign key constraint.
type foreignKey struct {
	column    string
	refTable  string
	refColumn string // empty = the referenced table's primary key
}

// fromSchema turns introspected tables into a catalog. Each table becomes a
// model named after it. Each foreign key T.c -> R.pk becomes:
//
//   - belongs_to on T named c without its "_id" suffix
//   - has_many on R named T ("T_c" when T is already taken on R)
//
// Tables without a single-column primary key, and foreign keys that do not
// reference one, are skipped.
func fromSchema(tables []table, logger *slog.Logger) (*Static, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].name < tables[j].name })

	byName := make(map[string]table, len(tables))
	var models []ir.Model
	for _, t := range tables {
		if t.primaryKey == "" {
			logger.Debug("skipping table without single-column primary key", "table", t.name)
			continue
		}
		byName[t.name] = t
		models = append(models, ir.Model{Name: t.name, Table: t.name, PrimaryKey: t.primaryKey})
	}

	taken := make(map[string]map[string]bool)
	claim := func(model, name string) bool {
		if taken[model] == nil {
			taken[model] = make(map[string]bool)
		}
		if taken[model][name] {
			return false
		}
		taken[model][name] = true
		return true
	}

	var relations []ir.Relation
	for _, t := range models {
		fks := byName[t.Name].foreignKeys
		sort.Slice(fks, func(i, j int) bool { return fks[i].column < fks[j].column })

		for _, fk := range fks {
			ref, ok := byName[fk.refTable]
			if !ok {
				logger.Debug("skipping foreign key to unknown table", "table", t.Name, "column", fk.column, "references", fk.refTable)
				continue
			}
			if fk.refColumn != "" && fk.refColumn != ref.primaryKey {
				logger.Debug("skipping foreign key not referencing a primary key", "table", t.Name, "column", fk.column)
				continue
			}

			owner := strings.TrimSuffix(fk.column, "_id")
			if owner == "" || !claim(t.Name, owner) {
				owner = fk.column + "_" + ref.name
				claim(t.Name, owner)
			}
			relations = append(relations, ir.Relation{
				Name: owner, Kind: ir.BelongsTo, Source: t.Name, Target: ref.name, ForeignKey: fk.column,
			})

			children := t.Name
			if !claim(ref.name, children) {
				children = t.Name + "_" + fk.column
				claim(ref.name, children)
			}
			relations = append(relations, ir.Relation{
				Name: children, Kind: ir.HasMany, Source: ref.name, Target: t.Name, ForeignKey: fk.column,
			})
		}
	}

	return New(models, relations)
}
