// Package catalog resolves model and relation names to tables and join keys.
//
// The join planner only sees the Catalog interface. Static is the in-memory
// implementation; it is built from configuration (config.Load) or from a
// live schema (IntrospectSQLite, IntrospectPostgres), where foreign keys
// become belongs_to relations on the referencing table and has_many
// relations on the referenced one.
package catalog
