package config

import (
	"fmt"
	"math"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/pgsearch/internal/catalog"
	"github.com/roach88/pgsearch/internal/feature"
	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/scope"
)

// LetterWeights maps tsvector weight letters to numeric column weights.
var LetterWeights = map[string]float64{
	"A": 1.0,
	"B": 0.4,
	"C": 0.2,
	"D": 0.1,
}

// Parse reads a built CUE value into a Config.
func Parse(v cue.Value) (*Config, error) {
	if err := v.Err(); err != nil {
		return nil, positioned(ErrCodeBuildFailed, "", err)
	}

	cfg := &Config{Layer: scope.Capabilities{Joins: true}}

	if joins := v.LookupPath(cue.ParsePath("layer.joins")); joins.Exists() {
		b, err := joins.Bool()
		if err != nil {
			return nil, shapeError("layer.joins", joins, "must be a boolean")
		}
		cfg.Layer.Joins = b
	}

	models, relations, err := parseModels(v)
	if err != nil {
		return nil, err
	}
	cfg.Catalog, err = catalog.New(models, relations)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCatalog, Field: "model", Message: err.Error()}
	}

	scopesVal := v.LookupPath(cue.ParsePath("scope"))
	if scopesVal.Exists() {
		iter, err := scopesVal.Fields()
		if err != nil {
			return nil, shapeError("scope", scopesVal, "must be a struct of scopes")
		}
		for iter.Next() {
			s, err := parseScope(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			cfg.Scopes = append(cfg.Scopes, s)
		}
	}

	return cfg, nil
}

// parseModels extracts models and their relations.
func parseModels(v cue.Value) ([]ir.Model, []ir.Relation, error) {
	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, nil, nil
	}
	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, nil, shapeError("model", modelsVal, "must be a struct of models")
	}

	var models []ir.Model
	var relations []ir.Relation
	for iter.Next() {
		name := iter.Label()
		mv := iter.Value()
		field := "model." + name

		m := ir.Model{Name: name}
		if m.Table, err = optionalString(mv, "table", field); err != nil {
			return nil, nil, err
		}
		if m.PrimaryKey, err = optionalString(mv, "primary_key", field); err != nil {
			return nil, nil, err
		}
		models = append(models, m)

		relVal := mv.LookupPath(cue.ParsePath("relation"))
		if !relVal.Exists() {
			continue
		}
		relIter, err := relVal.Fields()
		if err != nil {
			return nil, nil, shapeError(field+".relation", relVal, "must be a struct of relations")
		}
		for relIter.Next() {
			r, err := parseRelation(name, relIter.Label(), relIter.Value(), field+".relation."+relIter.Label())
			if err != nil {
				return nil, nil, err
			}
			relations = append(relations, r)
		}
	}
	return models, relations, nil
}

// parseRelation reads one relation. A belongs_to foreign key defaults to
// "<relation>_id".
func parseRelation(source, name string, v cue.Value, field string) (ir.Relation, error) {
	r := ir.Relation{Name: name, Source: source}

	kind, err := optionalString(v, "kind", field)
	if err != nil {
		return r, err
	}
	if kind == "" {
		return r, shapeError(field+".kind", v, "relation kind is required")
	}
	r.Kind = ir.RelationKind(kind)
	if !ir.ValidRelationKinds[r.Kind] {
		return r, shapeError(field+".kind", v, fmt.Sprintf("unknown relation kind %q", kind))
	}

	if r.Target, err = optionalString(v, "model", field); err != nil {
		return r, err
	}
	if r.ForeignKey, err = optionalString(v, "foreign_key", field); err != nil {
		return r, err
	}
	if r.Kind == ir.BelongsTo && r.ForeignKey == "" {
		r.ForeignKey = name + "_id"
	}
	return r, nil
}

// parseScope reads one scope declaration.
func parseScope(name string, v cue.Value) (ir.Scope, error) {
	field := "scope." + name
	s := ir.Scope{Name: name}
	var err error

	if s.Model, err = optionalString(v, "model", field); err != nil {
		return s, err
	}
	if s.Model == "" {
		return s, shapeError(field+".model", v, "model is required")
	}

	if av := v.LookupPath(cue.ParsePath("against")); av.Exists() {
		if s.Against, err = parseColumns(av, field+".against"); err != nil {
			return s, err
		}
	}
	if av := v.LookupPath(cue.ParsePath("associated_against")); av.Exists() {
		if s.Associated, err = parseAssociated(av, field+".associated_against"); err != nil {
			return s, err
		}
	}
	if uv := v.LookupPath(cue.ParsePath("using")); uv.Exists() {
		if s.Using, err = parseUsing(uv, field+".using"); err != nil {
			return s, err
		}
	}
	if iv := v.LookupPath(cue.ParsePath("ignoring")); iv.Exists() {
		if s.Ignoring, err = stringOrList(iv, field+".ignoring"); err != nil {
			return s, err
		}
	}
	if jv := v.LookupPath(cue.ParsePath("joins")); jv.Exists() {
		if s.Joins, err = stringOrList(jv, field+".joins"); err != nil {
			return s, err
		}
	}
	if s.RankedBy, err = optionalString(v, "ranked_by", field); err != nil {
		return s, err
	}
	if s.OrderWithinRank, err = optionalString(v, "order_within_rank", field); err != nil {
		return s, err
	}
	return s, nil
}

// parseColumns accepts a column name, a list of names or {name, weight}
// structs, or a struct mapping column names to weights.
func parseColumns(v cue.Value, field string) ([]ir.Column, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		name, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return []ir.Column{{Name: name}}, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var cols []ir.Column
		for i := 0; iter.Next(); i++ {
			col, err := parseColumn(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		return cols, nil

	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var cols []ir.Column
		for iter.Next() {
			w, err := parseWeight(iter.Value(), field+"."+iter.Label())
			if err != nil {
				return nil, err
			}
			cols = append(cols, ir.Column{Name: iter.Label(), Weight: w})
		}
		return cols, nil

	default:
		return nil, shapeError(field, v, "must be a column name, a list, or a struct of column weights")
	}
}

func parseColumn(v cue.Value, field string) (ir.Column, error) {
	if name, err := v.String(); err == nil {
		return ir.Column{Name: name}, nil
	}
	if v.IncompleteKind() != cue.StructKind {
		return ir.Column{}, shapeError(field, v, "must be a column name or {name, weight}")
	}

	name, err := optionalString(v, "name", field)
	if err != nil {
		return ir.Column{}, err
	}
	if name == "" {
		return ir.Column{}, shapeError(field+".name", v, "column name is required")
	}
	col := ir.Column{Name: name}
	if wv := v.LookupPath(cue.ParsePath("weight")); wv.Exists() {
		if col.Weight, err = parseWeight(wv, field+".weight"); err != nil {
			return ir.Column{}, err
		}
	}
	return col, nil
}

// parseWeight accepts a number or one of the letters A-D.
func parseWeight(v cue.Value, field string) (float64, error) {
	if letter, err := v.String(); err == nil {
		w, ok := LetterWeights[letter]
		if !ok {
			return 0, shapeError(field, v, fmt.Sprintf("unknown weight %q (use a number or A, B, C, D)", letter))
		}
		return w, nil
	}
	w, err := v.Float64()
	if err != nil {
		return 0, shapeError(field, v, "weight must be a number or one of A, B, C, D")
	}
	return w, nil
}

// parseAssociated accepts {association: columns} or a list of
// {association, against} entries; the list form may repeat an association.
func parseAssociated(v cue.Value, field string) ([]ir.AssociatedColumns, error) {
	var out []ir.AssociatedColumns

	switch v.IncompleteKind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			cols, err := parseColumns(iter.Value(), field+"."+iter.Label())
			if err != nil {
				return nil, err
			}
			out = append(out, ir.AssociatedColumns{Association: iter.Label(), Columns: cols})
		}

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			entry := iter.Value()
			entryField := fmt.Sprintf("%s[%d]", field, i)

			name, err := optionalString(entry, "association", entryField)
			if err != nil {
				return nil, err
			}
			if name == "" {
				return nil, shapeError(entryField+".association", entry, "association is required")
			}
			av := entry.LookupPath(cue.ParsePath("against"))
			if !av.Exists() {
				return nil, shapeError(entryField+".against", entry, "against is required")
			}
			cols, err := parseColumns(av, entryField+".against")
			if err != nil {
				return nil, err
			}
			out = append(out, ir.AssociatedColumns{Association: name, Columns: cols})
		}

	default:
		return nil, shapeError(field, v, "must be a struct of associations or a list of {association, against}")
	}
	return out, nil
}

// parseUsing accepts a feature name, a list of names, or a struct mapping
// feature names to their options.
func parseUsing(v cue.Value, field string) ([]ir.FeatureConfig, error) {
	switch v.IncompleteKind() {
	case cue.StringKind, cue.ListKind:
		names, err := stringOrList(v, field)
		if err != nil {
			return nil, err
		}
		out := make([]ir.FeatureConfig, len(names))
		for i, n := range names {
			out[i] = ir.FeatureConfig{Name: ir.FeatureName(n)}
		}
		return out, nil

	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var out []ir.FeatureConfig
		for iter.Next() {
			name := ir.FeatureName(iter.Label())
			opts, err := parseOptions(name, iter.Value(), field+"."+iter.Label())
			if err != nil {
				return nil, err
			}
			out = append(out, ir.FeatureConfig{Name: name, Options: opts})
		}
		return out, nil

	default:
		return nil, shapeError(field, v, "must be a feature name, a list of names, or a struct of feature options")
	}
}

// parseOptions reads a feature's options. `true` and {} both mean defaults.
// Options the feature does not accept are rejected; unknown feature names
// are left for Validate.
func parseOptions(name ir.FeatureName, v cue.Value, field string) (ir.FeatureOptions, error) {
	var opts ir.FeatureOptions
	if b, err := v.Bool(); err == nil {
		if !b {
			return opts, shapeError(field, v, "use true or an options struct to enable a feature")
		}
		return opts, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return opts, shapeError(field, v, "must be true or a struct of options")
	}
	for iter.Next() {
		key := iter.Label()
		ov := iter.Value()
		optField := field + "." + key

		if name.Valid() && !feature.Accepts(name, key) {
			return opts, shapeError(optField, ov, fmt.Sprintf("%s does not accept option %q", name, key))
		}

		switch key {
		case feature.OptDictionary:
			opts.Dictionary, err = ov.String()
		case feature.OptPrefix:
			opts.Prefix, err = ov.Bool()
		case feature.OptAnyWord:
			opts.AnyWord, err = ov.Bool()
		case feature.OptNegation:
			opts.Negation, err = ov.Bool()
		case feature.OptNormalization:
			var n int64
			n, err = ov.Int64()
			if err == nil && (n < 0 || n > math.MaxInt32) {
				err = fmt.Errorf("out of range")
			}
			opts.Normalization = int(n)
		case feature.OptThreshold:
			opts.Threshold, err = ov.Float64()
		default:
			return opts, shapeError(optField, ov, fmt.Sprintf("unknown option %q", key))
		}
		if err != nil {
			return opts, shapeError(optField, ov, fmt.Sprintf("invalid value: %v", err))
		}
	}
	return opts, nil
}

// stringOrList accepts a string or a list of strings.
func stringOrList(v cue.Value, field string) ([]string, error) {
	if s, err := v.String(); err == nil {
		return []string{s}, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, shapeError(field, v, "must be a string or a list of strings")
	}
	var out []string
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, shapeError(fmt.Sprintf("%s[%d]", field, i), iter.Value(), "must be a string")
		}
		out = append(out, s)
	}
	return out, nil
}

// optionalString reads a string field, returning "" when absent.
func optionalString(v cue.Value, name, parent string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", shapeError(parent+"."+name, fv, "must be a string")
	}
	return s, nil
}

func shapeError(field string, v cue.Value, message string) *LoadError {
	return &LoadError{Code: ErrCodeShape, Field: field, Message: message, Pos: v.Pos()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	return positioned(ErrCodeShape, "", err)
}

// positioned converts a CUE error into a LoadError at its first position.
func positioned(code, field string, err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Field: field, Message: err.Error()}
	}

	first := errs[0]
	loadErr := &LoadError{Code: code, Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
