package config

import (
	"fmt"
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/sqlast"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownModel       = "E201" // scope model not declared
	ErrNoColumns          = "E202" // scope searches nothing
	ErrUnknownFeature     = "E203" // using names an unknown feature
	ErrDuplicateFeature   = "E204" // feature enabled twice
	ErrUnknownIgnoring    = "E205" // ignoring names an unknown normalization
	ErrInvalidWeight      = "E206" // weight is not positive
	ErrUnknownAssociation = "E207" // association or join does not resolve
	ErrNotJoinable        = "E208" // association cannot be joined (polymorphic)
	ErrRankedBy           = "E209" // ranked_by placeholder names no enabled feature
	ErrInvalidThreshold   = "E210" // trigram threshold outside [0, 1]
	ErrEmptyColumn        = "E211" // column name is empty
)

// ValidationError represents a semantic configuration error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every scope against the catalog.
// Returns all errors found (does not fail-fast).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	for _, s := range cfg.Scopes {
		errs = append(errs, validateScope(cfg, s)...)
	}
	return errs
}

func validateScope(cfg *Config, s ir.Scope) []ValidationError {
	var errs []ValidationError
	field := "scope." + s.Name
	add := func(code, f, format string, args ...any) {
		errs = append(errs, ValidationError{Field: f, Message: fmt.Sprintf(format, args...), Code: code})
	}

	// E201: model must be declared
	model, ok := cfg.Catalog.Model(s.Model)
	if !ok {
		add(ErrUnknownModel, field+".model", "unknown model %q", s.Model)
	}

	// E202: something to search
	if len(s.Against) == 0 && len(s.Associated) == 0 {
		add(ErrNoColumns, field, "scope must declare against or associated_against")
	}

	checkColumns := func(f string, cols []ir.Column) {
		for i, c := range cols {
			if strings.TrimSpace(c.Name) == "" {
				add(ErrEmptyColumn, fmt.Sprintf("%s[%d]", f, i), "column name is empty")
			}
			if c.Weight < 0 {
				add(ErrInvalidWeight, fmt.Sprintf("%s[%d].weight", f, i), "weight must not be negative, got %v", c.Weight)
			}
		}
	}
	checkColumns(field+".against", s.Against)
	for _, group := range s.Associated {
		checkColumns(field+".associated_against."+group.Association, group.Columns)
	}

	// E203, E204, E210: features
	enabled := make(map[string]bool)
	for i, fc := range s.Using {
		f := fmt.Sprintf("%s.using[%d]", field, i)
		if !fc.Name.Valid() {
			add(ErrUnknownFeature, f, "unknown feature %q", fc.Name)
			continue
		}
		if enabled[string(fc.Name)] {
			add(ErrDuplicateFeature, f, "feature %s is enabled twice", fc.Name)
		}
		enabled[string(fc.Name)] = true
		if fc.Options.Threshold < 0 || fc.Options.Threshold > 1 {
			add(ErrInvalidThreshold, f+".threshold", "threshold must be between 0 and 1, got %v", fc.Options.Threshold)
		}
	}
	if len(s.Using) == 0 {
		enabled[string(ir.FeatureTSearch)] = true
	}

	// E205: ignoring
	for i, step := range s.Ignoring {
		if !ir.ValidIgnoring[step] {
			add(ErrUnknownIgnoring, fmt.Sprintf("%s.ignoring[%d]", field, i), "unknown normalization %q", step)
		}
	}

	// E207, E208: associations and joins resolve hop by hop
	if ok {
		for _, group := range s.Associated {
			if code, msg := resolve(cfg, model, group.Association); code != "" {
				add(code, field+".associated_against."+group.Association, "%s", msg)
			}
		}
		for i, name := range s.Joins {
			if code, msg := resolve(cfg, model, name); code != "" {
				add(code, fmt.Sprintf("%s.joins[%d]", field, i), "%s", msg)
			}
		}
	}

	// E209: ranked_by placeholders
	for _, ph := range sqlast.Placeholders(s.RankedBy) {
		if !enabled[ph.Name] {
			add(ErrRankedBy, field+".ranked_by", "placeholder :%s does not name an enabled feature", ph.Name)
		}
	}

	return errs
}

// resolve follows a dotted association name and reports the first problem.
func resolve(cfg *Config, root ir.Model, name string) (code, message string) {
	current := root
	for _, relName := range strings.Split(name, ".") {
		rel, ok := cfg.Catalog.Relation(current.Name, relName)
		if !ok {
			return ErrUnknownAssociation, fmt.Sprintf("model %q has no relation %q", current.Name, relName)
		}
		if !rel.SupportsJoin() {
			return ErrNotJoinable, fmt.Sprintf("relation %q is %s and cannot be joined", relName, rel.Kind)
		}
		current, _ = cfg.Catalog.Model(rel.Target)
	}
	return "", ""
}
