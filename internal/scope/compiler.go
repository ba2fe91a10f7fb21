package scope

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/pgsearch/internal/catalog"
	"github.com/roach88/pgsearch/internal/feature"
	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/join"
	"github.com/roach88/pgsearch/internal/normalize"
	"github.com/roach88/pgsearch/internal/sqlast"
	"github.com/roach88/pgsearch/internal/sqlrender"
)

// Compiler turns scopes into fragments. It holds no per-scope state.
type Compiler struct {
	planner *join.Planner
	layer   QueryLayer
	logger  *slog.Logger
}

// NewCompiler creates a compiler. A nil layer means FullLayer; a nil logger
// discards output.
func NewCompiler(c catalog.Catalog, layer QueryLayer, logger *slog.Logger) *Compiler {
	if layer == nil {
		layer = FullLayer
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compiler{
		planner: join.NewPlanner(c, logger),
		layer:   layer,
		logger:  logger,
	}
}

// Compile prepares the scope and compiles one query.
func (c *Compiler) Compile(s ir.Scope, query string) (*ir.Fragment, error) {
	p, err := c.Prepare(s)
	if err != nil {
		return nil, err
	}
	return p.Compile(query)
}

// compiledFeature is a feature with the columns it searches.
type compiledFeature struct {
	feature feature.Feature
	columns []feature.Column
}

// Prepared is a scope with every query-independent decision made.
type Prepared struct {
	scope      ir.Scope
	root       ir.Model
	plan       *join.Plan
	plainJoins []ir.JoinHandle
	features   []compiledFeature
	normalizer normalize.Normalizer
	qualifiers map[string]bool
	orderTail  string
	logger     *slog.Logger
}

// Prepare validates a scope and resolves its joins. Errors are
// ConfigurationErrors tagged with the scope name, or an ArgumentError when
// the scope needs joins the query layer cannot attach.
func (c *Compiler) Prepare(s ir.Scope) (*Prepared, error) {
	if s.NeedsJoins() && !c.layer.SupportsJoins() {
		option := "associated_against"
		if len(s.Joins) > 0 {
			option = "joins"
		}
		return nil, &ir.ArgumentError{
			Option:  option,
			Message: "the query layer does not support joins",
		}
	}

	p, err := c.prepare(s)
	if err != nil {
		return nil, tagScope(err, s.Name)
	}

	c.logger.Debug("scope prepared",
		"scope", s.Name,
		"model", s.Model,
		"features", len(p.features),
		"joins", len(p.plan.Handles())+len(p.plainJoins))
	return p, nil
}

func (c *Compiler) prepare(s ir.Scope) (*Prepared, error) {
	if len(s.Against) == 0 && len(s.Associated) == 0 {
		return nil, &ir.ConfigurationError{
			Option:  "against",
			Message: "scope must search against at least one column or association",
		}
	}

	n, err := normalize.New(s.Ignoring)
	if err != nil {
		return nil, err
	}

	requests := make([]join.Request, 0, len(s.Associated))
	for _, group := range s.Associated {
		names := make([]string, len(group.Columns))
		for i, col := range group.Columns {
			names[i] = col.Name
		}
		requests = append(requests, join.Request{Association: group.Association, Columns: names})
	}
	plan, err := c.planner.Plan(s.Model, requests)
	if err != nil {
		return nil, err
	}

	plain, err := c.planner.PlainJoins(s.Model, s.Joins)
	if err != nil {
		return nil, err
	}

	columns, err := qualifyColumns(s, plan)
	if err != nil {
		return nil, err
	}

	features, err := selectFeatures(s.Using, columns)
	if err != nil {
		return nil, err
	}

	if err := checkRankedBy(s.RankedBy, features); err != nil {
		return nil, err
	}

	tail, err := orderTail(s.OrderWithinRank, plan.Root)
	if err != nil {
		return nil, err
	}

	return &Prepared{
		scope:      s,
		root:       plan.Root,
		plan:       plan,
		plainJoins: plain,
		features:   features,
		normalizer: n,
		qualifiers: plan.Qualifiers(),
		orderTail:  tail,
		logger:     c.logger,
	}, nil
}

// qualifyColumns resolves root columns against the root table and
// associated columns through their join handle, root columns first.
// A column listed twice is searched once, with its first weight.
func qualifyColumns(s ir.Scope, plan *join.Plan) ([]feature.Column, error) {
	seen := make(map[sqlast.Ident]bool)
	var out []feature.Column
	add := func(name string, ref sqlast.Ident, weight float64) {
		if seen[ref] {
			return
		}
		seen[ref] = true
		out = append(out, feature.Column{Name: name, Ref: ref, Weight: weight})
	}

	for _, col := range s.Against {
		add(col.Name, sqlast.Col(plan.Root.Table, col.Name), col.EffectiveWeight())
	}
	for _, group := range s.Associated {
		h, ok := plan.Handle(group.Association)
		if !ok {
			return nil, ir.NewUnknownAssociationError(group.Association, "association was not planned")
		}
		for _, col := range group.Columns {
			ref, ok := h.Ref(col.Name)
			if !ok {
				return nil, &ir.ConfigurationError{
					Association: group.Association,
					Option:      "associated_against",
					Message:     fmt.Sprintf("column %q is not selected by the join", col.Name),
				}
			}
			add(group.Association+"."+col.Name, ref, col.EffectiveWeight())
		}
	}
	return out, nil
}

// selectFeatures builds the feature compilers. No features means tsearch.
func selectFeatures(using []ir.FeatureConfig, columns []feature.Column) ([]compiledFeature, error) {
	if len(using) == 0 {
		using = []ir.FeatureConfig{{Name: ir.FeatureTSearch}}
	}

	seen := make(map[ir.FeatureName]bool)
	out := make([]compiledFeature, 0, len(using))
	for _, cfg := range using {
		if seen[cfg.Name] {
			return nil, &ir.ConfigurationError{
				Option:  "using",
				Message: fmt.Sprintf("feature %s is enabled twice", cfg.Name),
			}
		}
		seen[cfg.Name] = true

		f, err := feature.New(cfg)
		if err != nil {
			return nil, err
		}
		if err := f.Check(columns); err != nil {
			return nil, err
		}
		out = append(out, compiledFeature{feature: f, columns: columns})
	}
	return out, nil
}

// checkRankedBy rejects placeholders that name no enabled feature.
func checkRankedBy(template string, features []compiledFeature) error {
	if template == "" {
		return nil
	}
	enabled := make(map[string]bool, len(features))
	for _, f := range features {
		enabled[string(f.feature.Name())] = true
	}

	placeholders := sqlast.Placeholders(template)
	if len(placeholders) == 0 {
		return &ir.ConfigurationError{
			Option:  "ranked_by",
			Message: fmt.Sprintf("template %q references no feature", template),
		}
	}
	for _, ph := range placeholders {
		if !enabled[ph.Name] {
			return &ir.ConfigurationError{
				Option:  "ranked_by",
				Message: fmt.Sprintf("placeholder :%s does not name an enabled feature", ph.Name),
			}
		}
	}
	return nil
}

// orderTail is the tie-breaker after the rank. Custom text may not contain
// placeholders.
func orderTail(orderWithinRank string, root ir.Model) (string, error) {
	text := strings.TrimSpace(orderWithinRank)
	if text == "" {
		return sqlrender.QuoteIdent(root.Table) + "." + sqlrender.QuoteIdent(root.PrimaryKey) + " ASC", nil
	}
	if ph := sqlast.Placeholders(text); len(ph) > 0 {
		return "", &ir.ConfigurationError{
			Option:  "order_within_rank",
			Message: fmt.Sprintf("unexpected placeholder :%s", ph[0].Name),
		}
	}
	return text, nil
}

// tagScope fills in the scope name on configuration errors.
func tagScope(err error, scope string) error {
	var cfgErr *ir.ConfigurationError
	if scope != "" && errors.As(err, &cfgErr) && cfgErr.Scope == "" {
		tagged := *cfgErr
		tagged.Scope = scope
		return &tagged
	}
	return err
}
