package feature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/pgsearch/internal/ir"
	"github.com/roach88/pgsearch/internal/sqlrender"
)

// weightLabels are the tsvector weight classes, highest first.
var weightLabels = []string{"A", "B", "C", "D"}

// weightPlan maps column weights onto tsvector weight classes.
type weightPlan struct {
	weighted bool
	labels   []string // per column, parallel to the column slice
	array    string   // ts_rank weights literal, '{D, C, B, A}' order
}

// planWeights assigns labels A..D to the distinct weights, largest first.
// ts_rank receives each weight divided by the largest, so rank contributions
// keep the configured ratios. All-default weights produce an unweighted plan.
func planWeights(columns []Column) (weightPlan, error) {
	var plan weightPlan
	for _, c := range columns {
		if c.Weight <= 0 {
			return plan, nonPositiveWeight(c)
		}
		if c.Weight != 1 {
			plan.weighted = true
		}
	}
	if !plan.weighted {
		return plan, nil
	}

	distinct := distinctWeights(columns)
	if len(distinct) > len(weightLabels) {
		return plan, &ir.ConfigurationError{
			Option:  "against",
			Message: fmt.Sprintf("at most %d distinct column weights are supported, got %d", len(weightLabels), len(distinct)),
		}
	}

	max := distinct[0]
	labelOf := make(map[float64]string, len(distinct))
	values := make(map[string]float64, len(distinct))
	for i, w := range distinct {
		labelOf[w] = weightLabels[i]
		values[weightLabels[i]] = w / max
	}

	plan.labels = make([]string, len(columns))
	for i, c := range columns {
		plan.labels[i] = labelOf[c.Weight]
	}

	// PostgreSQL expects {D, C, B, A}; unused classes weigh 0
	parts := make([]string, len(weightLabels))
	for i := range weightLabels {
		label := weightLabels[len(weightLabels)-1-i]
		parts[i] = sqlrender.FormatNumber(values[label])
	}
	plan.array = "{" + strings.Join(parts, ", ") + "}"
	return plan, nil
}

// distinctWeights returns the distinct column weights, largest first.
func distinctWeights(columns []Column) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, c := range columns {
		if !seen[c.Weight] {
			seen[c.Weight] = true
			out = append(out, c.Weight)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
