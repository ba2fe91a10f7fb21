// Package sqlrender turns sqlast expression trees into PostgreSQL text.
//
// Rendering is deterministic: the same tree always yields byte-identical SQL,
// so compiled fragments can be compared, fingerprinted and golden-tested.
package sqlrender

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/pgsearch/internal/sqlast"
)

// Render converts an expression tree to SQL text.
// Returns an error for nil nodes or unknown node types.
func Render(expr sqlast.Expr) (string, error) {
	var b strings.Builder
	if err := render(&b, expr); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(b *strings.Builder, expr sqlast.Expr) error {
	if expr == nil {
		return fmt.Errorf("cannot render nil expression")
	}

	switch e := expr.(type) {
	case sqlast.Ident:
		if e.Qualifier != "" {
			b.WriteString(QuoteIdent(e.Qualifier))
			b.WriteByte('.')
		}
		b.WriteString(QuoteIdent(e.Name))
	case sqlast.Literal:
		b.WriteString(QuoteLiteral(e.Value))
	case sqlast.Number:
		b.WriteString(FormatNumber(e.Value))
	case sqlast.Cast:
		if err := render(b, e.Expr); err != nil {
			return fmt.Errorf("cast: %w", err)
		}
		b.WriteString("::")
		b.WriteString(e.Type)
	case sqlast.Func:
		b.WriteString(e.Name)
		b.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := render(b, arg); err != nil {
				return fmt.Errorf("%s arg %d: %w", e.Name, i, err)
			}
		}
		b.WriteByte(')')
	case sqlast.Infix:
		for i, op := range e.Operands {
			if i > 0 {
				b.WriteByte(' ')
				b.WriteString(e.Op)
				b.WriteByte(' ')
			}
			if err := render(b, op); err != nil {
				return fmt.Errorf("operand %d of %s: %w", i, e.Op, err)
			}
		}
	case sqlast.Group:
		b.WriteByte('(')
		if err := render(b, e.Expr); err != nil {
			return err
		}
		b.WriteByte(')')
	case sqlast.Template:
		return renderTemplate(b, e)
	default:
		return fmt.Errorf("unsupported expression type: %T", expr)
	}
	return nil
}

// renderTemplate substitutes each :name placeholder with its rendered
// argument. Text outside placeholders is copied verbatim.
func renderTemplate(b *strings.Builder, t sqlast.Template) error {
	pos := 0
	for _, ph := range sqlast.Placeholders(t.Text) {
		arg, ok := t.Args[ph.Name]
		if !ok {
			return fmt.Errorf("template placeholder :%s has no bound expression", ph.Name)
		}
		b.WriteString(t.Text[pos:ph.Start])
		if err := render(b, arg); err != nil {
			return fmt.Errorf("placeholder :%s: %w", ph.Name, err)
		}
		pos = ph.End
	}
	b.WriteString(t.Text[pos:])
	return nil
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral single-quotes a string constant, doubling embedded quotes.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// FormatNumber renders a float in its shortest exact form ("0", "0.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
