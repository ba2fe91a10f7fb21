package sqlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_WellFormed(t *testing.T) {
	expr := Paren(Join("@@",
		Paren(Call("to_tsvector", Str("simple"), Call("coalesce", Cast{Expr: Col("posts", "title"), Type: "text"}, Str("")))),
		Paren(Call("to_tsquery", Str("simple"), Str("foo"))),
	))

	result := Validate(expr, map[string]bool{"posts": true})
	assert.True(t, result.Valid, "problems: %v", result.Problems)
	assert.Empty(t, result.Problems)
}

func TestValidate_UnknownQualifier(t *testing.T) {
	expr := Join("||", Col("posts", "title"), Col("pg_search_unknown", "title"))

	result := Validate(expr, map[string]bool{"posts": true})
	assert.False(t, result.Valid)
	assert.Len(t, result.Problems, 1)
	assert.Contains(t, result.Problems[0], "pg_search_unknown")
}

func TestValidate_NilAllowedSkipsQualifierCheck(t *testing.T) {
	result := Validate(Col("anything", "title"), nil)
	assert.True(t, result.Valid)
}

func TestValidate_StructuralProblems(t *testing.T) {
	testCases := []struct {
		name    string
		expr    Expr
		problem string
	}{
		{"nil", nil, "nil expression"},
		{"empty ident", Ident{}, "empty name"},
		{"empty func", Func{}, "empty name"},
		{"empty cast", Cast{Expr: Str("x")}, "empty type"},
		{"short infix", Infix{Op: "OR", Operands: []Expr{Str("x")}}, "at least two operands"},
		{"nil operand", Infix{Op: "OR", Operands: []Expr{Str("x"), nil}}, "nil expression"},
		{"unbound placeholder", Template{Text: ":tsearch + :trigram", Args: map[string]Expr{"tsearch": Number{Value: 1}}}, ":trigram"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.expr, nil)
			assert.False(t, result.Valid)
			assert.Contains(t, result.Problems[0], tc.problem)
		})
	}
}

func TestQualifiers(t *testing.T) {
	expr := Template{
		Text: ":a + :b",
		Args: map[string]Expr{
			"a": Col("posts", "title"),
			"b": Join("||", Col("pg_search_1", "x"), Col("posts", "body"), Ident{Name: "bare"}),
		},
	}

	assert.Equal(t, []string{"pg_search_1", "posts"}, Qualifiers(expr))
	assert.Empty(t, Qualifiers(Str("x")))
}

func TestJoinCollapsesSingleOperand(t *testing.T) {
	only := Col("posts", "title")
	assert.Equal(t, Expr(only), Join("||", only))
	assert.IsType(t, Infix{}, Join("||", only, only))
}

func TestPlaceholders(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{"sum", ":tsearch + :trigram", []string{"tsearch", "trigram"}},
		{"weighted", ":tsearch * 2 + :dmetaphone * 0.5", []string{"tsearch", "dmetaphone"}},
		{"cast skipped", ":tsearch::float4 * 2", []string{"tsearch"}},
		{"quoted skipped", "':not' || :tsearch", []string{"tsearch"}},
		{"digit start", ":1 + :x1", []string{"x1"}},
		{"none", "1 + 2", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, ph := range Placeholders(tc.text) {
				got = append(got, ph.Name)
				assert.Equal(t, ":"+ph.Name, tc.text[ph.Start:ph.End])
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
