package sqlast

// Expr is a SQL scalar or boolean expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Ident is a possibly qualified identifier, rendered with double quotes.
//
// Example:
//
//	Ident{Qualifier: "posts", Name: "title"}  →  "posts"."title"
type Ident struct {
	Qualifier string // Table name or alias (empty = unqualified)
	Name      string
}

func (Ident) exprNode() {}

// Literal is a string constant, rendered single-quoted with quotes doubled.
//
// Example:
//
//	Literal{Value: "' "}  →  ''' '
type Literal struct {
	Value string
}

func (Literal) exprNode() {}

// Number is a numeric constant.
type Number struct {
	Value float64
}

func (Number) exprNode() {}

// Cast converts an expression with the PostgreSQL :: operator.
//
// Example:
//
//	Cast{Expr: Ident{...}, Type: "text"}  →  "posts"."title"::text
type Cast struct {
	Expr Expr
	Type string
}

func (Cast) exprNode() {}

// Func is a function call.
type Func struct {
	Name string
	Args []Expr
}

func (Func) exprNode() {}

// Infix joins two or more operands with a binary operator.
//
// Example:
//
//	Infix{Op: "||", Operands: [a, b, c]}  →  a || b || c
type Infix struct {
	Op       string
	Operands []Expr
}

func (Infix) exprNode() {}

// Group wraps an expression in parentheses.
type Group struct {
	Expr Expr
}

func (Group) exprNode() {}

// Template is SQL text with :name placeholders, each bound to an
// expression. Placeholders are identifiers after a colon; "::" is left
// alone so casts inside the text survive.
//
// Example:
//
//	Template{Text: ":tsearch * 2 + :trigram", Args: {"tsearch": ..., "trigram": ...}}
type Template struct {
	Text string
	Args map[string]Expr
}

func (Template) exprNode() {}

// Col is shorthand for a qualified column reference.
func Col(qualifier, name string) Ident {
	return Ident{Qualifier: qualifier, Name: name}
}

// Str is shorthand for a string literal.
func Str(value string) Literal {
	return Literal{Value: value}
}

// Call is shorthand for a function call.
func Call(name string, args ...Expr) Func {
	return Func{Name: name, Args: args}
}

// Join builds an Infix node, collapsing a single operand to itself.
func Join(op string, operands ...Expr) Expr {
	if len(operands) == 1 {
		return operands[0]
	}
	return Infix{Op: op, Operands: operands}
}

// Paren is shorthand for a Group.
func Paren(e Expr) Group {
	return Group{Expr: e}
}
