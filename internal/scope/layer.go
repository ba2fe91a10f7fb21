package scope

// QueryLayer describes what the persistence layer that runs the fragment
// can do.
type QueryLayer interface {
	// SupportsJoins reports whether join clauses can be attached to the
	// surrounding query.
	SupportsJoins() bool
}

// Capabilities is a value QueryLayer.
type Capabilities struct {
	Joins bool
}

// SupportsJoins implements QueryLayer.
func (c Capabilities) SupportsJoins() bool { return c.Joins }

// FullLayer supports everything the compiler can emit.
var FullLayer QueryLayer = Capabilities{Joins: true}
