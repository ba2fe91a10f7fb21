package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pgsearch/internal/sqlast"
	"github.com/roach88/pgsearch/internal/sqlrender"
)

// SQL renders expr and fails the test if it cannot be rendered.
func SQL(t testing.TB, expr sqlast.Expr) string {
	t.Helper()
	out, err := sqlrender.Render(expr)
	require.NoError(t, err)
	return out
}
