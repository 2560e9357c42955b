package level

import "github.com/tomz197/exprmissile/internal/expr"

// DefaultLevels is the built-in campaign. Later levels reuse the last entry.
var DefaultLevels = []Level{
	{
		Target: "1 + 2 + 3",
		Pool:   []expr.Expr{"3 + 3", "1 + 5", "6", "2 + 1 + 3", "3 + 2 + 1"},
	},
	{
		Target: "2*(x + 3)",
		Pool:   []expr.Expr{"2*x + 6", "2*x + 2*3", "(x + 3)*2", "2*(3 + x)", "6 + 2*x"},
	},
	{
		Target: "3*x + 2*x - x",
		Pool:   []expr.Expr{"4*x", "5*x - x", "3*x + x", "x*4", "2*x + 2*x"},
	},
	{
		Target: "(x + 1)*(x + 1)",
		Pool:   []expr.Expr{"x^2 + 2*x + 1", "(x + 1)^2", "x*x + 2*x + 1", "x*(x + 1) + x + 1", "x^2 + x + x + 1"},
	},
	{
		Target: "(a + b)*(a - b)",
		Pool:   []expr.Expr{"a^2 - b^2", "a*a - b*b", "a*(a - b) + b*(a - b)", "(a - b)*(a + b)", "a^2 - a*b + a*b - b^2"},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return MustNew(DefaultLevels)
}
