// Package level holds the catalog of game levels: the expression the player
// starts from and the pool of missile expressions that may fall.
package level

import (
	"errors"
	"fmt"

	"github.com/tomz197/exprmissile/internal/expr"
)

var (
	ErrNoLevels       = errors.New("catalog has no levels")
	ErrEmptyPool      = errors.New("missile pool is empty")
	ErrDegeneratePool = errors.New("missile pool has no candidate distinct from the target")
	ErrUnreachable    = errors.New("missile is not equivalent to the target")
)

// Level is one difficulty tier.
type Level struct {
	Index  int
	Target expr.Expr
	Pool   []expr.Expr
}

// Catalog is an immutable, validated, ordered list of levels.
type Catalog struct {
	levels []Level
}

// New validates levels and returns a catalog. Levels are re-indexed by
// position. Every pool must be non-empty, hold at least one candidate whose
// canonical form differs from the target, and contain only candidates
// equivalent to the target.
func New(levels []Level) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}

	out := make([]Level, len(levels))
	for i, lvl := range levels {
		if err := validate(lvl); err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		out[i] = Level{
			Index:  i,
			Target: lvl.Target,
			Pool:   append([]expr.Expr(nil), lvl.Pool...),
		}
	}
	return &Catalog{levels: out}, nil
}

// MustNew is like New but panics on invalid content.
// Intended for compiled-in catalogs.
func MustNew(levels []Level) *Catalog {
	c, err := New(levels)
	if err != nil {
		panic(err)
	}
	return c
}

func validate(lvl Level) error {
	if len(lvl.Pool) == 0 {
		return ErrEmptyPool
	}

	target, err := expr.Parse(lvl.Target)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	distinct := false
	for _, candidate := range lvl.Pool {
		c, err := expr.Parse(candidate)
		if err != nil {
			return fmt.Errorf("missile %q: %w", candidate, err)
		}
		same, err := expr.Equivalent(target, c)
		if err != nil {
			return fmt.Errorf("missile %q: %w", candidate, err)
		}
		if !same {
			return fmt.Errorf("%w: %q vs %q", ErrUnreachable, candidate, lvl.Target)
		}
		if c.Canonical() != target.Canonical() {
			distinct = true
		}
	}
	if !distinct {
		return ErrDegeneratePool
	}
	return nil
}

// At returns the level for n, clamped to [0, MaxIndex].
func (c *Catalog) At(n int) Level {
	if n < 0 {
		n = 0
	}
	if n > c.MaxIndex() {
		n = c.MaxIndex()
	}
	return c.levels[n]
}

// MaxIndex returns the index of the last level.
func (c *Catalog) MaxIndex() int {
	return len(c.levels) - 1
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}
