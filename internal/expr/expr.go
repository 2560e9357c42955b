// Package expr parses arithmetic expressions and compares them two ways:
// by canonical form (same written shape) and by equivalence (same value
// everywhere).
package expr

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// Expr is the source text of an expression as authored or typed.
// Supported syntax: numbers, identifiers, + - * / ^ and parentheses.
type Expr string

var (
	// ErrSyntax is returned for text that does not parse.
	ErrSyntax = errors.New("expression syntax")
	// ErrUnsupported is returned for parseable text outside the arithmetic subset.
	ErrUnsupported = errors.New("unsupported expression")
)

// Expression is a parsed, validated expression.
type Expression struct {
	eval  *govaluate.EvaluableExpression
	canon string
	vars  []string // sorted, unique
}

// Parse parses e and computes its canonical form.
func Parse(e Expr) (*Expression, error) {
	text := strings.TrimSpace(string(e))
	if text == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	// govaluate reads ^ as bitwise xor; power is **.
	eval, err := govaluate.NewEvaluableExpression(strings.ReplaceAll(text, "^", "**"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	canon, vars, err := canonical(eval.Tokens())
	if err != nil {
		return nil, fmt.Errorf("%q: %w", text, err)
	}

	return &Expression{
		eval:  eval,
		canon: canon,
		vars:  vars,
	}, nil
}

// Canonicalize parses e and returns its canonical form.
func Canonicalize(e Expr) (string, error) {
	x, err := Parse(e)
	if err != nil {
		return "", err
	}
	return x.Canonical(), nil
}

// Canonical returns the normalized written form. Two expressions share a
// canonical form iff they are written the same way up to spacing and
// numeral formatting.
func (x *Expression) Canonical() string {
	return x.canon
}

// Vars returns the sorted variable names used by the expression.
func (x *Expression) Vars() []string {
	return append([]string(nil), x.vars...)
}

// String implements fmt.Stringer.
func (x *Expression) String() string {
	return x.canon
}

// canonical renders govaluate tokens back to text: additive operators are
// spaced, multiplicative ones and powers are tight.
func canonical(tokens []govaluate.ExpressionToken) (string, []string, error) {
	var b strings.Builder
	seen := make(map[string]struct{})
	var vars []string

	for _, tok := range tokens {
		switch tok.Kind {
		case govaluate.NUMERIC:
			v, ok := tok.Value.(float64)
			if !ok {
				return "", nil, fmt.Errorf("%w: numeric token %v", ErrUnsupported, tok.Value)
			}
			b.WriteString(formatNumber(v))
		case govaluate.VARIABLE:
			name := fmt.Sprint(tok.Value)
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				vars = append(vars, name)
			}
			b.WriteString(name)
		case govaluate.PREFIX:
			if op := fmt.Sprint(tok.Value); op != "-" {
				return "", nil, fmt.Errorf("%w: prefix %q", ErrUnsupported, op)
			}
			b.WriteByte('-')
		case govaluate.MODIFIER:
			switch op := fmt.Sprint(tok.Value); op {
			case "+", "-":
				b.WriteString(" " + op + " ")
			case "*", "/":
				b.WriteString(op)
			case "**":
				b.WriteByte('^')
			default:
				return "", nil, fmt.Errorf("%w: operator %q", ErrUnsupported, op)
			}
		case govaluate.CLAUSE:
			b.WriteByte('(')
		case govaluate.CLAUSE_CLOSE:
			b.WriteByte(')')
		default:
			return "", nil, fmt.Errorf("%w: %s token", ErrUnsupported, tok.Kind.String())
		}
	}

	sort.Strings(vars)
	return b.String(), vars, nil
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
