package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// samplePoints are the base values variables take when fingerprinting.
// Variable i at sample k is samplePoints[k] + i*sampleStride.
var samplePoints = [...]float64{1.37, 2.71, 3.1415}

const (
	sampleStride = 0.61
	sampleDigits = 10
)

// Equivalent reports whether a and b take the same value at every sample
// point. Rewrites that preserve value (commuting, expanding, collecting
// terms) are equivalent; the player may only move between equivalent forms.
func Equivalent(a, b *Expression) (bool, error) {
	vars := unionVars(a.vars, b.vars)
	fa, err := a.fingerprint(vars)
	if err != nil {
		return false, err
	}
	fb, err := b.fingerprint(vars)
	if err != nil {
		return false, err
	}
	return fa == fb, nil
}

// Fingerprint returns the expression's values at the sample points, rounded
// and joined. Equivalent expressions over the same variables share it.
func (x *Expression) Fingerprint() (string, error) {
	return x.fingerprint(x.vars)
}

func (x *Expression) fingerprint(vars []string) (string, error) {
	parts := make([]string, 0, len(samplePoints))
	for k := range samplePoints {
		params := make(map[string]interface{}, len(vars))
		for i, name := range vars {
			params[name] = samplePoints[k] + float64(i)*sampleStride
		}

		v, err := x.Value(params)
		if err != nil {
			return "", err
		}
		parts = append(parts, formatSample(v))
	}
	return strings.Join(parts, "|"), nil
}

// Value evaluates the expression with the given variable bindings.
func (x *Expression) Value(params map[string]interface{}) (float64, error) {
	out, err := x.eval.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", x.canon, err)
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("evaluate %q: %w: result %T", x.canon, ErrUnsupported, out)
	}
	return v, nil
}

func formatSample(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', sampleDigits, 64)
}

func unionVars(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
