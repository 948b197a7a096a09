// Package extconv provides the global conversion functions String, Number,
// Boolean, parseInt, parseFloat, isNaN and isFinite.
package extconv

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/ext/extutil"
	"github.com/sandrolain/cspexpr/pkg/functions"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// All returns all conversion function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		String(),
		Number(),
		Boolean(),
		ParseInt(),
		ParseFloat(),
		IsNaN(),
		IsFinite(),
	}
}

// AllEntries returns All as function entries for evaluator.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	defs := All()
	out := make([]functions.FunctionEntry, len(defs))
	for i, d := range defs {
		out[i] = d
	}
	return out
}

// Globals returns the conversion functions keyed by name.
func Globals() map[string]any {
	out := make(map[string]any)
	for _, d := range All() {
		out[d.Name] = d.Callable()
	}
	return out
}

// String returns the definition for String(value).
func String() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "String",
		Fn: func(_ context.Context, args ...any) (any, error) {
			if len(args) == 0 {
				return "", nil
			}
			return evaluator.ToString(args[0]), nil
		},
	}
}

// Number returns the definition for Number(value).
func Number() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "Number",
		Fn: func(_ context.Context, args ...any) (any, error) {
			if len(args) == 0 {
				return float64(0), nil
			}
			return evaluator.ToNumber(args[0]), nil
		},
	}
}

// Boolean returns the definition for Boolean(value).
func Boolean() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "Boolean",
		Fn: func(_ context.Context, args ...any) (any, error) {
			return evaluator.Truthy(types.Arg(args, 0)), nil
		},
	}
}

// ParseInt returns the definition for parseInt(string, radix).
func ParseInt() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "parseInt",
		Fn: func(_ context.Context, args ...any) (any, error) {
			radix := 0
			if r := types.Arg(args, 1); !types.IsUndefined(r) {
				radix = int(evaluator.ToInt32(r))
			}
			return parseIntPrefix(extutil.Str(args, 0), radix), nil
		},
	}
}

// ParseFloat returns the definition for parseFloat(string).
func ParseFloat() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "parseFloat",
		Fn: func(_ context.Context, args ...any) (any, error) {
			return parseFloatPrefix(extutil.Str(args, 0)), nil
		},
	}
}

// IsNaN returns the definition for isNaN(value).
func IsNaN() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "isNaN",
		Fn: func(_ context.Context, args ...any) (any, error) {
			return math.IsNaN(extutil.Num(args, 0)), nil
		},
	}
}

// IsFinite returns the definition for isFinite(value).
func IsFinite() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name: "isFinite",
		Fn: func(_ context.Context, args ...any) (any, error) {
			f := extutil.Num(args, 0)
			return !math.IsNaN(f) && !math.IsInf(f, 0), nil
		},
	}
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return 99
}

// parseIntPrefix parses the longest integer prefix of s in the given radix.
// Radix 0 means 10, or 16 when s starts with 0x.
func parseIntPrefix(s string, radix int) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	hasHexPrefix := len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
	switch {
	case radix == 0:
		radix = 10
		if hasHexPrefix {
			radix = 16
			s = s[2:]
		}
	case radix < 2 || radix > 36:
		return math.NaN()
	case radix == 16 && hasHexPrefix:
		s = s[2:]
	}

	result := 0.0
	digits := 0
	for _, r := range s {
		d := digitValue(r)
		if d >= radix {
			break
		}
		result = result*float64(radix) + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * result
}

// parseFloatPrefix parses the longest decimal literal prefix of s.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	if strings.HasPrefix(s[end:], "Infinity") {
		return evaluator.ToNumber(s[:end+len("Infinity")])
	}

	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	lit := s[:end]
	if strings.HasSuffix(lit, ".") {
		lit = strings.TrimSuffix(lit, ".")
	}
	return evaluator.ToNumber(lit)
}
