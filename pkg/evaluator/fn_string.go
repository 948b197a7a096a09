package evaluator

import (
	"context"
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// Strings are indexed in UTF-16 code units, as in JavaScript.

func toUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func fromUTF16(u []uint16) string {
	return string(utf16.Decode(u))
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func indexUnits(s, sub []uint16, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(sub) <= len(s); i++ {
		if equalUnits(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func lastIndexUnits(s, sub []uint16, from int) int {
	if from > len(s)-len(sub) {
		from = len(s) - len(sub)
	}
	for i := from; i >= 0; i-- {
		if equalUnits(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func equalUnits(a, b []uint16) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// relativeIndex resolves a possibly negative position against length, as
// slice() does.
func relativeIndex(v any, length int, def int) int {
	if types.IsUndefined(v) {
		return def
	}
	f := ToIntegerOrInfinity(v)
	if f < 0 {
		f = math.Max(float64(length)+f, 0)
	}
	return int(math.Min(f, float64(length)))
}

// clampIndex clamps a position to [0, length], as substring() does.
func clampIndex(v any, length int, def int) int {
	if types.IsUndefined(v) {
		return def
	}
	f := ToIntegerOrInfinity(v)
	return int(math.Min(math.Max(f, 0), float64(length)))
}

// thisString returns the receiver of a string method.
func thisString(name string, this any) (string, error) {
	if s, ok := this.(string); ok {
		return s, nil
	}
	if types.IsNullish(this) {
		return "", types.Errorf(types.KindType, "String.prototype.%s called on null or undefined", name)
	}
	return ToString(this), nil
}

// stringMethod adapts a method body that only needs the receiver as a string.
func stringMethod(name string, fn func(s string, args []any) (any, error)) types.NativeFunc {
	return func(_ context.Context, this any, args []any) (any, error) {
		s, err := thisString(name, this)
		if err != nil {
			return nil, err
		}
		return fn(s, args)
	}
}

var stringMethods map[string]types.NativeFunc

func init() {
	stringMethods = map[string]types.NativeFunc{
		"charAt": stringMethod("charAt", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			i := ToIntegerOrInfinity(types.Arg(args, 0))
			if i < 0 || i >= float64(len(u)) {
				return "", nil
			}
			return fromUTF16(u[int(i) : int(i)+1]), nil
		}),
		"charCodeAt": stringMethod("charCodeAt", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			i := ToIntegerOrInfinity(types.Arg(args, 0))
			if i < 0 || i >= float64(len(u)) {
				return math.NaN(), nil
			}
			return float64(u[int(i)]), nil
		}),
		"at": stringMethod("at", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			i := ToIntegerOrInfinity(types.Arg(args, 0))
			if i < 0 {
				i += float64(len(u))
			}
			if i < 0 || i >= float64(len(u)) {
				return types.Undefined, nil
			}
			return fromUTF16(u[int(i) : int(i)+1]), nil
		}),
		"indexOf": stringMethod("indexOf", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			from := clampIndex(types.Arg(args, 1), len(u), 0)
			return float64(indexUnits(u, toUTF16(ToString(types.Arg(args, 0))), from)), nil
		}),
		"lastIndexOf": stringMethod("lastIndexOf", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			from := len(u)
			if pos := types.Arg(args, 1); !types.IsUndefined(pos) {
				if f := ToNumber(pos); !math.IsNaN(f) {
					from = clampIndex(f, len(u), len(u))
				}
			}
			return float64(lastIndexUnits(u, toUTF16(ToString(types.Arg(args, 0))), from)), nil
		}),
		"includes": stringMethod("includes", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			from := clampIndex(types.Arg(args, 1), len(u), 0)
			return indexUnits(u, toUTF16(ToString(types.Arg(args, 0))), from) >= 0, nil
		}),
		"startsWith": stringMethod("startsWith", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			from := clampIndex(types.Arg(args, 1), len(u), 0)
			sub := toUTF16(ToString(types.Arg(args, 0)))
			return from+len(sub) <= len(u) && equalUnits(u[from:from+len(sub)], sub), nil
		}),
		"endsWith": stringMethod("endsWith", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			end := clampIndex(types.Arg(args, 1), len(u), len(u))
			sub := toUTF16(ToString(types.Arg(args, 0)))
			start := end - len(sub)
			return start >= 0 && equalUnits(u[start:end], sub), nil
		}),
		"slice": stringMethod("slice", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			start := relativeIndex(types.Arg(args, 0), len(u), 0)
			end := relativeIndex(types.Arg(args, 1), len(u), len(u))
			if start >= end {
				return "", nil
			}
			return fromUTF16(u[start:end]), nil
		}),
		"substring": stringMethod("substring", func(s string, args []any) (any, error) {
			u := toUTF16(s)
			start := clampIndex(types.Arg(args, 0), len(u), 0)
			end := clampIndex(types.Arg(args, 1), len(u), len(u))
			if start > end {
				start, end = end, start
			}
			return fromUTF16(u[start:end]), nil
		}),
		"toUpperCase": stringMethod("toUpperCase", func(s string, _ []any) (any, error) {
			return strings.ToUpper(s), nil
		}),
		"toLowerCase": stringMethod("toLowerCase", func(s string, _ []any) (any, error) {
			return strings.ToLower(s), nil
		}),
		"trim": stringMethod("trim", func(s string, _ []any) (any, error) {
			return strings.TrimSpace(s), nil
		}),
		"trimStart": stringMethod("trimStart", func(s string, _ []any) (any, error) {
			return strings.TrimLeftFunc(s, isWhitespace), nil
		}),
		"trimEnd": stringMethod("trimEnd", func(s string, _ []any) (any, error) {
			return strings.TrimRightFunc(s, isWhitespace), nil
		}),
		"split": stringMethod("split", splitString),
		"repeat": stringMethod("repeat", func(s string, args []any) (any, error) {
			n := ToIntegerOrInfinity(types.Arg(args, 0))
			if n < 0 || math.IsInf(n, 0) {
				return nil, types.Errorf(types.KindRange, "Invalid count value: %s", FormatNumber(n))
			}
			if s == "" || n == 0 {
				return "", nil
			}
			if float64(len(s))*n > MaxLength {
				return nil, types.NewError(types.KindRange, "Invalid string length")
			}
			return strings.Repeat(s, int(n)), nil
		}),
		"padStart": stringMethod("padStart", func(s string, args []any) (any, error) {
			return pad(s, args, true)
		}),
		"padEnd": stringMethod("padEnd", func(s string, args []any) (any, error) {
			return pad(s, args, false)
		}),
		"concat": stringMethod("concat", func(s string, args []any) (any, error) {
			var sb strings.Builder
			sb.WriteString(s)
			for _, a := range args {
				sb.WriteString(ToString(a))
			}
			return sb.String(), nil
		}),
		"toString": stringMethod("toString", func(s string, _ []any) (any, error) {
			return s, nil
		}),
		"valueOf": stringMethod("valueOf", func(s string, _ []any) (any, error) {
			return s, nil
		}),
		"replace": func(ctx context.Context, this any, args []any) (any, error) {
			s, err := thisString("replace", this)
			if err != nil {
				return nil, err
			}
			return replaceString(ctx, s, args, false)
		},
		"replaceAll": func(ctx context.Context, this any, args []any) (any, error) {
			s, err := thisString("replaceAll", this)
			if err != nil {
				return nil, err
			}
			return replaceString(ctx, s, args, true)
		},
	}
}

func isWhitespace(r rune) bool {
	return strings.TrimSpace(string(r)) == ""
}

func splitString(s string, args []any) (any, error) {
	limit := math.MaxInt32
	if l := types.Arg(args, 1); !types.IsUndefined(l) {
		limit = int(ToUint32(l))
	}

	var parts []string
	sep := types.Arg(args, 0)
	switch {
	case types.IsUndefined(sep):
		parts = []string{s}
	case ToString(sep) == "":
		u := toUTF16(s)
		parts = make([]string, len(u))
		for i := range u {
			parts[i] = fromUTF16(u[i : i+1])
		}
	default:
		parts = strings.Split(s, ToString(sep))
	}

	if len(parts) > limit {
		parts = parts[:limit]
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func pad(s string, args []any, start bool) (string, error) {
	n := ToIntegerOrInfinity(types.Arg(args, 0))
	filler := " "
	if f := types.Arg(args, 1); !types.IsUndefined(f) {
		filler = ToString(f)
	}
	u := toUTF16(s)
	if n <= float64(len(u)) || filler == "" {
		return s, nil
	}
	if n > MaxLength {
		return "", types.NewError(types.KindRange, "Invalid string length")
	}
	target := int(n)

	fu := toUTF16(filler)
	need := target - len(u)
	padding := make([]uint16, 0, need)
	for len(padding) < need {
		padding = append(padding, fu...)
	}
	padding = padding[:need]

	if start {
		return fromUTF16(padding) + s, nil
	}
	return s + fromUTF16(padding), nil
}

// replaceString implements replace and replaceAll with a string pattern.
// The replacement is either a string or a function called with the match,
// its offset and the whole string.
func replaceString(ctx context.Context, s string, args []any, all bool) (any, error) {
	pattern := ToString(types.Arg(args, 0))
	replacement := types.Arg(args, 1)
	fn := asCallable(replacement)

	var sb strings.Builder
	rest := s
	offset := 0
	for {
		i := strings.Index(rest, pattern)
		if i < 0 {
			break
		}
		sb.WriteString(rest[:i])

		if fn != nil {
			pos := utf16Len(s[:offset+i])
			v, err := fn.Call(ctx, types.Undefined, []any{pattern, float64(pos), s})
			if err != nil {
				return nil, err
			}
			sb.WriteString(ToString(v))
		} else {
			sb.WriteString(ToString(replacement))
		}

		advance := i + len(pattern)
		if pattern == "" {
			// An empty pattern matches between every character.
			if i >= len(rest) {
				rest = ""
				offset += i
				break
			}
			_, w := utf8.DecodeRuneInString(rest[i:])
			sb.WriteString(rest[i : i+w])
			advance = i + w
		}
		rest = rest[advance:]
		offset += advance

		if !all {
			break
		}
	}
	sb.WriteString(rest)
	return sb.String(), nil
}
