package evaluator

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// Value coercions follow the ECMAScript abstract operations (ToBoolean,
// ToNumber, ToString, ToPrimitive, IsStrictlyEqual, IsLooselyEqual) over the
// Go value model: nil is null, types.Undefined is undefined, and any Go
// numeric kind is a number.

// toFloat converts any Go numeric kind to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}

// Truthy reports whether v converts to true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if types.IsUndefined(v) {
		return false
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	// Objects, arrays and functions, empty or not
	return true
}

// ToNumber converts v to a number.
func ToNumber(v any) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return stringToNumber(t)
	}
	if types.IsUndefined(v) {
		return math.NaN()
	}
	if p := toPrimitive(v); !isObjectLike(p) {
		return ToNumber(p)
	}
	return math.NaN()
}

// stringToNumber parses a numeric string the way Number(s) does: surrounding
// whitespace is ignored, the empty string is 0 and anything else that is not
// a complete decimal, hexadecimal or Infinity literal is NaN.
func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	// ParseFloat accepts forms such as "inf", "0x1p3" and "1_000" that are
	// not numeric strings; only plain decimal literals get through.
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// ToInt32 converts v to a signed 32-bit integer with wrap-around.
func ToInt32(v any) int32 {
	return int32(ToUint32(v))
}

// ToUint32 converts v to an unsigned 32-bit integer with wrap-around.
func ToUint32(v any) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

// ToIntegerOrInfinity truncates v toward zero; NaN becomes 0.
func ToIntegerOrInfinity(v any) float64 {
	f := ToNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	return math.Trunc(f)
}

// MaxLength bounds the length of strings and arrays built from a count in
// the expression, such as repeat, padStart or Array(n). Longer results fail
// with a RangeError instead of attempting the allocation.
const MaxLength = 1 << 29

// clampInt converts an integral float to int, clamping to the int32 range.
// Infinities clamp to the matching bound; NaN becomes 0.
func clampInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

// ToString converts v to a string.
func ToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		return joinValues(t, ",")
	case *Closure:
		return t.String()
	}
	if types.IsUndefined(v) {
		return "undefined"
	}
	if f, ok := toFloat(v); ok {
		return FormatNumber(f)
	}
	if asCallable(v) != nil {
		return "function () { [native code] }"
	}
	if s, ok := v.(interface{ String() string }); ok && !isObjectLike(v) {
		return s.String()
	}
	return "[object Object]"
}

// FormatNumber renders a number the way JavaScript's Number.prototype.toString does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits (1e-07); JavaScript does not.
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toPrimitive converts arrays and objects to their string form; primitives
// are returned unchanged.
func toPrimitive(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	if isObjectLike(v) {
		return ToString(v)
	}
	return v
}

// isObjectLike reports whether v is an object, array or function.
func isObjectLike(v any) bool {
	switch v.(type) {
	case nil, bool, string:
		return false
	case map[string]any, []any, *types.Object, types.PropertyGetter, types.Callable:
		return true
	}
	if types.IsUndefined(v) {
		return false
	}
	if _, ok := toFloat(v); ok {
		return false
	}
	return true
}

// TypeOf implements the typeof operator.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "object"
	case bool:
		return "boolean"
	case string:
		return "string"
	}
	if types.IsUndefined(v) {
		return "undefined"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	if asCallable(v) != nil {
		return "function"
	}
	return "object"
}

// StrictEqual implements ===.
func StrictEqual(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	if types.IsUndefined(a) {
		return types.IsUndefined(b)
	}
	return sameReference(a, b)
}

// sameReference compares object identity. Maps, slices and funcs are not
// comparable with ==, so their identity is the underlying pointer.
func sameReference(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Type().Comparable() {
		return a == b
	}
	return false
}

// LooseEqual implements ==.
func LooseEqual(a, b any) bool {
	for i := 0; i < 4; i++ {
		if sameCategory(a, b) {
			return StrictEqual(a, b)
		}

		if types.IsNullish(a) || types.IsNullish(b) {
			return types.IsNullish(a) && types.IsNullish(b)
		}

		switch {
		case isObjectLike(a):
			a = toPrimitive(a)
			continue
		case isObjectLike(b):
			b = toPrimitive(b)
			continue
		}

		if ab, ok := a.(bool); ok {
			a = ToNumber(ab)
			continue
		}
		if bb, ok := b.(bool); ok {
			b = ToNumber(bb)
			continue
		}

		// One string, one number
		return ToNumber(a) == ToNumber(b)
	}
	return false
}

// sameCategory reports whether a and b have the same JavaScript type.
func sameCategory(a, b any) bool {
	ta, tb := TypeOf(a), TypeOf(b)
	if ta == "function" {
		ta = "object"
	}
	if tb == "function" {
		tb = "object"
	}
	if ta != tb {
		return false
	}
	// typeof null is "object" but null is its own type.
	return (a == nil) == (b == nil)
}

// describeValue names a value's type for error messages.
func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	return TypeOf(v)
}

// sortedKeys returns the keys of m in lexical order. Plain Go maps carry no
// insertion order, so key enumeration over them is sorted for determinism.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OwnKeys returns the enumerable keys of an object-like value, in the order
// Object.keys reports them.
func OwnKeys(v any) []string {
	switch o := v.(type) {
	case map[string]any:
		return sortedKeys(o)
	case *types.Object:
		return o.Keys()
	case []any:
		keys := make([]string, len(o))
		for i := range o {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case string:
		n := utf16Len(o)
		keys := make([]string, n)
		for i := 0; i < n; i++ {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case interface{ Keys() []string }:
		return o.Keys()
	}
	return nil
}
