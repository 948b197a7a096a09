// Package extjson provides the JSON global object: JSON.stringify and
// JSON.parse backed by github.com/goccy/go-json.
package extjson

import (
	"bytes"
	"context"
	"math"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/ext/extutil"
	"github.com/sandrolain/cspexpr/pkg/functions"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// maxNesting stops stringify on self-referencing structures.
const maxNesting = 1000

// Globals returns the JSON object.
func Globals() map[string]any {
	return map[string]any{"JSON": JSON()}
}

// JSON returns a new JSON object.
func JSON() *types.Object {
	return functions.Namespace(
		[]string{"stringify", "parse"},
		map[string]any{
			"stringify": types.NativeFunc(stringify),
			"parse":     types.NativeFunc(parse),
		},
	)
}

func stringify(_ context.Context, _ any, args []any) (any, error) {
	s, ok, err := Stringify(types.Arg(args, 0), indentArg(types.Arg(args, 2)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.Undefined, nil
	}
	return s, nil
}

func parse(_ context.Context, _ any, args []any) (any, error) {
	return Parse(extutil.Str(args, 0))
}

// indentArg mirrors the space argument of JSON.stringify: a number of
// spaces capped at 10, or the first 10 characters of a string.
func indentArg(v any) string {
	switch t := v.(type) {
	case string:
		if len(t) > 10 {
			return t[:10]
		}
		return t
	}
	if evaluator.TypeOf(v) == "number" {
		n := evaluator.ToIntegerOrInfinity(v)
		if n < 1 {
			return ""
		}
		return strings.Repeat(" ", int(math.Min(n, 10)))
	}
	return ""
}

// Stringify encodes v as JSON text. Object keys keep their enumeration
// order. The boolean result is false when v has no JSON representation
// (undefined or a function), in which case JSON.stringify yields undefined.
func Stringify(v any, indent string) (string, bool, error) {
	enc := encoder{indent: indent}
	ok, err := enc.encode(v, 0)
	if err != nil || !ok {
		return "", false, err
	}
	return enc.buf.String(), true, nil
}

// Parse decodes JSON text. Objects decode to map[string]any, numbers to
// float64.
func Parse(text string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, types.Errorf(types.KindSyntax, "Unexpected token in JSON: %s", err.Error()).WithCause(err)
	}
	return out, nil
}

// marshal encodes v without HTML escaping. JSON.stringify leaves <, > and &
// as they are.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type encoder struct {
	buf    bytes.Buffer
	indent string
}

func skipped(v any) bool {
	t := evaluator.TypeOf(v)
	return t == "undefined" || t == "function"
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *encoder) encode(v any, depth int) (bool, error) {
	if depth > maxNesting {
		return false, types.NewError(types.KindType, "Converting circular structure to JSON")
	}
	if skipped(v) {
		return false, nil
	}

	switch t := v.(type) {
	case nil:
		e.buf.WriteString("null")
		return true, nil
	case bool:
		if t {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
		return true, nil
	case string:
		b, err := marshal(t)
		if err != nil {
			return false, err
		}
		e.buf.Write(b)
		return true, nil
	case []any:
		return true, e.encodeArray(t, depth)
	case map[string]any, *types.Object, types.PropertyGetter:
		return true, e.encodeObject(v, depth)
	}

	if evaluator.TypeOf(v) == "number" {
		f := evaluator.ToNumber(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			e.buf.WriteString("null")
		} else {
			e.buf.WriteString(evaluator.FormatNumber(f))
		}
		return true, nil
	}

	// Other Go values (structs, typed slices and maps) go through the
	// library encoder and are re-indented to the current level.
	b, err := marshal(v)
	if err != nil {
		return false, types.Errorf(types.KindType, "cannot serialize value: %s", err.Error()).WithCause(err)
	}
	if e.indent == "" {
		e.buf.Write(b)
		return true, nil
	}
	prefix := strings.Repeat(e.indent, depth)
	if err := json.Indent(&e.buf, b, prefix, e.indent); err != nil {
		return false, err
	}
	return true, nil
}

func (e *encoder) encodeArray(arr []any, depth int) error {
	if len(arr) == 0 {
		e.buf.WriteString("[]")
		return nil
	}
	e.buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		ok, err := e.encode(item, depth+1)
		if err != nil {
			return err
		}
		if !ok {
			e.buf.WriteString("null")
		}
	}
	e.newline(depth)
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) encodeObject(obj any, depth int) error {
	written := 0
	e.buf.WriteByte('{')
	for _, key := range evaluator.OwnKeys(obj) {
		val, err := evaluator.GetMember(obj, key)
		if err != nil {
			return err
		}
		if skipped(val) {
			continue
		}
		if written > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		kb, err := marshal(key)
		if err != nil {
			return err
		}
		e.buf.Write(kb)
		e.buf.WriteByte(':')
		if e.indent != "" {
			e.buf.WriteByte(' ')
		}
		if _, err := e.encode(val, depth+1); err != nil {
			return err
		}
		written++
	}
	if written > 0 {
		e.newline(depth)
	}
	e.buf.WriteByte('}')
	return nil
}
