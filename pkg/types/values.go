package types

import (
	"bytes"
	"context"
	"sort"

	json "github.com/goccy/go-json"
)

// undefinedType is the type of Undefined.
type undefinedType struct{}

// Undefined is the JavaScript undefined value. Go nil stands for null.
var Undefined = undefinedType{}

// String returns "undefined".
func (undefinedType) String() string { return "undefined" }

// MarshalJSON encodes undefined as null.
func (undefinedType) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedType)
	return ok
}

// IsNullish reports whether v is null (nil) or Undefined.
func IsNullish(v any) bool {
	return v == nil || IsUndefined(v)
}

// PropertyGetter is implemented by scope and member values that are not plain maps.
// The boolean result reports whether the key is present.
type PropertyGetter interface {
	Get(key string) (any, bool)
}

// PropertySetter is implemented by values that accept assignment.
type PropertySetter interface {
	Set(key string, value any) error
}

// Callable is a function value invocable from expressions.
type Callable interface {
	Call(ctx context.Context, this any, args []any) (any, error)
}

// Constructor is a value usable as the target of new.
type Constructor interface {
	Construct(ctx context.Context, args []any) (any, error)
}

// InstanceChecker is the right-hand side of instanceof.
type InstanceChecker interface {
	HasInstance(v any) bool
}

// NativeFunc adapts a Go function to Callable.
type NativeFunc func(ctx context.Context, this any, args []any) (any, error)

// Call implements Callable.
func (f NativeFunc) Call(ctx context.Context, this any, args []any) (any, error) {
	return f(ctx, this, args)
}

// Arg returns args[i] or Undefined when i is out of range.
func Arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// Object is an insertion-ordered string-keyed object. Object literals evaluate
// to *Object so that key order survives serialization.
type Object struct {
	keys   []string
	values map[string]any
	frozen bool
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectFromMap copies m into a new object with its keys in sorted order.
func ObjectFromMap(m map[string]any) *Object {
	o := &Object{
		keys:   make([]string, 0, len(m)),
		values: make(map[string]any, len(m)),
	}
	for k, v := range m {
		o.keys = append(o.keys, k)
		o.values[k] = v
	}
	sort.Strings(o.keys)
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key. An existing key keeps its position.
// A frozen object refuses every write with a TypeError.
func (o *Object) Set(key string, value any) error {
	if o.frozen {
		return Errorf(KindType, "Cannot assign to read only property '%s' of object", key)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return nil
}

// Put is Set without an error result.
func (o *Object) Put(key string, value any) *Object {
	_ = o.Set(key, value)
	return o
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Freeze makes the object read-only. Frozen objects can be shared by
// concurrent evaluations.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

// Frozen reports whether Freeze was called.
func (o *Object) Frozen() bool {
	return o.frozen
}

// Delete removes key. Frozen objects are left unchanged.
func (o *Object) Delete(key string) {
	if o.frozen {
		return
	}
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// ToMap returns a shallow copy as a plain map.
func (o *Object) ToMap() map[string]any {
	m := make(map[string]any, len(o.values))
	for k, v := range o.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
