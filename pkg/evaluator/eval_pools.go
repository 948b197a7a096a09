package evaluator

import (
	"bytes"
	"sync"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// bufPool holds the buffers used by template literals and array joins.
// Each caller owns a buffer exclusively between acquireBuf and releaseBuf.
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// acquireBuf returns a reset buffer from the pool.
func acquireBuf() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// releaseBuf returns a buffer to the pool. Buffers that grew past 64 KB are
// dropped so the pool does not pin large allocations.
func releaseBuf(b *bytes.Buffer) {
	if b.Cap() <= 64*1024 {
		bufPool.Put(b)
	}
}

// joinValues converts the elements of arr with ToString and joins them with
// sep. null and undefined elements become empty strings.
func joinValues(arr []any, sep string) string {
	return joinSeen(arr, sep, nil)
}

// joinSeen is joinValues with the set of arrays already being joined further
// up the stack. An array reached again renders as an empty string. Arrays are
// identified by their first element, so empty arrays are never tracked.
func joinSeen(arr []any, sep string, seen map[*any]struct{}) string {
	if len(arr) == 0 {
		return ""
	}
	id := &arr[0]
	if _, ok := seen[id]; ok {
		return ""
	}
	if seen == nil {
		seen = make(map[*any]struct{})
	}
	seen[id] = struct{}{}
	defer delete(seen, id)

	b := acquireBuf()
	defer releaseBuf(b)
	for i, item := range arr {
		if i > 0 {
			b.WriteString(sep)
		}
		switch t := item.(type) {
		case []any:
			b.WriteString(joinSeen(t, ",", seen))
		default:
			if !types.IsNullish(item) {
				b.WriteString(ToString(item))
			}
		}
	}
	return b.String()
}
