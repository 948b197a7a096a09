package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/cspexpr/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, a args) (string, error) {
	t.Helper()
	if a.Timeout == 0 {
		a.Timeout = time.Second
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), a, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_JSONAndYAMLScopes(t *testing.T) {
	item := writeFile(t, "item.json", `{"price": 2.5, "name": "pen"}`)
	page := writeFile(t, "page.yaml", "qty: 4\nname: page\n")

	out, err := runCLI(t, args{
		Scope:      []string{item, page},
		Expression: "`${name}: ${price * qty}`",
	})
	require.NoError(t, err)
	assert.Equal(t, "\"pen: 10\"\n", out)
}

func TestRun_GlobalScope(t *testing.T) {
	global := writeFile(t, "global.json", `{"currency": "EUR"}`)

	out, err := runCLI(t, args{
		Global:     global,
		Expression: "[currency, Math.max(1, 3)]",
	})
	require.NoError(t, err)
	assert.Equal(t, "[\"EUR\",3]\n", out)
}

func TestRun_IndentedObject(t *testing.T) {
	out, err := runCLI(t, args{
		Indent:     2,
		Expression: "{ b: 1, a: [true] }",
	})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}\n", out)
}

func TestRun_Undefined(t *testing.T) {
	out, err := runCLI(t, args{Expression: "undefined"})
	require.NoError(t, err)
	assert.Equal(t, "undefined\n", out)
}

func TestRun_AST(t *testing.T) {
	out, err := runCLI(t, args{AST: true, Expression: "a + 1"})
	require.NoError(t, err)
	assert.Contains(t, out, "BinaryExpression")
}

func TestRun_Errors(t *testing.T) {
	_, err := runCLI(t, args{Expression: "a +"})
	require.Error(t, err)
	assert.True(t, types.IsSyntaxError(err))

	_, err = runCLI(t, args{Expression: "missing"})
	require.Error(t, err)
	assert.True(t, types.IsReferenceError(err))

	_, err = runCLI(t, args{Scope: []string{filepath.Join(t.TempDir(), "nope.json")}, Expression: "1"})
	require.Error(t, err)

	bad := writeFile(t, "global.json", `[1, 2]`)
	_, err = runCLI(t, args{Global: bad, Expression: "1"})
	assert.ErrorContains(t, err, "expected an object")
}

func TestRun_Stream(t *testing.T) {
	base := writeFile(t, "base.json", `{"rate": 2}`)
	input := "{\"n\": 1}\n{\"n\": 2}\n{\"m\": 3}\n"

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args{
		Scope:      []string{base},
		Stream:     true,
		Indent:     2,
		Timeout:    time.Second,
		Expression: "{ n, total: n * rate }",
	}, strings.NewReader(input), &stdout, &stderr)

	assert.EqualError(t, err, "1 of 3 documents failed")
	assert.Equal(t, "{\"n\":1,\"total\":2}\n{\"n\":2,\"total\":4}\n", stdout.String())
	assert.Contains(t, stderr.String(), "document failed")
}
