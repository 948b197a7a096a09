// Command cspexpr evaluates an expression against JSON or YAML scope files
// and prints the result as JSON.
//
// Usage:
//
//	cspexpr [--scope FILE]... [--global FILE] [--ast] [--stream] [--debug] EXPRESSION
//
// Scope files are given innermost first. Files ending in .yaml or .yml are
// read as YAML, anything else as JSON.
//
//	cspexpr --scope item.json --scope page.yaml 'item.price * page.qty'
//
// With --stream, each JSON document on stdin becomes the innermost scope in
// turn and the results are printed as NDJSON.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	arg "github.com/alexflint/go-arg"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/kr/pretty"

	"github.com/sandrolain/cspexpr"
	"github.com/sandrolain/cspexpr/pkg/evaluator"
	"github.com/sandrolain/cspexpr/pkg/ext"
	"github.com/sandrolain/cspexpr/pkg/ext/extjson"
	"github.com/sandrolain/cspexpr/pkg/types"
)

type args struct {
	Scope      []string      `arg:"-s,--scope,separate" help:"scope file (JSON or YAML), innermost first"`
	Global     string        `arg:"-g,--global" help:"file merged into the global scope"`
	AST        bool          `arg:"--ast" help:"print the parsed syntax tree instead of evaluating"`
	Stream     bool          `arg:"--stream" help:"evaluate once per JSON document read from stdin, printing one result per line"`
	Debug      bool          `arg:"--debug" help:"log evaluation steps to stderr"`
	Indent     int           `arg:"--indent" default:"2" help:"spaces used to indent the JSON result"`
	Timeout    time.Duration `arg:"--timeout" default:"30s" help:"evaluation timeout"`
	Expression string        `arg:"positional,required" help:"expression to evaluate"`
}

func (args) Version() string {
	return "cspexpr " + cspexpr.Version()
}

func (args) Description() string {
	return "Evaluates a binding expression without dynamic code execution."
}

func main() {
	var a args
	arg.MustParse(&a)

	if err := run(context.Background(), a, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a args, stdin io.Reader, stdout, stderr io.Writer) error {
	level := slog.LevelInfo
	if a.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []evaluator.EvalOption{
		ext.WithAll(),
		evaluator.WithLogger(logger),
		evaluator.WithDebug(a.Debug),
		evaluator.WithTimeout(a.Timeout),
	}
	if a.Global != "" {
		global, err := loadScope(a.Global)
		if err != nil {
			return err
		}
		m, ok := global.(map[string]any)
		if !ok {
			return fmt.Errorf("global scope %s: expected an object", a.Global)
		}
		opts = append(opts, evaluator.WithGlobalScope(m))
	}

	ev := evaluator.New(opts...)
	h, err := ev.CreateEvaluator(a.Expression)
	if err != nil {
		return err
	}

	if a.AST {
		_, err := pretty.Fprintf(stdout, "%# v\n", h.Expression().AST())
		return err
	}

	scopes := make([]any, 0, len(a.Scope))
	for _, path := range a.Scope {
		s, err := loadScope(path)
		if err != nil {
			return err
		}
		scopes = append(scopes, s)
	}

	if a.Stream {
		return stream(ctx, ev, h.Expression(), scopes, stdin, stdout, logger)
	}

	result, err := h.Evaluate(ctx, scopes...)
	if err != nil {
		return err
	}
	return printResult(stdout, result, strings.Repeat(" ", a.Indent))
}

// stream evaluates expr for every document on stdin. Failed documents are
// logged and counted; the remaining documents are still evaluated.
func stream(ctx context.Context, ev *evaluator.Evaluator, expr *types.Expression, scopes []any, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	ch, err := ev.EvalStream(ctx, expr, stdin, scopes...)
	if err != nil {
		return err
	}

	var total, failed int
	for res := range ch {
		total++
		if res.Err != nil {
			failed++
			logger.Error("document failed", "index", total-1, "error", res.Err)
			continue
		}
		if err := printResult(stdout, res.Value, ""); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, total)
	}
	return ctx.Err()
}

func printResult(w io.Writer, result any, indent string) error {
	out, ok, err := extjson.Stringify(result, indent)
	if err != nil {
		return err
	}
	if !ok {
		out = types.Undefined.String()
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// loadScope decodes a scope file by extension.
func loadScope(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scope: %w", err)
	}

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding scope %s: %w", path, err)
	}
	return v, nil
}
