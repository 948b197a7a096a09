package evaluator

// Package evaluator implements the tree-walking expression evaluator.
//
// The evaluator receives a parsed AST from the parser and evaluates it
// against a scope chain: an ordered list of scope objects, innermost first,
// followed by the evaluator's global scope. It never executes host code
// dynamically; every construct is interpreted node by node. It supports:
//   - Identifier resolution through the scope chain
//   - Member access, optional chaining and method calls with "this" binding
//   - JavaScript operator and coercion semantics
//   - Closures from arrow functions and function expressions
//   - Assignment into scope objects
//   - Timeout and cancellation via context.Context
//
// # Example
//
//	ev := evaluator.New()
//	h, err := ev.CreateEvaluator("user.name.toUpperCase()")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := h.Evaluate(ctx, viewModel, parentContext)
//
// # Concurrency
//
// An Evaluator and its Handles are safe for concurrent use. Scope objects are
// not synchronized: concurrent evaluations that assign into the same scope
// must be coordinated by the caller.

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandrolain/cspexpr/pkg/cache"
	"github.com/sandrolain/cspexpr/pkg/functions"
	"github.com/sandrolain/cspexpr/pkg/parser"
	"github.com/sandrolain/cspexpr/pkg/types"
)

// DefaultWriterMarker is the object-literal key whose value is evaluated with
// assignment disabled. Binding layers use it to publish property writer
// functions without running them.
const DefaultWriterMarker = "_ko_property_writers"

// Evaluator evaluates expressions against scope chains.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // nil when no cache is attached
	global map[string]any
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// GlobalScope holds the identifiers visible as the last scope of every
	// evaluation. It is merged over the built-in global scope and is never
	// written by assignment.
	GlobalScope map[string]any
	// Cache is an external expression cache used by CreateEvaluator.
	Cache *cache.Cache
	// MaxDepth limits the number of nested evaluation frames.
	// Zero or negative disables the check.
	MaxDepth int
	// Timeout sets evaluation timeout. Zero disables it.
	Timeout time.Duration
	// WriterMarker is the object-literal key whose value is evaluated with
	// assignment disabled. Empty disables the check.
	WriterMarker string
	// CompileOptions are passed to the parser by CreateEvaluator.
	CompileOptions []parser.CompileOption
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth:     10000,
		Timeout:      30 * time.Second,
		WriterMarker: DefaultWriterMarker,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	global := builtinGlobals()
	for name, value := range options.GlobalScope {
		global[name] = value
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  options.Cache,
		global: global,
	}
}

// Cache returns the expression cache, or nil if none is attached.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// GlobalScope returns the merged global scope. The map is shared with the
// evaluator; callers must not modify it while evaluations run.
func (e *Evaluator) GlobalScope() map[string]any {
	return e.global
}

// Compile parses text, going through the cache when one is attached.
// Parse errors are attributed to the expression text.
func (e *Evaluator) Compile(text string) (*types.Expression, error) {
	compiled := false
	compile := func() (*types.Expression, error) {
		compiled = true
		expr, err := parser.Compile(text, e.opts.CompileOptions...)
		if err != nil {
			return nil, err
		}
		if e.opts.Debug {
			e.logger.Debug("compiled expression", "expression", text)
		}
		return expr, nil
	}

	var (
		expr *types.Expression
		err  error
	)
	if e.cache != nil {
		expr, err = e.cache.GetOrCompile(text, compile)
		if err == nil && !compiled && e.opts.Debug {
			e.logger.Debug("cache hit", "expression", text)
		}
	} else {
		expr, err = compile()
	}
	if err != nil {
		return nil, types.WrapExpression(err, text)
	}
	return expr, nil
}

// Handle is a compiled expression bound to the evaluator that created it.
// It can be evaluated any number of times against different scope chains.
type Handle struct {
	ev   *Evaluator
	expr *types.Expression
}

// CreateEvaluator compiles text once and returns a Handle that re-walks the
// compiled AST on every Evaluate call.
func (e *Evaluator) CreateEvaluator(text string) (*Handle, error) {
	expr, err := e.Compile(text)
	if err != nil {
		return nil, err
	}
	return &Handle{ev: e, expr: expr}, nil
}

// Expression returns the compiled expression.
func (h *Handle) Expression() *types.Expression {
	return h.expr
}

// Evaluate evaluates the expression against contexts, ordered most specific
// first. The global scope is appended as the least specific scope.
func (h *Handle) Evaluate(ctx context.Context, contexts ...any) (any, error) {
	return h.ev.EvaluateScopes(ctx, h.expr, contexts)
}

// Evaluate evaluates a compiled expression against a single scope object.
func (e *Evaluator) Evaluate(ctx context.Context, expr *types.Expression, scope any) (any, error) {
	return e.EvaluateScopes(ctx, expr, []any{scope})
}

// EvaluateScopes evaluates a compiled expression against an ordered list of
// scope objects, most specific first. Errors are attributed to the
// expression text.
func (e *Evaluator) EvaluateScopes(ctx context.Context, expr *types.Expression, contexts []any) (any, error) {
	if expr == nil || expr.AST() == nil {
		return nil, types.NewError(types.KindType, "invalid expression")
	}

	// Apply timeout if configured
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	// Initialise a shared depth counter for this evaluation tree.
	if e.opts.MaxDepth > 0 {
		ctx = withNewRecurseDepthPtr(ctx)
	}

	scopes := make([]any, 0, len(contexts)+1)
	scopes = append(scopes, contexts...)
	scopes = append(scopes, globalScope(e.global))

	result, err := e.evalNode(ctx, expr.AST(), NewContext(scopes))
	if err != nil {
		if e.opts.Debug {
			e.logger.Debug("evaluation failed", "expression", expr.Source(), "error", err)
		}
		return nil, types.WrapExpression(err, expr.Source())
	}
	return result, nil
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithGlobalScope adds identifiers to the global scope. Repeated calls merge,
// later values winning.
func WithGlobalScope(scope map[string]any) EvalOption {
	return func(opts *EvalOptions) {
		if opts.GlobalScope == nil {
			opts.GlobalScope = make(map[string]any, len(scope))
		}
		for k, v := range scope {
			opts.GlobalScope[k] = v
		}
	}
}

// WithFunctions registers Go functions in the global scope under their names.
//
// Example:
//
//	ev := evaluator.New(evaluator.WithFunctions(functions.CustomFunctionDef{
//	    Name: "greet",
//	    Fn: func(ctx context.Context, args ...any) (any, error) {
//	        return "Hello, " + args[0].(string) + "!", nil
//	    },
//	}))
func WithFunctions(entries ...functions.FunctionEntry) EvalOption {
	return func(opts *EvalOptions) {
		if opts.GlobalScope == nil {
			opts.GlobalScope = make(map[string]any, len(entries))
		}
		for _, entry := range entries {
			opts.GlobalScope[entry.EntryName()] = entry.Callable()
		}
	}
}

// WithCache attaches an external expression cache.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum evaluation depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithWriterMarker sets the object-literal key whose value is evaluated with
// assignment disabled.
func WithWriterMarker(marker string) EvalOption {
	return func(opts *EvalOptions) {
		opts.WriterMarker = marker
	}
}

// WithCompileOptions sets the parser options used by CreateEvaluator.
func WithCompileOptions(copts ...parser.CompileOption) EvalOption {
	return func(opts *EvalOptions) {
		opts.CompileOptions = append(opts.CompileOptions, copts...)
	}
}
