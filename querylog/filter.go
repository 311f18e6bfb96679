package querylog

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled expression evaluated against query log records
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newFilterCache(size)
		}
	}
}

// WithFunctions adds custom helper functions
func WithFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// Compiler compiles filter expressions
type Compiler struct {
	helpers map[string]any
	cache   *filterCache
}

// NewCompiler creates an expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{helpers: helperFunctions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression with the default compiler
func Compile(expression string) (*Filter, error) {
	return NewCompiler().Compile(expression)
}

// Compile compiles an expression into a filter. Record fields are available
// as variables; unknown fields evaluate to nil.
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Err:        ErrEmptyExpression,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.lookup(expression); ok {
			return cached, nil
		}
	}

	opts := []expr.Option{
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	}
	for _, name := range shadowedBuiltins(expression) {
		opts = append(opts, expr.DisableBuiltin(name))
	}

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     err.Error(),
			Err:        err,
		}
	}

	f := &Filter{
		expression: expression,
		program:    program,
		helpers:    c.helpers,
	}
	if c.cache != nil {
		c.cache.store(f)
	}
	return f, nil
}

// CacheStats reports the filter cache usage. It is zero without WithCache.
func (c *Compiler) CacheStats() CacheStats {
	if c.cache == nil {
		return CacheStats{}
	}
	return c.cache.stats()
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// Eval evaluates the filter against a record.
func (f *Filter) Eval(rec Record) (bool, error) {
	result, err := expr.Run(f.program, f.environment(rec))
	if err != nil {
		return false, err
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("filter returned %T, want bool", result)
	}
	return ok, nil
}

// Match reports whether the record matches. Records that fail to evaluate
// do not match.
func (f *Filter) Match(rec Record) bool {
	ok, err := f.Eval(rec)
	return err == nil && ok
}

// shadowedBuiltins returns the expr builtins an expression references as
// plain identifiers rather than calls. Query logs carry columns such as
// date, now or type; those must resolve to the record, not the builtin.
func shadowedBuiltins(expression string) []string {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil
	}
	v := &identVisitor{callees: make(map[*ast.IdentifierNode]bool)}
	ast.Walk(&tree.Node, v)

	var names []string
	for _, id := range v.idents {
		if v.callees[id] || slices.Contains(names, id.Value) {
			continue
		}
		if _, ok := builtin.Index[id.Value]; ok {
			names = append(names, id.Value)
		}
	}
	return names
}

type identVisitor struct {
	idents  []*ast.IdentifierNode
	callees map[*ast.IdentifierNode]bool
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents = append(v.idents, n)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callees[id] = true
		}
	}
}

// helperFunctions returns the compile-time environment. The contains,
// startsWith and endsWith operators are built into expr.
func helperFunctions() map[string]any {
	return map[string]any{
		"icontains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"parseDate": func(s string) time.Time {
			t, _ := parseTime(s)
			return t
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"has":    func(string) bool { return false },
		"Record": map[string]any{},
	}
}

// environment exposes the record fields next to the helpers. Helpers win
// over fields of the same name.
func (f *Filter) environment(rec Record) map[string]any {
	env := make(map[string]any, len(rec)+len(f.helpers))
	for k, v := range rec {
		env[k] = v
	}
	maps.Copy(env, f.helpers)
	env["Record"] = map[string]any(rec)
	env["has"] = func(field string) bool {
		_, ok := rec[field]
		return ok
	}
	return env
}
