// Package evalctx implements the LazyEvaluator described by the schema
// engine: resolution of a parameter expression — constant, closure, or
// symbolic name — against a chain of enclosing field objects.
//
// A parameter expression never captures lexical state of its own; a Closure
// is a plain Go function that receives an explicit *Context and calls its
// accessors, which is the statically-typed answer to the source language's
// method_missing-style dispatch inside user closures.
package evalctx

import (
	"github.com/binstruct/binstruct/binerr"
)

// Node is the minimal surface a field object must expose to participate in
// name resolution. binfield.Field implements this.
type Node interface {
	// Param returns the raw (unevaluated) parameter expression named name,
	// if this node declares one.
	Param(name string) (Expr, bool)

	// Method resolves a built-in accessor or child accessor by name — e.g.
	// a Record's named child field, or "parent". It returns an
	// already-evaluated value (never an Expr requiring further resolution
	// against this node, though the value itself may recursively be an
	// Expr belonging to some other node — see Composite child accessors).
	Method(name string) (value any, ok bool, err error)

	// ParentNode returns the enclosing field, or nil at the root.
	ParentNode() Node
}

// Expr is a parameter expression: a constant, a closure, or a symbol.
type Expr interface {
	Eval(ctx *Context) (any, error)
}

// Const is a literal scalar value. It evaluates to itself unconditionally.
type Const struct{ Value any }

// Eval implements Expr.
func (c Const) Eval(*Context) (any, error) { return c.Value, nil }

// Closure is a parameter expression computed by an explicit function of the
// evaluation context, in place of the source language's lexical closures.
type Closure func(ctx *Context) (any, error)

// Eval implements Expr.
func (f Closure) Eval(ctx *Context) (any, error) { return f(ctx) }

// Symbol is a reference by name to another field or parameter. Per the
// LazyEvaluator contract, ":foo" resolves identically to a single-name
// closure that looks up "foo".
type Symbol string

// Eval implements Expr.
func (s Symbol) Eval(ctx *Context) (any, error) { return ctx.Resolve(string(s)) }

// Context is the evaluation environment for a single Eval call: a starting
// Node plus a set of call-site overrides that take priority over everything
// else.
type Context struct {
	Overrides map[string]any
	Node      Node
}

// Eval resolves expr against node, with the given call-site overrides (which
// may be nil).
func Eval(expr Expr, node Node, overrides map[string]any) (any, error) {
	if expr == nil {
		return nil, nil
	}
	ctx := &Context{Overrides: overrides, Node: node}
	return expr.Eval(ctx)
}

// Resolve implements the five-step name resolution order of the
// LazyEvaluator: call-site overrides, then the parameters and methods of the
// current node, then its ancestors in turn, failing with
// binerr.UnresolvedNameError at the root.
func (c *Context) Resolve(name string) (any, error) {
	if c.Overrides != nil {
		if v, ok := c.Overrides[name]; ok {
			return c.settle(v, c.Node)
		}
	}

	var chain []string
	for n := c.Node; n != nil; n = n.ParentNode() {
		chain = append(chain, describe(n))

		if e, ok := n.Param(name); ok {
			return c.evalAt(e, n)
		}
		if v, ok, err := n.Method(name); ok {
			if err != nil {
				return nil, err
			}
			return c.settle(v, n)
		}
	}

	return nil, &binerr.UnresolvedNameError{Name: name, Chain: chain}
}

// evalAt evaluates expr as though it were the top-level target of Eval,
// using definingNode as the starting node and no call-site overrides — this
// is "evaluated in the context where it was defined" from the cascading
// rule.
func (c *Context) evalAt(expr Expr, definingNode Node) (any, error) {
	return Eval(expr, definingNode, nil)
}

// settle handles cascading: a resolved value that is itself an Expr is
// recursively evaluated in the context where it was found; anything else
// (a constant, or an already-materialized value returned by a built-in
// method) passes through unchanged.
func (c *Context) settle(v any, definingNode Node) (any, error) {
	if e, ok := v.(Expr); ok {
		return c.evalAt(e, definingNode)
	}
	return v, nil
}

func describe(n Node) string {
	if d, ok := n.(interface{ DebugName() string }); ok {
		return d.DebugName()
	}
	return "<node>"
}
