package evalctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binstruct/binstruct/evalctx"
)

// fakeNode is a minimal evalctx.Node used to exercise resolution order in
// isolation from binfield.
type fakeNode struct {
	name    string
	params  map[string]evalctx.Expr
	methods map[string]any
	parent  evalctx.Node
}

func (n *fakeNode) DebugName() string { return n.name }

func (n *fakeNode) Param(name string) (evalctx.Expr, bool) {
	e, ok := n.params[name]
	return e, ok
}

func (n *fakeNode) Method(name string) (any, bool, error) {
	v, ok := n.methods[name]
	return v, ok, nil
}

func (n *fakeNode) ParentNode() evalctx.Node {
	return n.parent
}

func TestResolutionOrderOverridesWinsOverParams(t *testing.T) {
	node := &fakeNode{
		name:   "child",
		params: map[string]evalctx.Expr{"x": evalctx.Const{Value: 1}},
	}

	v, err := evalctx.Eval(evalctx.Symbol("x"), node, map[string]any{"x": 42})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestResolutionFallsThroughToAncestor(t *testing.T) {
	root := &fakeNode{
		name:   "root",
		params: map[string]evalctx.Expr{"len": evalctx.Const{Value: 10}},
	}
	child := &fakeNode{name: "child", parent: root}

	v, err := evalctx.Eval(evalctx.Symbol("len"), child, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}

func TestMethodsResolveAfterParamsOnSameNode(t *testing.T) {
	node := &fakeNode{
		name:    "n",
		params:  map[string]evalctx.Expr{"v": evalctx.Const{Value: "param"}},
		methods: map[string]any{"v": "method"},
	}

	v, err := evalctx.Eval(evalctx.Symbol("v"), node, nil)
	require.NoError(t, err)
	assert.Equal(t, "param", v)
}

func TestUnresolvedNameFails(t *testing.T) {
	node := &fakeNode{name: "solo"}

	_, err := evalctx.Eval(evalctx.Symbol("nope"), node, nil)
	require.Error(t, err)
}

func TestCascadingEvaluatesInDefiningContext(t *testing.T) {
	root := &fakeNode{
		name:   "root",
		params: map[string]evalctx.Expr{"base": evalctx.Const{Value: 7}},
	}
	middle := &fakeNode{
		name:   "middle",
		parent: root,
		params: map[string]evalctx.Expr{"derived": evalctx.Symbol("base")},
	}
	leaf := &fakeNode{name: "leaf", parent: middle}

	v, err := evalctx.Eval(evalctx.Symbol("derived"), leaf, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestClosureReceivesExplicitContext(t *testing.T) {
	root := &fakeNode{
		name:   "root",
		params: map[string]evalctx.Expr{"n": evalctx.Const{Value: 3}},
	}

	doubled := evalctx.Closure(func(ctx *evalctx.Context) (any, error) {
		n, err := ctx.Resolve("n")
		if err != nil {
			return nil, err
		}
		return n.(int) * 2, nil
	})

	v, err := evalctx.Eval(doubled, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}
