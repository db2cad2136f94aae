// Package typed turns syntax trees into values of author-defined types.
//
// Every rule that should produce a value registers a factory for its node
// type. Factories receive the node and a *Context through which they build
// the values of child nodes, so each factory only deals with its own rule:
//
//	r := typed.NewRegistry()
//	typed.Register(r, NUMBER, func(ctx *typed.Context, n *ast.Node) (int, error) {
//		return strconv.Atoi(n.TokenText())
//	})
//	typed.Register(r, SUM, func(ctx *typed.Context, n *ast.Node) (int, error) {
//		terms, err := typed.All[int](ctx, n.Children(NUMBER))
//		...
//	})
//	total, err := typed.Build[int](r, tree)
package typed

import (
	"errors"
	"fmt"

	"github.com/dhamidi/grit/ast"
	"github.com/dhamidi/grit/token"
)

var ErrNoFactory = errors.New("no factory registered")

// Error reports a node that could not be turned into a value.
type Error struct {
	Node *ast.Node
	Err  error
}

func (e *Error) Error() string {
	if line := e.Node.Line(); line > 0 {
		return fmt.Sprintf("typed: %s at %d:%d: %v", e.Node.Name(), line, e.Node.Column(), e.Err)
	}
	return fmt.Sprintf("typed: %s: %v", e.Node.Name(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type factory func(*Context, *ast.Node) (any, error)

// Registry maps node types to factories. Register everything before
// building; afterwards the registry may be shared between goroutines.
type Registry struct {
	factories map[ast.Type]factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[ast.Type]factory)}
}

// Register installs the factory for nodes of type typ, replacing any
// previous one.
func Register[T any](r *Registry, typ ast.Type, f func(*Context, *ast.Node) (T, error)) {
	r.factories[typ] = func(ctx *Context, n *ast.Node) (any, error) {
		return f(ctx, n)
	}
}

// Has reports whether a factory is registered for typ.
func (r *Registry) Has(typ ast.Type) bool {
	_, ok := r.factories[typ]
	return ok
}

// Context is passed to every factory of one Build call. It carries the
// registry and an optional caller value, typically the source URI or a
// symbol collector.
type Context struct {
	registry *Registry
	Value    any
}

// Build turns n into a T using the factories of r.
func Build[T any](r *Registry, n *ast.Node) (T, error) {
	return As[T](&Context{registry: r}, n)
}

// BuildWith is Build with a caller value available as Context.Value.
func BuildWith[T any](r *Registry, value any, n *ast.Node) (T, error) {
	return As[T](&Context{registry: r, Value: value}, n)
}

// Build builds n with the registered factory. A node without factory
// yields its token when it is a leaf, and the value of its only child when
// it has exactly one.
func (ctx *Context) Build(n *ast.Node) (any, error) {
	if n == nil {
		return nil, errors.New("typed: nil node")
	}
	if f, ok := ctx.registry.factories[n.Type()]; ok {
		v, err := f(ctx, n)
		if err != nil {
			var terr *Error
			if errors.As(err, &terr) {
				return nil, err
			}
			return nil, &Error{Node: n, Err: err}
		}
		return v, nil
	}
	switch {
	case n.IsLeaf():
		return n.Token(), nil
	case n.NumChildren() == 1:
		return ctx.Build(n.FirstChild())
	}
	return nil, &Error{Node: n, Err: ErrNoFactory}
}

// As builds n and asserts that the result is a T.
func As[T any](ctx *Context, n *ast.Node) (T, error) {
	var zero T
	v, err := ctx.Build(n)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &Error{Node: n, Err: fmt.Errorf("got %T, want %T", v, zero)}
	}
	return t, nil
}

// All builds every node and stops at the first error.
func All[T any](ctx *Context, nodes []*ast.Node) ([]T, error) {
	result := make([]T, 0, len(nodes))
	for _, n := range nodes {
		v, err := As[T](ctx, n)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// Optional builds n when it is not nil and returns the zero T otherwise,
// for use with lookups such as FirstChild(typ).
func Optional[T any](ctx *Context, n *ast.Node) (T, error) {
	if n == nil {
		var zero T
		return zero, nil
	}
	return As[T](ctx, n)
}

// Text is a factory producing the source text of a node.
func Text(_ *Context, n *ast.Node) (string, error) {
	return n.TokenText(), nil
}

// Tok is a factory producing the first token of a node.
func Tok(_ *Context, n *ast.Node) (*token.Token, error) {
	if tok := n.FirstToken(); tok != nil {
		return tok, nil
	}
	return nil, errors.New("node has no tokens")
}
