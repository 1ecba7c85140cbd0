package axon

import (
	"context"
	"fmt"
	"reflect"
)

// Invoker wraps a handler with natural Go parameters so it can be called with a resolved argument list
type Invoker struct {
	params []reflect.Type
	call   func(ctx context.Context, args []any) (any, error)
}

// Arity returns the number of declared handler parameters, not counting the context
func (i Invoker) Arity() int {
	return len(i.params)
}

// ParamTypes returns the declared parameter types in order
func (i Invoker) ParamTypes() []reflect.Type {
	return append([]reflect.Type(nil), i.params...)
}

// IsZero reports whether the invoker wraps no handler
func (i Invoker) IsZero() bool {
	return i.call == nil
}

// Call invokes the handler with args, which must have exactly Arity elements
func (i Invoker) Call(ctx context.Context, args []any) (any, error) {
	if i.call == nil {
		return nil, fmt.Errorf("invoker has no handler")
	}
	if len(args) != len(i.params) {
		return nil, fmt.Errorf("handler expects %d arguments, got %d", len(i.params), len(args))
	}
	return i.call(ctx, args)
}

// Handler0 wraps a handler without parameters
func Handler0(fn func(ctx context.Context) (any, error)) Invoker {
	return Invoker{
		call: func(ctx context.Context, _ []any) (any, error) {
			return fn(ctx)
		},
	}
}

// Handler1 wraps a handler with one parameter
func Handler1[A any](fn func(ctx context.Context, a A) (any, error)) Invoker {
	return Invoker{
		params: []reflect.Type{reflect.TypeFor[A]()},
		call: func(ctx context.Context, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return fn(ctx, a)
		},
	}
}

// Handler2 wraps a handler with two parameters
func Handler2[A, B any](fn func(ctx context.Context, a A, b B) (any, error)) Invoker {
	return Invoker{
		params: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()},
		call: func(ctx context.Context, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			return fn(ctx, a, b)
		},
	}
}

// Handler3 wraps a handler with three parameters
func Handler3[A, B, C any](fn func(ctx context.Context, a A, b B, c C) (any, error)) Invoker {
	return Invoker{
		params: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]()},
		call: func(ctx context.Context, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			c, err := arg[C](args, 2)
			if err != nil {
				return nil, err
			}
			return fn(ctx, a, b, c)
		},
	}
}

// Handler4 wraps a handler with four parameters
func Handler4[A, B, C, D any](fn func(ctx context.Context, a A, b B, c C, d D) (any, error)) Invoker {
	return Invoker{
		params: []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C](), reflect.TypeFor[D]()},
		call: func(ctx context.Context, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			c, err := arg[C](args, 2)
			if err != nil {
				return nil, err
			}
			d, err := arg[D](args, 3)
			if err != nil {
				return nil, err
			}
			return fn(ctx, a, b, c, d)
		},
	}
}

func arg[T any](args []any, i int) (T, error) {
	var zero T
	if args[i] == nil {
		return zero, nil
	}
	value, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("argument %d: expected %s, got %T", i, reflect.TypeFor[T](), args[i])
	}
	return value, nil
}
