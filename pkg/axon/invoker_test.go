package axon

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoker_CallsWithTypedArguments(t *testing.T) {
	invoker := Handler3(func(ctx context.Context, id int, name string, identity Identity) (any, error) {
		return map[string]any{"id": id, "name": name, "subject": identity.SubjectID}, nil
	})

	assert.Equal(t, 3, invoker.Arity())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[int](), reflect.TypeFor[string](), identityType}, invoker.ParamTypes())

	result, err := invoker.Call(context.Background(), []any{7, "bolo", Identity{SubjectID: "u1"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 7, "name": "bolo", "subject": "u1"}, result)
}

func TestInvoker_NilArgumentIsZeroValue(t *testing.T) {
	invoker := Handler1(func(ctx context.Context, data map[string]any) (any, error) {
		return data == nil, nil
	})

	result, err := invoker.Call(context.Background(), []any{nil})
	require.NoError(t, err)
	assert.Equal(t, true, result)
}

func TestInvoker_RejectsWrongArguments(t *testing.T) {
	invoker := Handler2(func(ctx context.Context, a int, b string) (any, error) { return nil, nil })

	_, err := invoker.Call(context.Background(), []any{1})
	assert.ErrorContains(t, err, "expects 2 arguments")

	_, err = invoker.Call(context.Background(), []any{1, 2})
	assert.ErrorContains(t, err, "argument 1")

	_, err = Invoker{}.Call(context.Background(), nil)
	assert.Error(t, err)
	assert.True(t, Invoker{}.IsZero())
}

func TestInvoker_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")

	invoker := Handler4(func(ctx context.Context, a, b, c, d string) (any, error) {
		return ctx.Value(key{}).(string) + a + b + c + d, nil
	})

	result, err := invoker.Call(ctx, []any{"1", "2", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, "value1234", result)
}
