package nodes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/someahole/nodes"
)

// contextClass mirrors the original's nodes_contexts.NodesClass1:
// A = "A" + B + C, C = "C" + D.
type contextClass struct {
	A nodes.Handle
	B nodes.Handle
	C nodes.Handle
	D nodes.Handle
}

func (o *contextClass) GraphMethods() []*nodes.MethodDescriptor {
	return []*nodes.MethodDescriptor{
		nodes.NewMethod("A", nodes.Settable, func(o *contextClass) (string, error) {
			b, err := o.B.Call()
			if err != nil {
				return "", err
			}
			c, err := o.C.Call()
			if err != nil {
				return "", err
			}
			return "A" + b.(string) + c.(string), nil
		}),
		nodes.NewMethod("B", nodes.Settable, func(o *contextClass) string { return "B" }),
		nodes.NewMethod("C", nodes.Settable, func(o *contextClass) (string, error) {
			d, err := o.D.Call()
			if err != nil {
				return "", err
			}
			return "C" + d.(string), nil
		}),
		nodes.NewMethod("D", nodes.Settable, func(o *contextClass) string { return "D" }),
	}
}

func TestSimpleContextOverlay(t *testing.T) {
	registry := nodes.NewRegistry()
	o := &contextClass{}
	h, err := nodes.Bind(registry, o)
	require.NoError(t, err)

	ctx := nodes.NewContext(registry, nil)
	ctx.In(func() {
		require.NoError(t, h["A"].Overlay("abcd"))

		a, err := h["A"].Call()
		require.NoError(t, err)
		require.Equal(t, "abcd", a)

		b, err := h["B"].Call()
		require.NoError(t, err)
		require.Equal(t, "B", b)

		c, err := h["C"].Call()
		require.NoError(t, err)
		require.Equal(t, "CD", c)
	})

	a, err := h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "ABCD", a)
}

func TestNestedContextOverlayPrecedence(t *testing.T) {
	registry := nodes.NewRegistry()
	o := &contextClass{}
	h, err := nodes.Bind(registry, o)
	require.NoError(t, err)

	outer := nodes.NewContext(registry, nil)
	outer.Enter()
	defer outer.Exit()

	require.NoError(t, h["B"].Overlay("b"))
	b, err := h["B"].Call()
	require.NoError(t, err)
	require.Equal(t, "b", b)

	a, err := h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "AbCD", a)

	require.NoError(t, h["C"].Overlay("c"))
	c, err := h["C"].Call()
	require.NoError(t, err)
	require.Equal(t, "c", c)

	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "Abc", a)

	require.NoError(t, h["A"].Overlay("a"))
	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "a", a)

	require.NoError(t, h["A"].ClearOverlay())
	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "Abc", a)

	require.NoError(t, h["B"].ClearOverlay())
	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "ABc", a)

	require.NoError(t, h["C"].ClearOverlay())
	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "ABCD", a)

	require.NoError(t, h["C"].Overlay("c"))
	require.NoError(t, h["D"].Overlay("d"))
	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "ABc", a)

	require.NoError(t, h["C"].ClearOverlay())
	a, err = h["A"].Call()
	require.NoError(t, err)
	require.Equal(t, "ABCd", a)
}

func TestContextExitRestoresSetValues(t *testing.T) {
	registry := nodes.NewRegistry()
	o := &contextClass{}
	h, err := nodes.Bind(registry, o)
	require.NoError(t, err)

	require.NoError(t, h["D"].Set("set-d"))

	ctx := nodes.NewContext(registry, nil)
	ctx.In(func() {
		require.NoError(t, h["D"].Overlay("overlaid-d"))
		d, err := h["D"].Call()
		require.NoError(t, err)
		require.Equal(t, "overlaid-d", d)
	})

	d, err := h["D"].Call()
	require.NoError(t, err)
	require.Equal(t, "set-d", d)
}

func TestReenteringActiveContextPanics(t *testing.T) {
	registry := nodes.NewRegistry()
	ctx := nodes.NewContext(registry, nil)
	ctx.Enter()
	defer ctx.Exit()

	require.PanicsWithValue(t, nodes.ErrContextAlreadyActive, func() {
		ctx.Enter()
	})
}
