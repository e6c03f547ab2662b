package nodes_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/someahole/nodes"
)

// dag is a graph object with N boolean-valued nodes, each either a leaf
// (index < leaves) or the XOR of two earlier nodes. It exists purely to
// drive the property test below: every node is Settable, so the override
// map random operations build against the graph can be recomputed
// independently from scratch and compared.
type dag struct {
	handles []nodes.Handle
	parents [][2]int // parents[i] = (-1,-1) for a leaf
	leaves  int
}

func newDAG(size, leaves int, seed int64) *dag {
	r := rand.New(rand.NewSource(seed))
	d := &dag{
		handles: make([]nodes.Handle, size),
		parents: make([][2]int, size),
		leaves:  leaves,
	}
	for i := 0; i < size; i++ {
		if i < leaves {
			d.parents[i] = [2]int{-1, -1}
			continue
		}
		d.parents[i] = [2]int{r.Intn(i), r.Intn(i)}
	}
	return d
}

func (d *dag) GraphMethods() []*nodes.MethodDescriptor {
	methods := make([]*nodes.MethodDescriptor, len(d.parents))
	for i := range d.parents {
		i := i
		p := d.parents[i]
		if p[0] < 0 {
			methods[i] = nodes.NewMethod(methodName(i), nodes.Settable, func(o *dag) bool {
				return i%2 == 0
			})
			continue
		}
		methods[i] = nodes.NewMethod(methodName(i), nodes.Settable, func(o *dag) (bool, error) {
			a, err := o.handles[p[0]].Call()
			if err != nil {
				return false, err
			}
			b, err := o.handles[p[1]].Call()
			if err != nil {
				return false, err
			}
			return a.(bool) != b.(bool), nil
		})
	}
	return methods
}

func methodName(i int) string {
	return "N" + string(rune('A'+i%26)) + string(rune('0'+i/26))
}

// shadowCompute recomputes node i from scratch against overrides, ignoring
// the graph engine entirely — the independent oracle the property test
// checks the engine against.
func shadowCompute(d *dag, overrides map[int]bool, i int) bool {
	if v, ok := overrides[i]; ok {
		return v
	}
	p := d.parents[i]
	if p[0] < 0 {
		return i%2 == 0
	}
	return shadowCompute(d, overrides, p[0]) != shadowCompute(d, overrides, p[1])
}

func TestPropertyRandomSetSequenceMatchesFromScratchRecomputation(t *testing.T) {
	const size = 24
	const leaves = 6
	const ops = 200

	for seed := int64(0); seed < 5; seed++ {
		d := newDAG(size, leaves, seed)
		registry := nodes.NewRegistry()
		handleMap, err := nodes.Bind(registry, d)
		require.NoError(t, err)
		for i := range d.handles {
			d.handles[i] = *handleMap[methodName(i)]
		}

		overrides := make(map[int]bool)
		r := rand.New(rand.NewSource(seed * 7919))

		for op := 0; op < ops; op++ {
			i := r.Intn(size)
			switch r.Intn(3) {
			case 0:
				v := r.Intn(2) == 0
				require.NoError(t, d.handles[i].Set(v))
				overrides[i] = v
			case 1:
				require.NoError(t, d.handles[i].ClearSet())
				delete(overrides, i)
			case 2:
				// read-only op, no model change
			}

			readIdx := r.Intn(size)
			got, err := d.handles[readIdx].Call()
			require.NoError(t, err)
			want := shadowCompute(d, overrides, readIdx)
			require.Equal(t, want, got, "seed=%d op=%d node=%d", seed, op, readIdx)
		}
	}
}
