package export_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/someahole/nodes"
	"github.com/someahole/nodes/export"
)

type profile struct {
	Name nodes.Handle
	Age  nodes.Handle
}

func (o *profile) GraphMethods() []*nodes.MethodDescriptor {
	return []*nodes.MethodDescriptor{
		nodes.NewMethod("Name", nodes.Saved, func(o *profile) string { return "" }),
		nodes.NewMethod("Age", nodes.Saved, func(o *profile) int { return 0 }),
	}
}

func TestJSONExportsSavedFields(t *testing.T) {
	registry := nodes.NewRegistry()
	o := &profile{}
	handles, err := nodes.Bind(registry, o)
	require.NoError(t, err)

	require.NoError(t, handles["Name"].Set("ada"))
	require.NoError(t, handles["Age"].Set(36))

	doc, err := export.JSON(registry, o)
	require.NoError(t, err)

	require.Equal(t, "ada", export.Query(doc, "Name").String())
	require.Equal(t, int64(36), export.Query(doc, "Age").Int())
}

func TestYAMLExportsSavedFields(t *testing.T) {
	registry := nodes.NewRegistry()
	o := &profile{}
	handles, err := nodes.Bind(registry, o)
	require.NoError(t, err)
	require.NoError(t, handles["Name"].Set("grace"))
	require.NoError(t, handles["Age"].Set(40))

	doc, err := export.YAML(registry, o)
	require.NoError(t, err)
	require.Contains(t, string(doc), "Name: grace")
	require.Contains(t, string(doc), "Age: 40")
}
