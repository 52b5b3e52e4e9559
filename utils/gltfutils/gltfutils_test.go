package gltfutils

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootNodes(t *testing.T) {
	doc := NewDocument()
	doc.Nodes = []*gltf.Node{
		{Name: "root", Children: []uint32{1}},
		{Name: "child", Children: []uint32{2}},
		{Name: "leaf"},
		{Name: "loose"},
	}
	assert.Equal(t, []uint32{0, 3}, RootNodes(doc))
}

func TestExportBinary(t *testing.T) {
	doc := NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "root", Children: []uint32{1}}, {Name: "child"}}

	var buf bytes.Buffer
	require.NoError(t, ExportBinary(&buf, doc))
	assert.Equal(t, []byte("glTF"), buf.Bytes()[:4])
	assert.Equal(t, []uint32{0}, doc.Scenes[0].Nodes)
}
