package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// RootNodes returns the indices of nodes nothing else lists as a child.
func RootNodes(doc *gltf.Document) []uint32 {
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	roots := make([]uint32, 0, 1)
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, RootNodes(doc)...)

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
