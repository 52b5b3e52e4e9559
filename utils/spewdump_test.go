package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSDump(t *testing.T) {
	type limb struct {
		Child   int8
		Sibling int8
	}
	out := SDump(&limb{Child: 1, Sibling: -1})
	assert.Contains(t, out, "Child: (int8) 1")
	assert.Contains(t, out, "Sibling: (int8) -1")
	assert.NotContains(t, out, "0xc0")

	var buf bytes.Buffer
	Dump(&buf, []int{1, 2})
	assert.Contains(t, buf.String(), "([]int) (len=2)")
}
