package metric

import (
	"math"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/repolens/repolens/pkg/parser"
)

// operandKinds are node kinds counted as operands. They are consumed whole;
// the walk does not descend into them.
var operandKinds = map[string]bool{
	"identifier": true,
	"integer":    true,
	"float":      true,
	"string":     true,
	"true":       true,
	"false":      true,
	"none":       true,
	"ellipsis":   true,
}

// halsteadVolume computes a Halstead volume proxy from the file's tokens:
// V = N * log2(n) where n is the distinct operator+operand count and N the
// total. Anonymous leaves (operators, keywords, punctuation) count as
// operators; identifier and literal nodes count as operands. Comments are
// skipped.
func halsteadVolume(root *sitter.Node, source []byte) float64 {
	operators := make(map[string]int)
	operands := make(map[string]int)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		kind := n.Type()
		if kind == "comment" {
			return
		}
		if operandKinds[kind] {
			operands[parser.GetNodeText(n, source)]++
			return
		}
		if n.ChildCount() == 0 {
			text := parser.GetNodeText(n, source)
			if text == "" {
				return
			}
			if n.IsNamed() {
				operands[text]++
			} else {
				operators[text]++
			}
			return
		}
		cnt := int(n.ChildCount())
		for i := 0; i < cnt; i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	var totalOps, totalOperands int
	for _, c := range operators {
		totalOps += c
	}
	for _, c := range operands {
		totalOperands += c
	}

	distinct := len(operators) + len(operands)
	total := totalOps + totalOperands
	if distinct <= 1 {
		return 0
	}
	return float64(total) * math.Log2(float64(distinct))
}
