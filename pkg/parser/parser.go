// Package parser builds syntax trees for Python sources using tree-sitter
// and provides generic tree-walk helpers for the metric strategies.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ParseError reports a file whose text is not valid Python. Parse failures
// are per-file and non-fatal to a corpus analysis.
type ParseError struct {
	Path string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid syntax: %s", e.Path)
}

// Parser wraps a tree-sitter parser configured for Python. A Parser is not
// safe for concurrent use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// Result contains the parsed tree and its source. The tree is owned by the
// result and holds no references outside the file it was parsed from.
type Result struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a new Python parser.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source text into a syntax tree. Tree-sitter recovers from
// bad input by emitting error nodes, so a tree whose root contains any is
// rejected as a ParseError.
func (p *Parser) Parse(source []byte, path string) (*Result, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree.RootNode().HasError() {
		return nil, &ParseError{Path: path}
	}
	return &Result{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits syntax-tree nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits nodes with the kind tag pre-cached to avoid
// repeated CGO calls.
type TypedNodeVisitor func(node *sitter.Node, kind string, source []byte) bool

// Walk traverses the tree calling visitor for each node. Returning false
// from the visitor prunes the subtree.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node, source) {
		return
	}
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the tree with cached node kinds.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}
	kind := node.Type()
	if !visitor(node, kind, source) {
		return
	}
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodes returns all nodes matching a predicate.
func FindNodes(root *sitter.Node, source []byte, predicate func(*sitter.Node) bool) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(node *sitter.Node, _ []byte) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindNodesByKind returns all nodes with the given kind tag.
func FindNodesByKind(root *sitter.Node, source []byte, kind string) []*sitter.Node {
	return FindNodes(root, source, func(n *sitter.Node) bool {
		return n.Type() == kind
	})
}

// CountNodes counts nodes whose kind tag is in kinds.
func CountNodes(root *sitter.Node, source []byte, kinds map[string]bool) int {
	var count int
	WalkTyped(root, source, func(_ *sitter.Node, kind string, _ []byte) bool {
		if kinds[kind] {
			count++
		}
		return true
	})
	return count
}

// GetNodeText extracts the source text for a node. Returns empty string if
// the node is nil or its byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FunctionNode represents one parsed function definition.
type FunctionNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Node      *sitter.Node
	Body      *sitter.Node
}

// Functions extracts all function definitions from a parsed file, at any
// nesting depth.
func Functions(res *Result) []FunctionNode {
	var functions []FunctionNode
	Walk(res.Tree.RootNode(), res.Source, func(node *sitter.Node, source []byte) bool {
		if node.Type() != "function_definition" {
			return true
		}
		fn := FunctionNode{
			StartLine: node.StartPoint().Row + 1,
			EndLine:   node.EndPoint().Row + 1,
			Node:      node,
			Body:      node.ChildByFieldName("body"),
		}
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			fn.Name = GetNodeText(nameNode, source)
		}
		functions = append(functions, fn)
		return true
	})
	return functions
}

// Comments returns all comment nodes in the file, in document order.
func Comments(res *Result) []*sitter.Node {
	return FindNodesByKind(res.Tree.RootNode(), res.Source, "comment")
}
