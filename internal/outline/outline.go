// Package outline indexes the symbols of a Go source file so a cursor or
// selection can be related to the identifier and declarations around it.
package outline

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"refactorizer/internal/model"
)

// SymbolKind classifies an indexed declaration.
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
	KindType     SymbolKind = "type"
	KindVariable SymbolKind = "variable"
	KindConstant SymbolKind = "constant"
)

// Symbol is a declaration or identifier occurrence with its source range.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range model.Range
}

// Index holds a file's symbols in source order.
type Index struct {
	Ranges      *SymbolRanges
	identifiers []Symbol
}

var identifierTypes = map[string]bool{
	"identifier":         true,
	"field_identifier":   true,
	"type_identifier":    true,
	"package_identifier": true,
}

// Parse builds an Index for Go source.
func Parse(ctx context.Context, src []byte) (*Index, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("outline: parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("outline: parse: empty tree")
	}

	idx := &Index{Ranges: &SymbolRanges{}}
	idx.walk(root, src)
	return idx, nil
}

func (idx *Index) walk(node *sitter.Node, src []byte) {
	switch node.Type() {
	case "function_declaration":
		idx.addNamed(node, "name", KindFunction, src)
	case "method_declaration":
		idx.addNamed(node, "name", KindMethod, src)
	case "type_spec":
		idx.addNamed(node, "name", KindType, src)
	case "var_spec":
		idx.addSpecNames(node, KindVariable, src)
	case "const_spec":
		idx.addSpecNames(node, KindConstant, src)
	}
	if identifierTypes[node.Type()] {
		idx.identifiers = append(idx.identifiers, Symbol{
			Name:  node.Content(src),
			Kind:  SymbolKind(node.Type()),
			Range: nodeRange(node),
		})
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		idx.walk(node.NamedChild(i), src)
	}
}

func (idx *Index) addNamed(node *sitter.Node, field string, kind SymbolKind, src []byte) {
	name := node.ChildByFieldName(field)
	if name == nil {
		return
	}
	idx.Ranges.Add(Symbol{Name: name.Content(src), Kind: kind, Range: nodeRange(node)})
}

// addSpecNames indexes every name of "var a, b = ..." separately, each with
// the range of the whole declaration.
func (idx *Index) addSpecNames(node *sitter.Node, kind SymbolKind, src []byte) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "identifier" {
			break
		}
		idx.Ranges.Add(Symbol{Name: child.Content(src), Kind: kind, Range: nodeRange(node)})
	}
}

// IdentifierAt returns the identifier touching p. A cursor just past the last
// character still selects the identifier.
func (idx *Index) IdentifierAt(p model.Point) (Symbol, bool) {
	var touching *Symbol
	for i := range idx.identifiers {
		sym := &idx.identifiers[i]
		if sym.Range.Contains(p) {
			return *sym, true
		}
		if sym.Range.End == p && touching == nil {
			touching = sym
		}
	}
	if touching != nil {
		return *touching, true
	}
	return Symbol{}, false
}

func nodeRange(n *sitter.Node) model.Range {
	start, end := n.StartPoint(), n.EndPoint()
	return model.Range{
		Start: model.Point{Row: int(start.Row), Column: int(start.Column)},
		End:   model.Point{Row: int(end.Row), Column: int(end.Column)},
	}
}
