package outline

import "refactorizer/internal/model"

// SymbolRanges keeps declarations in the order they were added, split by
// kind, so the declaration enclosing a range can be found by scanning back
// from the most recent one.
type SymbolRanges struct {
	functions         []Symbol
	structuredObjects []Symbol // types, structs, interfaces
	variables         []Symbol
}

// Add records a symbol. Symbols must be added in source order.
func (r *SymbolRanges) Add(sym Symbol) {
	switch sym.Kind {
	case KindFunction, KindMethod:
		r.functions = append(r.functions, sym)
	case KindVariable, KindConstant:
		r.variables = append(r.variables, sym)
	default:
		r.structuredObjects = append(r.structuredObjects, sym)
	}
}

// Functions returns the indexed functions and methods.
func (r *SymbolRanges) Functions() []Symbol { return r.functions }

// compareRanges returns -1 when a ends before b starts, 1 when b ends before
// a starts and 0 when they intersect.
func compareRanges(a, b model.Range) int {
	isLess := func(x, y model.Range) bool {
		return x.End.Row < y.Start.Row ||
			(x.End.Row == y.Start.Row && x.End.Column < y.Start.Column)
	}
	switch {
	case isLess(a, b):
		return -1
	case isLess(b, a):
		return 1
	default:
		return 0
	}
}

// FindParentFunction returns the function whose range intersects rng.
func (r *SymbolRanges) FindParentFunction(rng model.Range) (Symbol, bool) {
	return scanBack(r.functions, rng, true)
}

// FindOverlappingVariable returns a variable declared over the same range,
// as happens with "var a, b = ...".
func (r *SymbolRanges) FindOverlappingVariable(rng model.Range) (Symbol, bool) {
	return scanBack(r.variables, rng, true)
}

// FindStructuredObjectParent returns the type declaration enclosing rng.
// Unlike the other lookups it scans the whole list.
func (r *SymbolRanges) FindStructuredObjectParent(rng model.Range) (Symbol, bool) {
	return scanBack(r.structuredObjects, rng, false)
}

func scanBack(syms []Symbol, rng model.Range, stopEarly bool) (Symbol, bool) {
	for i := len(syms) - 1; i >= 0; i-- {
		cmp := compareRanges(syms[i].Range, rng)
		if cmp == 0 {
			return syms[i], true
		}
		if stopEarly && cmp < 0 {
			// every earlier symbol ends before rng too
			break
		}
	}
	return Symbol{}, false
}
