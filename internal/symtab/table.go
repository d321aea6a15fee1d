// Package symtab assigns dense, 0-based Data Area slots to user variables
// as they are declared, in the order a top-to-bottom tree walk visits
// them. Both internal/codegen/lower.go and internal/interp build their own
// fresh Table from the same AST; neither parsing nor the AST itself ever
// carries slot numbers.
package symtab

import "fmt"

// SymbolError reports a duplicate declaration or a reference to an
// undeclared name.
type SymbolError struct {
	Name string
	Msg  string
}

func (e *SymbolError) Error() string { return fmt.Sprintf("%s: %s", e.Name, e.Msg) }

// Table maps variable names to slot indices in declaration order.
type Table struct {
	names []string
	index map[string]int
}

// New returns an empty Table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// Declare assigns name the next free slot. It is an error to declare the
// same name twice in the one scope this language has.
func (t *Table) Declare(name string) (int, error) {
	if _, ok := t.index[name]; ok {
		return 0, &SymbolError{Name: name, Msg: "already declared"}
	}
	slot := len(t.names)
	t.names = append(t.names, name)
	t.index[name] = slot
	return slot, nil
}

// Resolve returns the slot a previously declared name was assigned.
func (t *Table) Resolve(name string) (int, error) {
	slot, ok := t.index[name]
	if !ok {
		return 0, &SymbolError{Name: name, Msg: "undeclared"}
	}
	return slot, nil
}

// Count returns the number of names declared so far.
func (t *Table) Count() int { return len(t.names) }
