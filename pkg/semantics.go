package rscript

// SymbolTable holds the top-level declarations of a program, so later stages can resolve
// names that are used before they are declared.
type SymbolTable struct {
	Entries map[string]Statement
	order   []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Entries: make(map[string]Statement),
	}
}

// CollectSymbols gathers the top-level function and struct declarations of program.
func CollectSymbols(program *Program) (*SymbolTable, error) {
	t := NewSymbolTable()
	for _, stmt := range program.Statements {
		var id *Identifier
		switch s := stmt.(type) {
		case *FunctionDeclaration:
			id = s.Identifier
		case StructDeclaration:
			id = s.StructName()
		default:
			continue
		}

		if err := t.Add(id, stmt); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *SymbolTable) Add(id *Identifier, decl Statement) error {
	if _, ok := t.Entries[id.Name]; ok {
		return &AlreadyDeclaredError{Name: id.Name, Location: id.Location}
	}

	t.Entries[id.Name] = decl
	t.order = append(t.order, id.Name)

	return nil
}

func (t *SymbolTable) Get(name string) Statement {
	decl, contains := t.Entries[name]
	if !contains {
		return nil
	}

	return decl
}

func (t *SymbolTable) Function(name string) *FunctionDeclaration {
	fn, _ := t.Get(name).(*FunctionDeclaration)
	return fn
}

// Functions returns the function declarations in source order.
func (t *SymbolTable) Functions() []*FunctionDeclaration {
	var fns []*FunctionDeclaration
	for _, name := range t.order {
		if fn, ok := t.Entries[name].(*FunctionDeclaration); ok {
			fns = append(fns, fn)
		}
	}

	return fns
}

func (t *SymbolTable) Structs() []StructDeclaration {
	var structs []StructDeclaration
	for _, name := range t.order {
		if s, ok := t.Entries[name].(StructDeclaration); ok {
			structs = append(structs, s)
		}
	}

	return structs
}
