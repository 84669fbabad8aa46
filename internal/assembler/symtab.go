package assembler

import "strings"

// SymbolTable holds every label and EQU constant the driver has defined,
// keyed case-insensitively (the original spelling is never needed again
// once a value is recorded, so no separate display-name map is kept).
type SymbolTable struct {
	values map[string]int32
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{values: make(map[string]int32)}
}

func foldName(name string) string { return strings.ToUpper(name) }

// Lookup implements expr.Lookup.
func (s *SymbolTable) Lookup(name string) (int32, bool) {
	v, ok := s.values[foldName(name)]
	return v, ok
}

func (s *SymbolTable) Has(name string) bool {
	_, ok := s.values[foldName(name)]
	return ok
}

func (s *SymbolTable) Get(name string) (int32, bool) {
	return s.Lookup(name)
}

func (s *SymbolTable) Set(name string, value int32) {
	s.values[foldName(name)] = value
}

// All returns every defined symbol, keyed by its folded (uppercase) name.
// Used by the assembler CLI to write the `-s` symbol file.
func (s *SymbolTable) All() map[string]int32 {
	return s.values
}
