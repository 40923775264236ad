// Package schema declares per-table field schemas and value coercion.
// Entity types register their fields once; the registry is append-only
// and read for the rest of the process lifetime.
package schema

import (
	"fmt"
	"sync"
)

// Type is the coercion type of a schema field.
type Type string

const (
	Bool   Type = "bool"
	Int    Type = "int"
	String Type = "string"
)

// Field declares one column of a table schema.
type Field struct {
	Name string
	Type Type
}

// ErrUnsupportedType reports a declared type outside the coercion domain.
// It indicates misconfiguration and is a hard stop, not a pass-through.
var ErrUnsupportedType = fmt.Errorf("unsupported schema type")

// Registry maps table names to their ordered field declarations.
// It is an owned cache: constructed with the app, populated at entity
// registration, never recomputed at runtime.
type Registry struct {
	mu     sync.RWMutex
	tables map[string][]Field
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string][]Field)}
}

// Register stores the ordered schema for a table. Registering the same
// table twice replaces nothing; the first declaration wins.
func (r *Registry) Register(table string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[table]; ok {
		return
	}
	owned := make([]Field, len(fields))
	copy(owned, fields)
	r.tables[table] = owned
}

// Lookup returns the ordered schema for a table.
func (r *Registry) Lookup(table string) ([]Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fields, ok := r.tables[table]
	return fields, ok
}
