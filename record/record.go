// Package record implements a thin active-record layer over the db
// statement builders. An entity tracks its attributes against a
// construction-time snapshot and embeds its own persistence operations.
package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/strutkit/strut/db"
	"github.com/strutkit/strut/domain/schema"
)

// IDField is the identifier attribute every table is keyed on.
const IDField = "id"

var (
	// ErrNotFound reports a lookup that matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrNotPersisted reports an operation that requires an identifier
	// on an entity that was never saved.
	ErrNotPersisted = errors.New("record has no identifier")

	// ErrDeleted reports use of an entity after Delete. Behavior past
	// deletion is undefined, so it fails fast instead.
	ErrDeleted = errors.New("record is deleted")
)

// Getter overrides attribute reads for one field.
type Getter func(value any) any

// Setter overrides attribute writes for one field.
type Setter func(value any) any

// Definition declares an entity type: its table, ordered schema, and
// optional per-field accessor overrides. Overrides are an explicit
// lookup table populated at registration, not discovered by convention.
type Definition struct {
	Table   string
	Fields  []schema.Field
	Getters map[string]Getter
	Setters map[string]Setter
}

// Register installs the definition's schema into the registry. Call once
// per entity type at startup.
func (d *Definition) Register(reg *schema.Registry) {
	reg.Register(d.Table, d.Fields)
}

// Record is one active-record entity instance. Its snapshot never
// mutates after construction; dirty state is the attribute map compared
// against it.
type Record struct {
	def     *Definition
	exec    db.Executor
	attrs   map[string]any
	orig    map[string]any
	deleted bool
}

// New constructs a transient entity from fresh attributes.
func New(def *Definition, exec db.Executor, attrs map[string]any) *Record {
	r := &Record{
		def:   def,
		exec:  exec,
		attrs: make(map[string]any, len(attrs)),
	}
	for name, value := range attrs {
		r.applySet(name, value)
	}
	r.orig = snapshot(r.attrs)
	return r
}

// load constructs a persisted entity from a storage row.
func load(def *Definition, exec db.Executor, row map[string]any) *Record {
	return &Record{
		def:   def,
		exec:  exec,
		attrs: snapshot(row),
		orig:  snapshot(row),
	}
}

// Create constructs an entity and immediately persists it.
func Create(ctx context.Context, def *Definition, exec db.Executor, attrs map[string]any) (*Record, error) {
	r := New(def, exec, attrs)
	if err := r.Save(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// FindOrFail loads exactly one row by identifier.
func FindOrFail(ctx context.Context, def *Definition, exec db.Executor, id int64) (*Record, error) {
	rows, err := db.Select(exec, def.Table, def.Fields).
		Condition(IDField, id).
		ExecuteAndFetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s id %d", ErrNotFound, def.Table, id)
	}
	return load(def, exec, rows[0]), nil
}

// All loads a window of entities in underlying storage order. Pages are
// numbered from 1.
func All(ctx context.Context, def *Definition, exec db.Executor, page, perPage int) ([]*Record, error) {
	if page < 1 {
		page = 1
	}
	rows, err := db.Select(exec, def.Table, def.Fields).
		Range((page-1)*perPage, perPage).
		ExecuteAndFetchAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, len(rows))
	for i, row := range rows {
		out[i] = load(def, exec, row)
	}
	return out, nil
}

// Save persists the entity: update keyed on the identifier when present,
// insert otherwise. A fresh insert captures the generated identifier and
// refreshes the snapshot.
func (r *Record) Save(ctx context.Context) error {
	if r.deleted {
		return ErrDeleted
	}

	if id, ok := r.attrs[IDField]; ok {
		fields := snapshot(r.attrs)
		delete(fields, IDField)
		_, err := db.Update(r.exec, r.def.Table).
			Fields(fields).
			Condition(IDField, id).
			Execute(ctx)
		if err != nil {
			return err
		}
	} else {
		res, err := db.Insert(r.exec, r.def.Table).
			Fields(snapshot(r.attrs)).
			Execute(ctx)
		if err != nil {
			return err
		}
		r.attrs[IDField] = res.LastInsertID
	}

	r.orig = snapshot(r.attrs)
	return nil
}

// SaveIfChanged persists only when the attributes genuinely differ from
// the construction-time snapshot. A clean entity is a silent no-op.
func (r *Record) SaveIfChanged(ctx context.Context) error {
	if r.deleted {
		return ErrDeleted
	}
	if attrsEqual(r.attrs, r.orig) {
		return nil
	}
	return r.Save(ctx)
}

// Delete removes the backing row and marks the entity deleted. An entity
// that was never persisted cannot be deleted.
func (r *Record) Delete(ctx context.Context) error {
	if r.deleted {
		return ErrDeleted
	}
	id, ok := r.attrs[IDField]
	if !ok {
		return fmt.Errorf("%w: delete on %s", ErrNotPersisted, r.def.Table)
	}
	_, err := db.Delete(r.exec, r.def.Table).
		Condition(IDField, id).
		Execute(ctx)
	if err != nil {
		return err
	}
	r.deleted = true
	return nil
}

// Dirty reports whether the attributes differ from the snapshot.
func (r *Record) Dirty() bool {
	return !attrsEqual(r.attrs, r.orig)
}

// ID returns the identifier, or 0 when not persisted.
func (r *Record) ID() int64 {
	id, _ := r.attrs[IDField].(int64)
	return id
}

// Get reads an attribute through its getter override when present.
func (r *Record) Get(name string) any {
	value := r.attrs[name]
	if g, ok := r.def.Getters[name]; ok {
		return g(value)
	}
	return value
}

// Set writes an attribute through its setter override when present.
func (r *Record) Set(name string, value any) {
	r.applySet(name, value)
}

// Has reports whether the attribute exists.
func (r *Record) Has(name string) bool {
	_, ok := r.attrs[name]
	return ok
}

// Unset removes an attribute.
func (r *Record) Unset(name string) {
	delete(r.attrs, name)
}

// Attributes returns a copy of the current attribute map.
func (r *Record) Attributes() map[string]any {
	return snapshot(r.attrs)
}

func (r *Record) applySet(name string, value any) {
	if s, ok := r.def.Setters[name]; ok {
		value = s(value)
	}
	r.attrs[name] = value
}

func snapshot(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// attrsEqual compares attribute maps. Values are coerced scalars
// (bool/int64/string), so dynamic equality is sufficient.
func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || av != bv {
			return false
		}
	}
	return true
}
