package schema

import (
	"fmt"
	"strings"
)

// Model is an immutable set of declared fields.
type Model struct {
	name   string
	fields []Field
	byName map[string]FieldID
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// Lookup resolves a field by name.
func (m *Model) Lookup(name string) (Field, bool) {
	id, ok := m.byName[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[id], true
}

// Field returns the field with the given ID. It panics on an ID that was
// not issued by this model.
func (m *Model) Field(id FieldID) Field {
	if int(id) >= len(m.fields) {
		panic(fmt.Sprintf("schema: field id %d out of range for model %s", id, m.name))
	}
	return m.fields[id]
}

// Fields returns the fields in declaration order.
func (m *Model) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// FieldSpec declares one field for a Builder.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Nullable bool
	Index    IndexKind
}

// Builder assembles a Model. IDs are assigned in Add order.
type Builder struct {
	name  string
	specs []FieldSpec
}

// NewBuilder starts a model declaration.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Add declares a field.
func (b *Builder) Add(spec FieldSpec) *Builder {
	b.specs = append(b.specs, spec)
	return b
}

// Build validates the declaration and interns field IDs.
func (b *Builder) Build() (*Model, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, &SchemaError{Field: "model", Message: "model name is required"}
	}

	m := &Model{
		name:   b.name,
		fields: make([]Field, 0, len(b.specs)),
		byName: make(map[string]FieldID, len(b.specs)),
	}
	for _, spec := range b.specs {
		if spec.Name == "" {
			return nil, &SchemaError{Field: b.name, Message: "field name is required"}
		}
		if _, dup := m.byName[spec.Name]; dup {
			return nil, &SchemaError{Field: b.name + "." + spec.Name, Message: "duplicate field"}
		}
		if _, ok := ParseKind(spec.Kind.String()); !ok {
			return nil, &SchemaError{Field: b.name + "." + spec.Name, Message: fmt.Sprintf("invalid kind %v", spec.Kind)}
		}
		id := FieldID(len(m.fields))
		m.fields = append(m.fields, Field{
			ID:       id,
			Name:     spec.Name,
			Kind:     spec.Kind,
			Nullable: spec.Nullable,
			Index:    spec.Index,
		})
		m.byName[spec.Name] = id
	}
	return m, nil
}

// MustBuild is like Build but panics on error.
// Use only in tests or for statically known declarations.
func (b *Builder) MustBuild() *Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
