package schema

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadFile reads and loads every model declared in a CUE file.
func LoadFile(path string) (map[string]*Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return LoadCUE(path, src)
}

// LoadModel loads a CUE file and returns the named model.
func LoadModel(path, name string) (*Model, error) {
	models, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	m, ok := models[name]
	if !ok {
		return nil, &SchemaError{Field: name, Message: fmt.Sprintf("model not declared (have %v)", ModelNames(models))}
	}
	return m, nil
}

// LoadCUE compiles CUE source and builds every model under the top-level
// "model" struct. Field IDs follow declaration order within each model.
func LoadCUE(filename string, src []byte) (map[string]*Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, &SchemaError{Field: "model", Message: "no model declarations found", Pos: v.Pos()}
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	models := make(map[string]*Model)
	for iter.Next() {
		m, err := compileModel(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		models[m.Name()] = m
	}

	if len(models) == 0 {
		return nil, &SchemaError{Field: "model", Message: "no model declarations found", Pos: modelsVal.Pos()}
	}
	return models, nil
}

// ModelNames returns the sorted names of loaded models.
func ModelNames(models map[string]*Model) []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func compileModel(name string, v cue.Value) (*Model, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &SchemaError{Field: name + ".fields", Message: "fields are required", Pos: v.Pos()}
	}

	indexes, err := parseIndexes(name, v)
	if err != nil {
		return nil, err
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	b := NewBuilder(name)
	for iter.Next() {
		fieldName := iter.Label()
		kind, nullable, err := extractKind(name+"."+fieldName, iter.Value())
		if err != nil {
			return nil, err
		}
		b.Add(FieldSpec{
			Name:     fieldName,
			Kind:     kind,
			Nullable: nullable,
			Index:    indexes[fieldName],
		})
		delete(indexes, fieldName)
	}

	if len(indexes) > 0 {
		unknown := make([]string, 0, len(indexes))
		for fieldName := range indexes {
			unknown = append(unknown, fieldName)
		}
		sort.Strings(unknown)
		return nil, &SchemaError{
			Field:   name + ".indexes." + unknown[0],
			Message: "index declared for unknown field",
			Pos:     v.Pos(),
		}
	}

	return b.Build()
}

// parseIndexes reads the optional indexes struct: field name to index kind.
func parseIndexes(model string, v cue.Value) (map[string]IndexKind, error) {
	out := make(map[string]IndexKind)
	indexVal := v.LookupPath(cue.ParsePath("indexes"))
	if !indexVal.Exists() {
		return out, nil
	}

	iter, err := indexVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kind, ok := ParseIndexKind(s)
		if !ok {
			return nil, &SchemaError{
				Field:   model + ".indexes." + iter.Label(),
				Message: fmt.Sprintf("unknown index kind %q (want hash or ordered)", s),
				Pos:     iter.Value().Pos(),
			}
		}
		out[iter.Label()] = kind
	}
	return out, nil
}

// extractKind maps a CUE type to a field kind. A type admitting null
// (string | null) marks the field nullable. Floats are forbidden.
func extractKind(field string, v cue.Value) (Kind, bool, error) {
	k := v.IncompleteKind()
	nullable := k&cue.NullKind != 0
	k &^= cue.NullKind

	switch k {
	case cue.StringKind:
		return KindString, nullable, nil
	case cue.IntKind:
		return KindInt, nullable, nil
	case cue.BoolKind:
		return KindBool, nullable, nil
	case cue.FloatKind, cue.NumberKind:
		return 0, false, &SchemaError{
			Field:   field,
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return 0, false, &SchemaError{
			Field:   field,
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}
