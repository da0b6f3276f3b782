package schemabuilder

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

// argField ties a struct field of an args struct to its GraphQL argument.
type argField struct {
	field    reflect.StructField
	name     string
	optional bool
}

// argFields reads the fields of an args struct. Anonymous fields are not
// supported.
func argFields(typ reflect.Type) ([]argField, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct but received type %s", typ.Name())
	}

	seen := make(map[string]bool)
	var fields []argField
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous {
			return nil, fmt.Errorf("bad arg type %s: anonymous fields not supported", typ)
		}

		fieldInfo, err := parseGraphQLFieldInfo(field)
		if err != nil {
			return nil, fmt.Errorf("bad type %s: %s", typ, err.Error())
		}
		if fieldInfo.Skipped {
			continue
		}
		if seen[fieldInfo.Name] {
			return nil, fmt.Errorf("bad arg type %s: duplicate field %s", typ, fieldInfo.Name)
		}
		seen[fieldInfo.Name] = true

		fields = append(fields, argField{
			field:    field,
			name:     fieldInfo.Name,
			optional: fieldInfo.OptionalInputField || field.Type.Kind() == reflect.Ptr,
		})
	}
	return fields, nil
}

// argsFor derives the argument configuration of a field from an args struct.
// Fields are required unless they are pointers or tagged optional, e.g.
//
//	type itemArgs struct {
//	    ID    ID
//	    Limit *int64 `graphql:"limit"`
//	}
func argsFor(typ reflect.Type) (graphql.FieldConfigArgument, error) {
	fields, err := argFields(typ)
	if err != nil {
		return nil, err
	}

	args := graphql.FieldConfigArgument{}
	for _, f := range fields {
		ft := f.field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		scalar, ok := scalarFor(ft)
		if !ok {
			return nil, fmt.Errorf("bad arg type %s: unsupported type %s for %s", typ, ft, f.name)
		}

		info, _ := parseGraphQLFieldInfo(f.field)
		var in graphql.Input = scalar
		if !f.optional {
			in = graphql.NewNonNull(scalar)
		}
		args[f.name] = &graphql.ArgumentConfig{Type: in, Description: info.Description}
	}
	return args, nil
}

// decodeArgs fills the args struct pointed to by dest from the coerced
// argument values handed to a resolver.
func decodeArgs(values map[string]interface{}, dest interface{}) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("destination should be a pointer to a struct")
	}
	v = v.Elem()

	fields, err := argFields(v.Type())
	if err != nil {
		return err
	}

	for _, f := range fields {
		value, ok := values[f.name]
		if !ok || value == nil {
			if !f.optional {
				return fmt.Errorf("%s: required argument missing", f.name)
			}
			continue
		}
		if err := setArg(v.FieldByIndex(f.field.Index), value); err != nil {
			return fmt.Errorf("%s: %s", f.name, err)
		}
	}

	for name := range values {
		found := false
		for _, f := range fields {
			if f.name == name {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown arg %s", name)
		}
	}
	return nil
}

func setArg(dest reflect.Value, value interface{}) error {
	if dest.Kind() == reflect.Ptr {
		elem := reflect.New(dest.Type().Elem())
		if err := setArg(elem.Elem(), value); err != nil {
			return err
		}
		dest.Set(elem)
		return nil
	}

	if dest.Type() == idType {
		dest.Set(reflect.ValueOf(ID{Value: fmt.Sprint(value)}))
		return nil
	}

	src := reflect.ValueOf(value)
	if (src.Kind() == reflect.String) != (dest.Kind() == reflect.String) {
		return fmt.Errorf("can not use %s as %s", src.Type(), dest.Type())
	}
	if !src.Type().ConvertibleTo(dest.Type()) {
		return fmt.Errorf("can not use %s as %s", src.Type(), dest.Type())
	}
	dest.Set(src.Convert(dest.Type()))
	return nil
}
