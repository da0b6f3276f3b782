package schemabuilder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/iancoleman/strcase"
)

// graphQLFieldInfo contains basic struct field information related to GraphQL.
type graphQLFieldInfo struct {
	// Skipped indicates that this field should not be included in GraphQL.
	Skipped bool

	// Name is the GraphQL field name that should be exposed for this field.
	Name string

	// NonNull marks an output field as non-nullable.
	NonNull bool

	// OptionalInputField indicates that this field should be treated as an optional
	// field on graphQL input args.
	OptionalInputField bool

	// DeprecationReason if set marks the field deprecated, e.g.
	// `graphql:"size,deprecated=Use dimensions"`.
	DeprecationReason string

	// Description of the field, e.g. `graphql:"name,description=Display name"`.
	// Descriptions can not contain commas.
	Description string
}

// parseGraphQLFieldInfo parses a struct field and returns a struct with the parsed information about the field (tag info, name, etc).
func parseGraphQLFieldInfo(field reflect.StructField) (*graphQLFieldInfo, error) {
	if field.PkgPath != "" { //If the field of struct is not exported, then it is not exposed
		return &graphQLFieldInfo{Skipped: true}, nil
	}

	tag := field.Tag.Get("graphql")
	if tag == "" {
		tag = field.Tag.Get("json")
	}
	tags := strings.Split(tag, ",")
	var name string
	if len(tags) > 0 {
		name = strings.TrimSpace(tags[0])
	}
	if name == "-" {
		return &graphQLFieldInfo{Skipped: true}, nil
	}

	if name == "" {
		name = makeGraphql(field.Name)
	}

	info := &graphQLFieldInfo{Name: name}
	for _, opt := range tags[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case strings.HasPrefix(opt, "deprecated="):
			info.DeprecationReason = strings.TrimPrefix(opt, "deprecated=")
		case strings.HasPrefix(opt, "description="):
			info.Description = strings.TrimPrefix(opt, "description=")
		case opt == "nonnull":
			info.NonNull = true
		case opt == "optional":
			info.OptionalInputField = true
		case opt == "omitempty" || opt == "":
		default:
			return nil, fmt.Errorf("unknown option %q on field %s", opt, field.Name)
		}
	}

	return info, nil
}

// makeGraphql converts a field name "MyField" into a graphQL field name "myField".
func makeGraphql(s string) string {
	return strcase.ToLowerCamel(s)
}

// scalarFor returns the scalar exposing typ, looking at registered scalars
// first and then at the kind.
func scalarFor(typ reflect.Type) (*graphql.Scalar, bool) {
	if s, ok := scalars[typ]; ok {
		return s, true
	}

	switch typ.Kind() {
	case reflect.String:
		return graphql.String, true
	case reflect.Bool:
		return graphql.Boolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return graphql.Int, true
	case reflect.Float32, reflect.Float64:
		return graphql.Float, true
	}
	return nil, false
}

// outputType returns the GraphQL output type for a struct field type. Pointers
// are nullable; everything else is nullable unless nonNull is set.
func outputType(typ reflect.Type, nonNull bool) (graphql.Output, error) {
	if typ.Kind() == reflect.Ptr {
		return outputType(typ.Elem(), false)
	}

	var out graphql.Output
	if s, ok := scalarFor(typ); ok {
		out = s
	} else if typ.Kind() == reflect.Slice || typ.Kind() == reflect.Array {
		elem, err := outputType(typ.Elem(), false)
		if err != nil {
			return nil, err
		}
		out = graphql.NewList(elem)
	} else {
		return nil, fmt.Errorf("unsupported type %s", typ)
	}

	if nonNull {
		return graphql.NewNonNull(out), nil
	}
	return out, nil
}

// objectFields reads the exported fields of a struct type into GraphQL fields.
// The fields have no resolver: the engine reads the value stored under the
// field name in map sources.
func objectFields(typ reflect.Type) (graphql.Fields, error) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", typ)
	}

	fields := graphql.Fields{}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		info, err := parseGraphQLFieldInfo(field)
		if err != nil {
			return nil, err
		}
		if info.Skipped {
			continue
		}
		if _, ok := fields[info.Name]; ok {
			return nil, fmt.Errorf("duplicate field %s on %s", info.Name, typ)
		}

		out, err := outputType(field.Type, info.NonNull)
		if err != nil {
			return nil, fmt.Errorf("bad type for field %s on %s: %w", field.Name, typ, err)
		}

		fields[info.Name] = &graphql.Field{
			Name:              info.Name,
			Type:              out,
			Description:       info.Description,
			DeprecationReason: info.DeprecationReason,
		}
	}

	return fields, nil
}
