// Package introspection runs the introspection query against a built schema
// and renders the result as a readable type listing.
package introspection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type TypeKind string

const (
	SCALAR       TypeKind = "SCALAR"
	OBJECT       TypeKind = "OBJECT"
	INTERFACE    TypeKind = "INTERFACE"
	UNION        TypeKind = "UNION"
	ENUM         TypeKind = "ENUM"
	INPUT_OBJECT TypeKind = "INPUT_OBJECT"
	LIST         TypeKind = "LIST"
	NON_NULL     TypeKind = "NON_NULL"
)

// builtinScalars are never printed.
var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// TypeRef points at a named type through any number of list and non null
// wrappers.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// String renders the reference the way it is written in a query, e.g. [Widget]!.
func (t TypeRef) String() string {
	switch t.Kind {
	case NON_NULL:
		return refString(t.OfType) + "!"
	case LIST:
		return "[" + refString(t.OfType) + "]"
	default:
		return t.Name
	}
}

func refString(t *TypeRef) string {
	if t == nil {
		return ""
	}
	return t.String()
}

type InputValue struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason,omitempty"`
}

type Field struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason,omitempty"`
}

type Type struct {
	Kind          TypeKind     `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

type Directive struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Locations   []string     `json:"locations"`
	Args        []InputValue `json:"args"`
}

type namedType struct {
	Name string `json:"name"`
}

// Schema is the decoded answer to IntrospectionQuery.
type Schema struct {
	QueryType        *namedType  `json:"queryType"`
	MutationType     *namedType  `json:"mutationType"`
	SubscriptionType *namedType  `json:"subscriptionType"`
	Types            []Type      `json:"types"`
	Directives       []Directive `json:"directives"`
}

// QueryTypeName returns the name of the root query type.
func (s *Schema) QueryTypeName() string {
	if s.QueryType == nil {
		return ""
	}
	return s.QueryType.Name
}

// Lookup returns the type called name.
func (s *Schema) Lookup(name string) (*Type, bool) {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i], true
		}
	}
	return nil, false
}

// ComputeSchemaJSON returns the result of executing the introspection query.
func ComputeSchemaJSON(ctx context.Context, schema *graphql.Schema) ([]byte, error) {
	result := graphql.Do(graphql.Params{
		Schema:        *schema,
		RequestString: IntrospectionQuery,
		OperationName: "IntrospectionQuery",
		Context:       ctx,
	})
	if result.HasErrors() {
		errs := make([]error, 0, len(result.Errors))
		for _, e := range result.Errors {
			errs = append(errs, errors.New(e.Message))
		}
		return nil, fmt.Errorf("introspection failed: %w", errors.Join(errs...))
	}

	return json.MarshalIndent(result.Data, "", "  ")
}

// Describe introspects schema. Types, fields and input values come back
// sorted by name.
func Describe(ctx context.Context, schema *graphql.Schema) (*Schema, error) {
	raw, err := ComputeSchemaJSON(ctx, schema)
	if err != nil {
		return nil, err
	}

	var out struct {
		Schema Schema `json:"__schema"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding introspection result: %w", err)
	}

	s := &out.Schema
	sort.Slice(s.Types, func(i, j int) bool { return s.Types[i].Name < s.Types[j].Name })
	for i := range s.Types {
		t := &s.Types[i]
		sort.Slice(t.Fields, func(a, b int) bool { return t.Fields[a].Name < t.Fields[b].Name })
		sort.Slice(t.InputFields, func(a, b int) bool { return t.InputFields[a].Name < t.InputFields[b].Name })
		for j := range t.Fields {
			args := t.Fields[j].Args
			sort.Slice(args, func(a, b int) bool { return args[a].Name < args[b].Name })
		}
	}
	sort.Slice(s.Directives, func(i, j int) bool { return s.Directives[i].Name < s.Directives[j].Name })
	return s, nil
}

// Print writes the user defined types of s in schema language. Meta types
// and the built in scalars are left out.
func Print(w io.Writer, s *Schema) error {
	var b strings.Builder
	first := true
	for _, t := range s.Types {
		if strings.HasPrefix(t.Name, "__") {
			continue
		}
		if t.Kind == SCALAR && builtinScalars[t.Name] {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		printType(&b, &t)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func printType(b *strings.Builder, t *Type) {
	printDescription(b, "", t.Description)

	switch t.Kind {
	case SCALAR:
		fmt.Fprintf(b, "scalar %s\n", t.Name)

	case ENUM:
		fmt.Fprintf(b, "enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			printDescription(b, "  ", v.Description)
			fmt.Fprintf(b, "  %s%s\n", v.Name, deprecation(v.IsDeprecated, v.DeprecationReason))
		}
		b.WriteString("}\n")

	case INPUT_OBJECT:
		fmt.Fprintf(b, "input %s {\n", t.Name)
		for _, f := range t.InputFields {
			printDescription(b, "  ", f.Description)
			fmt.Fprintf(b, "  %s\n", inputValue(f))
		}
		b.WriteString("}\n")

	case UNION:
		names := make([]string, 0, len(t.PossibleTypes))
		for _, p := range t.PossibleTypes {
			names = append(names, p.String())
		}
		fmt.Fprintf(b, "union %s = %s\n", t.Name, strings.Join(names, " | "))

	default:
		keyword := "type"
		if t.Kind == INTERFACE {
			keyword = "interface"
		}
		fmt.Fprintf(b, "%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			names := make([]string, 0, len(t.Interfaces))
			for _, i := range t.Interfaces {
				names = append(names, i.String())
			}
			fmt.Fprintf(b, " implements %s", strings.Join(names, " & "))
		}
		b.WriteString(" {\n")
		for _, f := range t.Fields {
			printDescription(b, "  ", f.Description)
			b.WriteString("  " + f.Name)
			if len(f.Args) > 0 {
				args := make([]string, 0, len(f.Args))
				for _, a := range f.Args {
					args = append(args, inputValue(a))
				}
				fmt.Fprintf(b, "(%s)", strings.Join(args, ", "))
			}
			fmt.Fprintf(b, ": %s%s\n", f.Type.String(), deprecation(f.IsDeprecated, f.DeprecationReason))
		}
		b.WriteString("}\n")
	}
}

func printDescription(b *strings.Builder, indent, description string) {
	if description == "" {
		return
	}
	fmt.Fprintf(b, "%s\"\"\"%s\"\"\"\n", indent, description)
}

func inputValue(v InputValue) string {
	s := v.Name + ": " + v.Type.String()
	if v.DefaultValue != nil {
		s += " = " + *v.DefaultValue
	}
	return s
}

func deprecation(deprecated bool, reason *string) string {
	if !deprecated {
		return ""
	}
	if reason == nil || *reason == "" {
		return " @deprecated"
	}
	return fmt.Sprintf(" @deprecated(reason: %q)", *reason)
}
