package schemabuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"go.appointy.com/catalog/jerrors"
)

// Resource represents a Go type exposed as a queryable object type, together
// with the collection and single-item fields generated for it on Query.
type Resource struct {
	Name        string // GraphQL type name, e.g. "Widget".
	Description string
	Type        interface{} // Sample value of the Go struct describing the fields.

	schema *Schema
	fields graphql.Fields
	links  []*link
	object *graphql.Object
}

type link struct {
	name        string
	target      *Resource
	foreignKey  string
	description string
}

// Link exposes a field on the resource which resolves the value stored under
// foreignKey to the target resource, using the target's single-item field.
// For example, for a Widget holding the id of its owner:
//
//	widget.Link("owner", owner, "ownerId", "The owner of the widget.")
func (r *Resource) Link(name string, target *Resource, foreignKey string, description ...string) {
	if len(description) > 1 {
		panic("at most one description allowed for Link")
	}
	if target == nil {
		panic(fmt.Errorf("can not link %s on %s to a nil resource", name, r.Name))
	}
	if r.schema.composed {
		panic(fmt.Errorf("can not link %s on %s after the schema is built", name, r.Name))
	}
	if _, ok := r.fields[name]; ok {
		panic(fmt.Errorf("duplicate field %s on %s", name, r.Name))
	}
	for _, l := range r.links {
		if l.name == name {
			panic(fmt.Errorf("duplicate link %s on %s", name, r.Name))
		}
	}

	desc := ""
	if len(description) > 0 {
		desc = description[0]
	}
	r.links = append(r.links, &link{name: name, target: target, foreignKey: foreignKey, description: desc})
}

// Object returns the object type of the resource. Fields are resolved lazily
// by the engine, so resources may link to each other in both directions.
func (r *Resource) Object() *graphql.Object {
	if r.object != nil {
		return r.object
	}

	r.object = graphql.NewObject(graphql.ObjectConfig{
		Name:        r.Name,
		Description: r.Description,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := make(graphql.Fields, len(r.fields)+len(r.links))
			for name, f := range r.fields {
				fields[name] = f
			}
			for _, l := range r.links {
				fields[l.name] = r.linkField(l)
			}
			return fields
		}),
	})
	return r.object
}

func (r *Resource) linkField(l *link) *graphql.Field {
	item := r.schema.factory.ItemField(l.target, r.schema.pluralName(l.target))

	return &graphql.Field{
		Type:        l.target.Object(),
		Description: l.description,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			source, ok := p.Source.(map[string]interface{})
			if !ok {
				return nil, nil
			}
			id, ok := source[l.foreignKey]
			if !ok || id == nil {
				return nil, nil
			}
			p.Args = map[string]interface{}{"id": fmt.Sprint(id)}
			doc, err := item.Resolve(p)
			if jerrors.Code(err) == jerrors.NotFound {
				// A key pointing at a missing document reads as no link.
				return nil, nil
			}
			return doc, err
		},
	}
}

// ID is the graphql ID scalar
type ID struct {
	Value string
}

// MarshalJSON implements JSON Marshalling used to generate the output
func (id ID) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, id.Value), nil
}

var idType = reflect.TypeOf(ID{})

// scalars maps Go types to the GraphQL scalar used for them, ahead of the
// mapping by kind.
var scalars = map[reflect.Type]*graphql.Scalar{
	idType:                      graphql.ID,
	reflect.TypeOf(time.Time{}): graphql.DateTime,
}

// RegisterScalar is used to map a Go type to a GraphQL scalar. Fields of that
// type are then exposed with the scalar.
//
// For example, to expose a custom Money type as a Float:
//
//	if err := schemabuilder.RegisterScalar(reflect.TypeOf(Money(0)), graphql.Float); err != nil {
//	    panic(err)
//	}
func RegisterScalar(typ reflect.Type, scalar *graphql.Scalar) error {
	if typ.Kind() == reflect.Ptr {
		return errors.New("type should not be of pointer type")
	}
	if scalar == nil {
		return errors.New("scalar should not be nil")
	}

	scalars[typ] = scalar
	return nil
}

// isScalarType checks whether a reflect.Type is a registered scalar or not
func isScalarType(t reflect.Type) bool {
	_, ok := scalars[t]
	return ok
}
