package schemabuilder

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
	"go.appointy.com/catalog/jerrors"
)

// FieldFactory produces the Query fields generated for a resource.
type FieldFactory interface {
	// CollectionField returns a field resolving to every item of r.
	CollectionField(r *Resource, pluralName string) *graphql.Field
	// ItemField returns a field resolving to one item of r selected by an
	// "id" argument.
	ItemField(r *Resource, pluralName string) *graphql.Field
}

// Source provides the documents behind the generated fields. Documents are
// keyed by GraphQL field name; collections are named by the plural field name.
type Source interface {
	List(ctx context.Context, collection string) ([]map[string]interface{}, error)
	// Get returns a nil document and a nil error when id does not exist.
	Get(ctx context.Context, collection, id string) (map[string]interface{}, error)
}

// SourceFieldFactory is the FieldFactory reading items from a Source.
type SourceFieldFactory struct {
	Source Source
}

var _ FieldFactory = &SourceFieldFactory{}

type itemArgs struct {
	ID ID `graphql:"id,description=Identifier of the item."`
}

var itemArgsConfig = mustArgsFor(reflect.TypeOf(itemArgs{}))

func mustArgsFor(typ reflect.Type) graphql.FieldConfigArgument {
	args, err := argsFor(typ)
	if err != nil {
		panic(err)
	}
	return args
}

// CollectionField is the getAllField of a resource.
func (f *SourceFieldFactory) CollectionField(r *Resource, pluralName string) *graphql.Field {
	return &graphql.Field{
		Type:        graphql.NewList(r.Object()),
		Description: fmt.Sprintf("Returns all %s.", pluralName),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			docs, err := f.Source.List(p.Context, pluralName)
			if err != nil {
				return nil, jerrors.Errorf(jerrors.Internal, "listing %s: %w", pluralName, err)
			}
			return docs, nil
		},
	}
}

// ItemField is the searchIdField of a resource.
func (f *SourceFieldFactory) ItemField(r *Resource, pluralName string) *graphql.Field {
	singular := strings.ToLower(r.Name)

	return &graphql.Field{
		Type:        r.Object(),
		Description: fmt.Sprintf("Returns the %s with the given id.", singular),
		Args:        itemArgsConfig,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			var args itemArgs
			if err := decodeArgs(p.Args, &args); err != nil {
				return nil, jerrors.New(jerrors.InvalidArgument, err.Error())
			}

			doc, err := f.Source.Get(p.Context, pluralName, args.ID.Value)
			if err != nil {
				return nil, jerrors.Errorf(jerrors.Internal, "reading %s %q: %w", singular, args.ID.Value, err)
			}
			if doc == nil {
				return nil, jerrors.Errorf(jerrors.NotFound, "%s %q not found", singular, args.ID.Value)
			}
			return doc, nil
		},
	}
}
