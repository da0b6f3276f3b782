package introspection_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
	"go.appointy.com/catalog/introspection"
	"go.appointy.com/catalog/schemabuilder"
)

type Widget struct {
	ID      schemabuilder.ID `graphql:"id,nonnull"`
	Name    string           `graphql:"name,description=Name of the widget"`
	Size    string           `graphql:"size,deprecated=Use dimensions"`
	OwnerID string           `graphql:"ownerId"`
}

type Owner struct {
	ID        schemabuilder.ID `graphql:"id,nonnull"`
	FirstName string
}

type emptySource struct{}

func (emptySource) List(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	return nil, nil
}

func (emptySource) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	return nil, nil
}

func buildSchema(t *testing.T) *introspection.Schema {
	sb := schemabuilder.NewSchema(&schemabuilder.SourceFieldFactory{Source: emptySource{}})
	widget := sb.Resource("Widget", Widget{}, "Something sold by the catalog.")
	owner := sb.Resource("Owner", Owner{})
	widget.Link("owner", owner, "ownerId", "The owner of the widget.")

	s, err := introspection.Describe(context.Background(), sb.MustBuild())
	require.NoError(t, err)
	return s
}

func TestDescribe(t *testing.T) {
	s := buildSchema(t)
	require.Equal(t, "Query", s.QueryTypeName())

	query, ok := s.Lookup("Query")
	require.True(t, ok)
	require.Equal(t, introspection.OBJECT, query.Kind)

	var names []string
	for _, f := range query.Fields {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"message", "owner", "owners", "widget", "widgets"}, names)

	widget, ok := s.Lookup("Widget")
	require.True(t, ok)
	require.Equal(t, "Something sold by the catalog.", widget.Description)

	byName := map[string]introspection.Field{}
	for _, f := range widget.Fields {
		byName[f.Name] = f
	}
	require.Equal(t, "ID!", byName["id"].Type.String())
	require.Equal(t, "Name of the widget", byName["name"].Description)
	require.True(t, byName["size"].IsDeprecated)
	require.Equal(t, "Use dimensions", *byName["size"].DeprecationReason)
	require.Equal(t, "Owner", byName["owner"].Type.String())

	for _, f := range query.Fields {
		if f.Name == "widget" {
			require.Len(t, f.Args, 1)
			require.Equal(t, "id", f.Args[0].Name)
			require.Equal(t, "ID!", f.Args[0].Type.String())
		}
		if f.Name == "widgets" {
			require.Equal(t, "[Widget]", f.Type.String())
		}
	}
}

func TestPrintDescribedSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, introspection.Print(&buf, buildSchema(t)))
	out := buf.String()

	require.Contains(t, out, "\"\"\"A query operation for our GraphQL server.\"\"\"\ntype Query {\n")
	require.Contains(t, out, "  \"\"\"A kind message of hope and love.\"\"\"\n  message: String\n")
	require.Contains(t, out, "  widget(id: ID!): Widget\n")
	require.Contains(t, out, "  widgets: [Widget]\n")
	require.Contains(t, out, "  size: String @deprecated(reason: \"Use dimensions\")\n")
	require.NotContains(t, out, "__Schema")
	require.NotContains(t, out, "scalar String")
}

func TestPrint(t *testing.T) {
	reason := "No longer sold"
	def := "10"
	s := &introspection.Schema{
		Types: []introspection.Type{
			{Kind: introspection.SCALAR, Name: "Boolean"},
			{Kind: introspection.SCALAR, Name: "DateTime", Description: "An instant."},
			{
				Kind: introspection.ENUM,
				Name: "Color",
				EnumValues: []introspection.EnumValue{
					{Name: "RED"},
					{Name: "MAUVE", IsDeprecated: true, DeprecationReason: &reason},
				},
			},
			{
				Kind: introspection.OBJECT,
				Name: "Query",
				Fields: []introspection.Field{{
					Name: "widgets",
					Args: []introspection.InputValue{{
						Name:         "first",
						Type:         introspection.TypeRef{Kind: introspection.SCALAR, Name: "Int"},
						DefaultValue: &def,
					}},
					Type: introspection.TypeRef{
						Kind: introspection.NON_NULL,
						OfType: &introspection.TypeRef{
							Kind:   introspection.LIST,
							OfType: &introspection.TypeRef{Kind: introspection.OBJECT, Name: "Widget"},
						},
					},
				}},
			},
			{Kind: introspection.OBJECT, Name: "__Type"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, introspection.Print(&buf, s))

	want := `"""An instant."""
scalar DateTime

enum Color {
  RED
  MAUVE @deprecated(reason: "No longer sold")
}

type Query {
  widgets(first: Int = 10): [Widget]!
}
`
	if diff := pretty.Compare(buf.String(), want); diff != "" {
		t.Errorf("printed schema mismatch (-got +want):\n%s", diff)
	}
}

func TestTypeRefString(t *testing.T) {
	refs := map[string]introspection.TypeRef{
		"[Widget!]!": {Kind: introspection.NON_NULL, OfType: &introspection.TypeRef{
			Kind: introspection.LIST, OfType: &introspection.TypeRef{
				Kind: introspection.NON_NULL, OfType: &introspection.TypeRef{Kind: introspection.OBJECT, Name: "Widget"},
			},
		}},
		"String": {Kind: introspection.SCALAR, Name: "String"},
		"[]":     {Kind: introspection.LIST},
		"!":      {Kind: introspection.NON_NULL},
	}
	for want := range refs {
		require.Equal(t, want, refs[want].String())
	}
}
