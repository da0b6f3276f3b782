package schemabuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Message is the value of the static message field on Query.
const Message = "Have a nice day."

// messageOwner names the static message field in collisions.
const messageOwner = "message"

// Schema is a struct that can be used to build out a GraphQL schema. Resources
// are registered on it and Build composes the root Query type from them.
type Schema struct {
	factory   FieldFactory
	pluralize PluralizeFunc
	logger    *zap.Logger
	strict    bool

	resources []*Resource
	byName    map[string]*Resource

	once       sync.Once
	composed   bool
	fields     graphql.Fields
	collisions []Collision
	query      *graphql.Object
}

// Option configures a Schema.
type Option func(*Schema)

// WithPluralize replaces the pluralization used to name collection fields.
func WithPluralize(fn PluralizeFunc) Option {
	return func(s *Schema) { s.pluralize = fn }
}

// WithLogger sets the logger used to report field name collisions.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Schema) { s.logger = logger }
}

// Strict makes Build fail when two generated fields share a name instead of
// keeping the last one.
func Strict() Option {
	return func(s *Schema) { s.strict = true }
}

// NewSchema creates a new schema whose resource fields are produced by factory.
func NewSchema(factory FieldFactory, opts ...Option) *Schema {
	s := &Schema{
		factory:   factory,
		pluralize: Pluralize,
		logger:    zap.NewNop(),
		byName:    make(map[string]*Resource),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resource registers a Go struct as a resource. The name is the GraphQL type
// name; the query field names are derived from it. It panics if the name is
// already registered, typ can not be exposed or the Query type has already
// been composed.
//
//	widget := schema.Resource("Widget", Widget{}, "A widget.")
func (s *Schema) Resource(name string, typ interface{}, description ...string) *Resource {
	if len(description) > 1 {
		panic("at most one description allowed for Resource")
	}
	if r, ok := s.byName[name]; ok {
		if reflect.TypeOf(r.Type) != reflect.TypeOf(typ) {
			panic("re-registered resource with different type")
		}
		return r
	}
	if s.composed {
		panic(fmt.Errorf("can not register resource %s after the schema is built", name))
	}

	fields, err := objectFields(reflect.TypeOf(typ))
	if err != nil {
		panic(fmt.Errorf("can not register resource %s: %w", name, err))
	}

	desc := ""
	if len(description) > 0 {
		desc = description[0]
	}

	r := &Resource{
		Name:        name,
		Description: desc,
		Type:        typ,
		schema:      s,
		fields:      fields,
	}
	s.resources = append(s.resources, r)
	s.byName[name] = r
	return r
}

// Resources returns the registered resources in registration order.
func (s *Schema) Resources() []*Resource {
	out := make([]*Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// FieldNames returns the single-item and collection field names of r.
func (s *Schema) FieldNames(r *Resource) (singular, plural string) {
	singular = strings.ToLower(r.Name)
	return singular, s.pluralize(singular)
}

func (s *Schema) pluralName(r *Resource) string {
	_, plural := s.FieldNames(r)
	return plural
}

// Collision records a generated field that replaced an earlier one.
type Collision struct {
	Key      string
	Previous string // Resource name, or "message" for the static field.
	Resource string
}

func (c Collision) String() string {
	return fmt.Sprintf("field %q of %s replaces the one of %s", c.Key, c.Resource, c.Previous)
}

// ComposeQuery builds the fields of the root Query type: the static message
// field followed by a collection and a single-item field per resource, in
// order. A later field replaces an earlier one with the same name; every such
// replacement is returned as a Collision.
func ComposeQuery(resources []*Resource, pluralize PluralizeFunc, factory FieldFactory) (graphql.Fields, []Collision) {
	fields := graphql.Fields{
		"message": messageField(),
	}
	owners := map[string]string{"message": messageOwner}

	var collisions []Collision
	put := func(key string, r *Resource, f *graphql.Field) {
		if prev, ok := owners[key]; ok {
			collisions = append(collisions, Collision{Key: key, Previous: prev, Resource: r.Name})
		}
		owners[key] = r.Name
		fields[key] = f
	}

	for _, r := range resources {
		singular := strings.ToLower(r.Name)
		plural := pluralize(singular)

		put(plural, r, factory.CollectionField(r, plural))
		put(singular, r, factory.ItemField(r, plural))
	}

	return fields, collisions
}

func messageField() *graphql.Field {
	return &graphql.Field{
		Type:        graphql.String,
		Description: "A kind message of hope and love.",
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return Message, nil
		},
	}
}

func (s *Schema) queryFields() (graphql.Fields, []Collision) {
	s.once.Do(func() {
		s.fields, s.collisions = ComposeQuery(s.resources, s.pluralize, s.factory)
		s.composed = true
	})
	return s.fields, s.collisions
}

// Query returns the root Query type. Its fields are composed the first time
// the engine asks for them and kept afterwards.
func (s *Schema) Query() *graphql.Object {
	if s.query == nil {
		s.query = graphql.NewObject(graphql.ObjectConfig{
			Name:        "Query",
			Description: "A query operation for our GraphQL server.",
			Fields: graphql.FieldsThunk(func() graphql.Fields {
				fields, _ := s.queryFields()
				return fields
			}),
		})
	}
	return s.query
}

// Build creates a graphql.Schema from the registered resources.
func (s *Schema) Build() (*graphql.Schema, error) {
	_, collisions := s.queryFields()
	for _, c := range collisions {
		s.logger.Warn("query field name collision",
			zap.String("field", c.Key),
			zap.String("previous", c.Previous),
			zap.String("resource", c.Resource))
	}
	if s.strict && len(collisions) > 0 {
		return nil, fmt.Errorf("bad query type: %s", collisions[0])
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: s.Query()})
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	s.logger.Debug("schema built", zap.Int("resources", len(s.resources)), zap.Int("queryFields", len(s.fields)))
	return &schema, nil
}

// MustBuild builds a schema and panics if an error occurs.
func (s *Schema) MustBuild() *graphql.Schema {
	built, err := s.Build()
	if err != nil {
		panic(err)
	}
	return built
}
