package schemabuilder

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type pageArgs struct {
	ID     ID     `graphql:"id"`
	Limit  *int64 `graphql:"limit"`
	Filter string `graphql:"filter,optional"`
	hidden bool
}

func TestArgsFor(t *testing.T) {
	args, err := argsFor(reflect.TypeOf(pageArgs{}))
	require.NoError(t, err)
	require.Len(t, args, 3)
	require.Equal(t, "ID!", args["id"].Type.String())
	require.Equal(t, "Int", args["limit"].Type.String())
	require.Equal(t, "String", args["filter"].Type.String())
}

func TestArgsForRejectsUnsupported(t *testing.T) {
	_, err := argsFor(reflect.TypeOf(struct{ M map[string]string }{}))
	require.Error(t, err)

	_, err = argsFor(reflect.TypeOf(struct{ ID }{}))
	require.Error(t, err)
}

func TestDecodeArgs(t *testing.T) {
	var args pageArgs
	err := decodeArgs(map[string]interface{}{"id": "w-1", "limit": 10}, &args)
	require.NoError(t, err)
	require.Equal(t, "w-1", args.ID.Value)
	require.NotNil(t, args.Limit)
	require.Equal(t, int64(10), *args.Limit)
	require.Equal(t, "", args.Filter)
}

func TestDecodeArgsErrors(t *testing.T) {
	var args pageArgs
	require.Error(t, decodeArgs(map[string]interface{}{}, &args), "missing id")
	require.Error(t, decodeArgs(map[string]interface{}{"id": "1", "other": 1}, &args), "unknown arg")
	require.Error(t, decodeArgs(map[string]interface{}{"id": "1", "filter": 5}, &args), "int as string")
	require.Error(t, decodeArgs(map[string]interface{}{"id": "1", "limit": "5"}, &args), "string as int")
	require.Error(t, decodeArgs(map[string]interface{}{"id": "1"}, args), "not a pointer")
}

func TestParseGraphQLFieldInfo(t *testing.T) {
	typ := reflect.TypeOf(struct {
		FirstName string
		Size      string `graphql:"size,deprecated=Use dimensions"`
		Skip      string `graphql:"-"`
		Email     string `json:"email,omitempty"`
		Bad       string `graphql:"bad,whatever"`
	}{})

	info, err := parseGraphQLFieldInfo(typ.Field(0))
	require.NoError(t, err)
	require.Equal(t, "firstName", info.Name)

	info, err = parseGraphQLFieldInfo(typ.Field(1))
	require.NoError(t, err)
	require.Equal(t, "Use dimensions", info.DeprecationReason)

	info, err = parseGraphQLFieldInfo(typ.Field(2))
	require.NoError(t, err)
	require.True(t, info.Skipped)

	info, err = parseGraphQLFieldInfo(typ.Field(3))
	require.NoError(t, err)
	require.Equal(t, "email", info.Name)

	_, err = parseGraphQLFieldInfo(typ.Field(4))
	require.Error(t, err)
}
