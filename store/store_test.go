package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.appointy.com/catalog/store"
)

const seed = `{
	"widgets": [
		{"id": 2, "name": "Medium Blue Widget", "quantity": 4, "ownerId": 1},
		{"id": 1, "name": "Small Red Widget", "quantity": 3, "ownerId": 1},
		{"name": "Nameless"}
	],
	"owners": [
		{"id": "1", "firstName": "Bob", "lastName": "Smith"}
	]
}`

func openSeeded(t *testing.T) *store.Store {
	ctx := context.Background()
	s, err := store.Open(ctx, store.DefaultURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	n, err := s.Seed(ctx, strings.NewReader(seed))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return s
}

func TestOpenRequiresPlaceholder(t *testing.T) {
	_, err := store.Open(context.Background(), "mem://widgets/id", nil)
	require.Error(t, err)
}

func TestSeedAndGet(t *testing.T) {
	s := openSeeded(t)

	doc, err := s.Get(context.Background(), "widgets", "1")
	require.NoError(t, err)
	require.Equal(t, "Small Red Widget", doc["name"])
	require.Equal(t, "1", doc["id"])
	require.NotContains(t, doc, "DocstoreRevision")
	require.NotContains(t, doc, store.PositionField)

	owner, err := s.Get(context.Background(), "owners", "1")
	require.NoError(t, err)
	require.Equal(t, "Bob", owner["firstName"])
}

func TestGetMissing(t *testing.T) {
	s := openSeeded(t)

	doc, err := s.Get(context.Background(), "widgets", "42")
	require.NoError(t, err)
	require.Nil(t, doc)

	doc, err = s.Get(context.Background(), "authors", "1")
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestListInInsertionOrder(t *testing.T) {
	s := openSeeded(t)

	docs, err := s.List(context.Background(), "widgets")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	require.Equal(t, "2", docs[0]["id"])
	require.Equal(t, "1", docs[1]["id"])
	_, err = uuid.Parse(docs[2]["id"].(string))
	require.NoError(t, err, "generated id should be a uuid")
	for _, doc := range docs {
		require.NotContains(t, doc, store.PositionField)
	}

	empty, err := s.List(context.Background(), "books")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestListKeepsNumericIDsInFileOrder(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.DefaultURL, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seed(ctx, strings.NewReader(`{"widgets": [{"id": 1}, {"id": 2}, {"id": 10}]}`))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "widgets", map[string]interface{}{"id": "1", "name": "replaced"}))
	require.NoError(t, s.Put(ctx, "widgets", map[string]interface{}{"id": "3"}))

	docs, err := s.List(ctx, "widgets")
	require.NoError(t, err)
	var ids []string
	for _, doc := range docs {
		ids = append(ids, doc["id"].(string))
	}
	require.Equal(t, []string{"1", "2", "10", "3"}, ids)
	require.Equal(t, "replaced", docs[0]["name"])
}

func TestPut(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	require.Error(t, s.Put(ctx, "books", map[string]interface{}{"title": "no id"}))
	require.NoError(t, s.Put(ctx, "books", map[string]interface{}{"id": "b1", "title": "Go"}))

	doc, err := s.Get(ctx, "books", "b1")
	require.NoError(t, err)
	require.Equal(t, "Go", doc["title"])
	require.Equal(t, []string{"books", "owners", "widgets"}, s.Collections())
}

func TestSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"authors":[{"id":7,"firstName":"Ann"}]}`), 0o600))

	s, err := store.Open(context.Background(), store.DefaultURL, nil)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.SeedFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	doc, err := s.Get(context.Background(), "authors", "7")
	require.NoError(t, err)
	require.Equal(t, "Ann", doc["firstName"])
}

func TestSeedBadJSON(t *testing.T) {
	s, err := store.Open(context.Background(), store.DefaultURL, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seed(context.Background(), strings.NewReader(`{"widgets": {}}`))
	require.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	s, err := store.Open(context.Background(), store.DefaultURL, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.List(context.Background(), "widgets")
	require.Error(t, err)
}
