// Package store keeps the documents behind the resource fields in
// gocloud.dev document collections, one collection per resource.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gocloud.dev/docstore"
	_ "gocloud.dev/docstore/memdocstore"
	"gocloud.dev/gcerrors"
)

// KeyField is the document field holding the identifier.
const KeyField = "id"

// DefaultURL keeps every collection in memory, keyed by "id".
const DefaultURL = "mem://{collection}/" + KeyField

// PositionField records the order documents were first put in. List returns
// documents in that order. It is never exposed to callers.
const PositionField = "_position"

const placeholder = "{collection}"

// Store opens collections lazily from a docstore URL template in which
// "{collection}" is replaced by the collection name. It is safe for
// concurrent use.
type Store struct {
	urlTemplate string
	logger      *zap.Logger

	mu          sync.Mutex
	collections map[string]*docstore.Collection
	positions   map[string]int64
}

// Open returns a Store for urlTemplate, e.g. "mem://{collection}/id".
func Open(ctx context.Context, urlTemplate string, logger *zap.Logger) (*Store, error) {
	if !strings.Contains(urlTemplate, placeholder) {
		return nil, fmt.Errorf("store url %q has no %s placeholder", urlTemplate, placeholder)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		urlTemplate: urlTemplate,
		logger:      logger,
		collections: make(map[string]*docstore.Collection),
		positions:   make(map[string]int64),
	}, nil
}

func (s *Store) collection(ctx context.Context, name string) (*docstore.Collection, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if coll, ok := s.collections[name]; ok {
		return coll, nil
	}
	if s.collections == nil {
		return nil, errors.New("store is closed")
	}

	url := strings.ReplaceAll(s.urlTemplate, placeholder, name)
	coll, err := docstore.OpenCollection(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", name, err)
	}
	last, err := lastPosition(ctx, coll)
	if err != nil {
		_ = coll.Close()
		return nil, fmt.Errorf("opening collection %s: %w", name, err)
	}
	s.logger.Debug("opened collection", zap.String("collection", name), zap.String("url", url), zap.Int64("position", last))
	s.collections[name] = coll
	s.positions[name] = last
	return coll, nil
}

// lastPosition returns the highest position stored in coll, or 0 when it is
// empty.
func lastPosition(ctx context.Context, coll *docstore.Collection) (int64, error) {
	iter := coll.Query().OrderBy(PositionField, docstore.Descending).Limit(1).Get(ctx, PositionField)
	defer iter.Stop()

	doc := map[string]interface{}{}
	err := iter.Next(ctx, doc)
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return toPosition(doc[PositionField]), nil
}

func toPosition(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// position returns the stored position of the document with id, or the next
// free one of collection when there is no such document.
func (s *Store) position(ctx context.Context, coll *docstore.Collection, collection, id string) (int64, error) {
	doc := map[string]interface{}{KeyField: id}
	err := coll.Get(ctx, doc, PositionField)
	if err == nil {
		if p, ok := doc[PositionField]; ok {
			return toPosition(p), nil
		}
	} else if gcerrors.Code(err) != gcerrors.NotFound {
		return 0, fmt.Errorf("getting %s %q: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[collection]++
	return s.positions[collection], nil
}

// List returns every document of collection in the order they were first put.
func (s *Store) List(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	iter := coll.Query().OrderBy(PositionField, docstore.Ascending).Get(ctx)
	defer iter.Stop()

	docs := []map[string]interface{}{}
	for {
		doc := map[string]interface{}{}
		err := iter.Next(ctx, doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("querying %s: %w", collection, err)
		}
		delete(doc, docstore.DefaultRevisionField)
		delete(doc, PositionField)
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get returns the document of collection with the given id. It returns a nil
// document and a nil error when there is none.
func (s *Store) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	doc := map[string]interface{}{KeyField: id}
	if err := coll.Get(ctx, doc); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting %s %q: %w", collection, id, err)
	}
	delete(doc, docstore.DefaultRevisionField)
	delete(doc, PositionField)
	return doc, nil
}

// Put creates or replaces a document. The document must have a string id. A
// replaced document keeps its place in List.
func (s *Store) Put(ctx context.Context, collection string, doc map[string]interface{}) error {
	id, ok := doc[KeyField].(string)
	if !ok || id == "" {
		return fmt.Errorf("document of %s has no %s", collection, KeyField)
	}

	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}
	pos, err := s.position(ctx, coll, collection, id)
	if err != nil {
		return err
	}
	doc[PositionField] = pos
	if err := coll.Put(ctx, doc); err != nil {
		return fmt.Errorf("putting into %s: %w", collection, err)
	}
	return nil
}

// Collections returns the names of the opened collections, sorted.
func (s *Store) Collections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every opened collection. The store can not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for name, coll := range s.collections {
		if err := coll.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
	}
	s.collections = nil
	return errors.Join(errs...)
}
