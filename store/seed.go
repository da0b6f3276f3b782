package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Seed loads a JSON object mapping collection names to arrays of documents,
// as in:
//
//	{"widgets": [{"id": 1, "name": "Small Red Widget", "ownerId": 2}]}
//
// Numeric ids become strings and documents without an id get a random one.
// It returns the number of documents written.
func (s *Store) Seed(ctx context.Context, r io.Reader) (int, error) {
	var data map[string][]map[string]interface{}
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, fmt.Errorf("decoding seed data: %w", err)
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	n := 0
	for _, name := range names {
		for _, doc := range data[name] {
			if doc == nil {
				continue
			}
			doc[KeyField] = normalizeID(doc[KeyField])
			if err := s.Put(ctx, name, doc); err != nil {
				return n, err
			}
			n++
		}
		s.logger.Debug("seeded collection", zap.String("collection", name), zap.Int("documents", len(data[name])))
	}
	return n, nil
}

// SeedFile seeds the store from the file at path.
func (s *Store) SeedFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	return s.Seed(ctx, f)
}

func normalizeID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return uuid.NewString()
	case string:
		if id == "" {
			return uuid.NewString()
		}
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
