// Package server assembles the catalog: the document store, the GraphQL
// schema over it and the HTTP routes.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.appointy.com/catalog"
	"go.appointy.com/catalog/bundle"
	"go.appointy.com/catalog/config"
	"go.appointy.com/catalog/schemabuilder"
	"go.appointy.com/catalog/store"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// TracerName names the tracer spans of GraphQL operations are recorded with.
const TracerName = "go.appointy.com/catalog"

// BuildSchema registers the catalog resources on top of src and builds the
// schema.
func BuildSchema(src schemabuilder.Source, cfg *config.Config, logger *zap.Logger) (*graphql.Schema, error) {
	opts := []schemabuilder.Option{schemabuilder.WithLogger(logger)}
	if cfg.Server.StrictSchema {
		opts = append(opts, schemabuilder.Strict())
	}

	sb := schemabuilder.NewSchema(&schemabuilder.SourceFieldFactory{Source: src}, opts...)
	RegisterSchema(sb)

	return sb.Build()
}

// OpenStore opens the document store and loads the seed file, if any.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.URL, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Store.SeedFile == "" {
		return st, nil
	}

	n, err := st.SeedFile(ctx, cfg.Store.SeedFile)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Info("seeded store", zap.String("file", cfg.Store.SeedFile), zap.Int("documents", n))
	return st, nil
}

// GetGraphqlServer builds the catalog handler: GraphQL on cfg.Server.Path and
// the client bundle on every other path. The returned func releases the store
// and the bundle bucket.
func GetGraphqlServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	schema, err := BuildSchema(st, cfg, logger)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	bucket, err := bundle.OpenOutput(bundle.New(".", cfg.WebServer))
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := bucket.Close(); err != nil {
			logger.Warn("closing bundle bucket", zap.Error(err))
		}
		if err := st.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, catalog.HTTPHandler(schema,
		catalog.WithMiddlewares(
			catalog.TracingMiddleware(otel.Tracer(TracerName)),
			catalog.LoggingMiddleware(logger),
		),
		catalog.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		catalog.WithTimeout(cfg.Server.Timeout),
		catalog.WithPlayground(cfg.Server.Playground),
	))
	mux.Handle("/", bundle.Handler(bucket, logger))

	return mux, cleanup, nil
}
