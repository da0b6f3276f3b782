// Package catalog serves a GraphQL schema over HTTP.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	jsoniter "github.com/json-iterator/go"
	"go.appointy.com/catalog/jerrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is a single GraphQL operation received over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// HandlerFunc executes a request against the schema.
type HandlerFunc func(ctx context.Context, req *Request) *graphql.Result

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	Middlewares  []MiddlewareFunc
	MaxBodyBytes int64
	Timeout      time.Duration
	Playground   bool
}

// WithMiddlewares wraps the execution of every request. The first middleware
// is the outermost.
func WithMiddlewares(middlewares ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// WithMaxBodyBytes limits the size of POST bodies. Zero means no limit.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(o *handlerOptions) {
		o.MaxBodyBytes = n
	}
}

// WithTimeout bounds the execution of every request. Zero means no timeout.
func WithTimeout(d time.Duration) HandlerOption {
	return func(o *handlerOptions) {
		o.Timeout = d
	}
}

// WithPlayground controls whether a GET without a query serves the GraphiQL
// page. It does by default.
func WithPlayground(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.Playground = enabled
	}
}

// HTTPHandler implements the handler required for executing the graphql queries
func HTTPHandler(schema *graphql.Schema, opts ...HandlerOption) http.Handler {
	h := &httpHandler{
		handler: handler{
			schema: schema,
		},
	}

	o := handlerOptions{Playground: true}
	for _, opt := range opts {
		opt(&o)
	}
	h.opts = o

	prev := h.execute
	for i := range o.Middlewares {
		prev = o.Middlewares[len(o.Middlewares)-1-i](prev)
	}
	h.exec = prev

	return h
}

type handler struct {
	schema *graphql.Schema
}

type httpHandler struct {
	handler

	opts handlerOptions
	exec HandlerFunc
}

type httpResponse struct {
	Data   interface{}      `json:"data"`
	Errors []*jerrors.Error `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, response httpResponse) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write(responseJSON)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, httpResponse{Errors: []*jerrors.Error{jerrors.ConvertError(err)}})
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req *Request
	var err error

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if r.URL.Query().Get("query") == "" && h.opts.Playground {
			servePlayground(w, r, "GraphQL Playground", r.URL.Path)
			return
		}
		req, err = requestFromURL(r)
	case http.MethodPost:
		req, err = h.requestFromBody(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, errors.New("request must be a GET or POST"))
		return
	}
	if err != nil {
		writeError(w, http.StatusOK, err)
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusOK, errors.New("request must include a query"))
		return
	}

	ctx := r.Context()
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}
	ctx = addVariables(ctx, req.Variables)

	result := h.exec(ctx, req)
	if result == nil {
		writeError(w, http.StatusOK, errors.New("no result"))
		return
	}

	writeJSON(w, http.StatusOK, httpResponse{
		Data:   result.Data,
		Errors: jerrors.FromFormattedList(result.Errors),
	})
}

func (h *httpHandler) requestFromBody(w http.ResponseWriter, r *http.Request) (*Request, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, errors.New("request must include a query")
	}

	body := r.Body
	if h.opts.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	}

	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, jerrors.Errorf(jerrors.InvalidArgument, "decoding request body: %w", err)
	}
	return &req, nil
}

func requestFromURL(r *http.Request) (*Request, error) {
	values := r.URL.Query()
	req := &Request{
		Query:         values.Get("query"),
		OperationName: values.Get("operationName"),
	}
	if v := values.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
			return nil, jerrors.Errorf(jerrors.InvalidArgument, "decoding variables: %w", err)
		}
	}
	return req, nil
}

func (h *httpHandler) execute(ctx context.Context, req *Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         *h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

type graphqlVariableKeyType int

const graphqlVariableKey graphqlVariableKeyType = 0

// ExtractVariables is used to returns the variables received as part of the graphql request.
// This is intended to be used from within the interceptors.
func ExtractVariables(ctx context.Context) map[string]interface{} {
	if v := ctx.Value(graphqlVariableKey); v != nil {
		return v.(map[string]interface{})
	}

	return nil
}

func addVariables(ctx context.Context, v map[string]interface{}) context.Context {
	return context.WithValue(ctx, graphqlVariableKey, v)
}

// playgroundHTML is a simple HTML page that loads GraphiQL from CDN
// to provide an interactive GraphQL playground.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>%s</title>
    <style>
        body {
            height: 100%%;
            margin: 0;
            overflow: hidden;
        }
        #graphiql {
            height: 100vh;
        }
    </style>
    <link rel="stylesheet" href="https://unpkg.com/graphiql@1.4.0/graphiql.min.css" />
    <script src="https://unpkg.com/react@16.14.0/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@16.14.0/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@1.4.0/graphiql.min.js"></script>
</head>
<body>
    <div id="graphiql">Loading...</div>
    <script>
      var endpoint = %q;
      function graphQLFetcher(graphQLParams) {
        return fetch(endpoint, {
          method: 'post',
          headers: {
            Accept: 'application/json',
            'Content-Type': 'application/json',
          },
          body: JSON.stringify(graphQLParams),
          credentials: 'omit',
        }).then(function (response) {
          return response.json().catch(function () {
            return response.text();
          });
        });
      }

      ReactDOM.render(
        React.createElement(GraphiQL, {
          fetcher: graphQLFetcher,
        }),
        document.getElementById('graphiql'),
      );
    </script>
</body>
</html>`

func servePlayground(w http.ResponseWriter, r *http.Request, title, endpoint string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = fmt.Fprintf(w, playgroundHTML, title, endpoint)
}

// PlaygroundHandler returns an HTTP handler that serves an interactive
// GraphiQL playground posting to graphqlEndpoint.
//
//	mux.Handle("/graphql", catalog.HTTPHandler(schema))
//	mux.Handle("/playground", catalog.PlaygroundHandler("Catalog", "/graphql"))
func PlaygroundHandler(title, graphqlEndpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		servePlayground(w, r, title, graphqlEndpoint)
	})
}
