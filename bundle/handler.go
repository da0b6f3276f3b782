package bundle

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// IndexFile is served for the root path and for folders.
const IndexFile = "index.html"

// OpenOutput opens the output folder of c as a bucket, creating it if needed.
func OpenOutput(c *Config) (*blob.Bucket, error) {
	bucket, err := fileblob.OpenBucket(c.Output.Path, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, fmt.Errorf("opening bundle output %s: %w", c.Output.Path, err)
	}
	return bucket, nil
}

// WriteIndex renders the html template with the bundle script elements and
// stores it as the index page of the bucket.
func WriteIndex(ctx context.Context, bucket *blob.Bucket, c *Config, template string) error {
	page := c.InjectScripts(template)
	opts := &blob.WriterOptions{ContentType: "text/html; charset=utf-8"}
	if err := bucket.WriteAll(ctx, IndexFile, []byte(page), opts); err != nil {
		return fmt.Errorf("writing %s: %w", IndexFile, err)
	}
	return nil
}

// Handler serves the files of a bundle output bucket.
func Handler(bucket *blob.Bucket, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		key := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if key == "" || strings.HasSuffix(r.URL.Path, "/") {
			key = path.Join(key, IndexFile)
		}

		ctx := r.Context()
		attrs, err := bucket.Attributes(ctx, key)
		if err != nil {
			if gcerrors.Code(err) == gcerrors.NotFound {
				http.NotFound(w, r)
				return
			}
			logger.Error("reading bundle attributes", zap.String("key", key), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		contentType := attrs.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(path.Ext(key))
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.FormatInt(attrs.Size, 10))
		if r.Method == http.MethodHead {
			return
		}

		reader, err := bucket.NewReader(ctx, key, nil)
		if err != nil {
			logger.Error("opening bundle file", zap.String("key", key), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer reader.Close()

		if _, err := io.Copy(w, reader); err != nil {
			logger.Warn("writing bundle file", zap.String("key", key), zap.Error(err))
		}
	})
}
