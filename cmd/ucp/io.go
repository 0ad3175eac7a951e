package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	goccyjson "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/ucp-tools/ucpschema"
)

// httpFetcher implements bundler.Fetcher/capability's Fetch collaborator
// over net/http, mirroring kaptinlin/jsonschema's defaultHTTPLoader: a
// bounded-timeout client, a plain GET, a non-200 status treated as failure.
type httpFetcher struct {
	client *http.Client
}

func newHTTPFetcher() *httpFetcher {
	return &httpFetcher{client: &http.Client{Timeout: 10 * time.Second}}
}

func (f *httpFetcher) Fetch(u *url.URL) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// osFileReader implements bundler.FileReader/capability's ReadFile
// collaborator over the local filesystem, transcoding YAML input to JSON
// so the core pipeline only ever sees JSON bytes.
type osFileReader struct{}

func (osFileReader) ReadFile(p string) ([]byte, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return toJSON(p, b)
}

// toJSON transcodes b to JSON if path's extension says it's YAML,
// otherwise returns b unchanged. This is the one place schema/payload
// input is allowed to arrive as YAML (spec's core operates on JSON only).
func toJSON(path string, b []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, &ucpschema.SchemaError{Message: fmt.Sprintf("%s: invalid YAML: %v", path, err)}
		}
		return goccyjson.Marshal(v)
	default:
		return b, nil
	}
}

// readInputFile reads path (or stdin for "-") and returns JSON bytes,
// transcoding YAML along the way.
func readInputFile(path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, &ucpschema.IoError{Op: "read_stdin", Err: err}
		}
		return toJSON("stdin.json", b)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ucpschema.IoError{Op: "read_file", Err: err}
	}
	return toJSON(path, b)
}
