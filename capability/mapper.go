package capability

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ucp-tools/ucpschema/bundler"
)

// Mapper implements the URL→Local Mapper (spec.md §4.4): mapping a schema
// URL to a local filesystem path via an optional remote-prefix strip and a
// required local base directory.
type Mapper struct {
	LocalBase  string
	RemoteBase string
}

// Map returns the local path rawURL maps to, and whether mapping applies at
// all (false when LocalBase is unset, in which case the caller should
// fetch rawURL instead).
func (m Mapper) Map(rawURL string) (string, bool) {
	if m.LocalBase == "" {
		return "", false
	}

	var fragment string
	if m.RemoteBase != "" && strings.HasPrefix(rawURL, m.RemoteBase) {
		fragment = strings.TrimPrefix(rawURL, m.RemoteBase)
	} else if u, err := url.Parse(rawURL); err == nil {
		fragment = u.Path
	} else {
		fragment = rawURL
	}

	return path.Join(m.LocalBase, fragment), true
}

// AsFetcher adapts the mapper into a bundler.Fetcher: every URL it is asked
// to fetch is instead mapped to a local path and read with read. This lets
// self-describing local mode (spec.md §4.4) reuse the bundler's normal
// http(s)-scheme code path for $refs that the capability graph expresses as
// URLs but that actually live on disk.
func (m Mapper) AsFetcher(read bundler.FileReader) bundler.Fetcher {
	return mappedFetcher{mapper: m, read: read}
}

type mappedFetcher struct {
	mapper Mapper
	read   bundler.FileReader
}

func (f mappedFetcher) Fetch(u *url.URL) ([]byte, error) {
	localPath, ok := f.mapper.Map(u.String())
	if !ok {
		return nil, fmt.Errorf("no local base configured for %s", u)
	}
	if f.read == nil {
		return nil, fmt.Errorf("no file reader configured for %s", localPath)
	}
	return f.read.ReadFile(localPath)
}
