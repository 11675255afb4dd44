package homology

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/croghan-lab/scbridge/blobstore"
	s3store "github.com/croghan-lab/scbridge/blobstore/s3"
	"github.com/croghan-lab/scbridge/internal/rds"
)

// SourceOptions control where and how a homology table is fetched.
type SourceOptions struct {
	// Client used for HTTP fetches. When nil a client with Timeout is used.
	Client *http.Client

	// Timeout for remote operations. Zero means DefaultTimeout.
	Timeout time.Duration

	// Strict makes the reachability probe reject any status >= 400 instead
	// of only server errors.
	Strict bool

	// Store overrides backend resolution: the location is fetched from it
	// verbatim. Used for tests and pre-configured object stores.
	Store blobstore.Store
}

// LoadTable fetches and decodes a homology table.
//
// A location without a URI scheme is a local file path. "http(s)://"
// locations are probed for reachability and then downloaded once. "s3://"
// locations resolve bucket and key from the URI using ambient AWS
// configuration. The payload may be a serialized R data frame (optionally
// compressed) or comma/tab separated text with a header row. Every failure
// is wrapped as ErrHomologyLookup.
func LoadTable(ctx context.Context, location string, opts SourceOptions) (*Table, error) {
	data, err := fetch(ctx, location, opts)
	if err != nil {
		return nil, &ErrHomologyLookup{Location: location, cause: err}
	}
	t, err := decodeTable(data)
	if err != nil {
		return nil, &ErrHomologyLookup{Location: location, cause: err}
	}
	return t, nil
}

func fetch(ctx context.Context, location string, opts SourceOptions) ([]byte, error) {
	if opts.Store != nil {
		return opts.Store.Fetch(ctx, location)
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return blobstore.NewLocalStore("").Fetch(ctx, location)
	}
	switch u.Scheme {
	case "http", "https":
		return fetchHTTP(ctx, location, opts)
	case "s3":
		st, err := s3store.NewStoreFromEnv(ctx, u.Host, "")
		if err != nil {
			return nil, err
		}
		return st.Fetch(ctx, strings.TrimPrefix(u.Path, "/"))
	case "file":
		return blobstore.NewLocalStore("").Fetch(ctx, u.Path)
	}
	return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
}

func fetchHTTP(ctx context.Context, location string, opts SourceOptions) ([]byte, error) {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if err := Probe(ctx, client, location, opts.Strict); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("get %s: unexpected status %s", location, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// decodeTable sniffs the payload: R serialization magic (raw or compressed)
// or delimited text with a header row.
func decodeTable(data []byte) (*Table, error) {
	if isRDS(data) {
		return decodeRDSTable(data)
	}
	return decodeDelimited(data)
}

func isRDS(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	switch {
	case data[0] == 0x1f && data[1] == 0x8b: // gzip
		return true
	case bytes.HasPrefix(data, []byte("BZh")):
		return true
	case bytes.HasPrefix(data, []byte("X\n")):
		return true
	}
	return false
}

func decodeRDSTable(data []byte) (*Table, error) {
	x, err := rds.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if !x.HasClass("data.frame") {
		return nil, fmt.Errorf("payload is %q, want a data frame", strings.Join(x.Class(), "/"))
	}
	t := NewTable()
	for i, name := range x.Names() {
		if err := t.AddColumn(name, x.List[i].StringColumn()); err != nil {
			return nil, err
		}
	}
	if len(t.Names()) == 0 {
		return nil, fmt.Errorf("data frame has no columns")
	}
	return t, nil
}

func decodeDelimited(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	if i := bytes.IndexByte(data, '\n'); i < 0 || bytes.IndexByte(data[:i], '\t') >= 0 {
		r.Comma = '\t'
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("delimited table has no data rows")
	}

	header := records[0]
	columns := make([][]string, len(header))
	for i := range columns {
		columns[i] = make([]string, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		for i := range header {
			columns[i] = append(columns[i], rec[i])
		}
	}
	t := NewTable()
	for i, name := range header {
		if err := t.AddColumn(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}
