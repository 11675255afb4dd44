package homology

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds remote homology-table operations when the caller
// does not set one.
const DefaultTimeout = 60 * time.Second

// Probe checks that a remote location is reachable before committing to a
// full download. In strict mode any status at or above 400 fails; in lenient
// mode server errors (>= 500) fail but client errors pass, for servers that
// reject HEAD on resources they happily GET.
func Probe(ctx context.Context, client *http.Client, url string, strict bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	limit := http.StatusInternalServerError
	if strict {
		limit = http.StatusBadRequest
	}
	if resp.StatusCode >= limit {
		return fmt.Errorf("probe %s: unexpected status %s", url, resp.Status)
	}
	return nil
}
