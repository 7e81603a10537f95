package httpcache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

// countingDoer returns canned responses and counts upstream hits.
type countingDoer struct {
	calls  int
	status int
	body   string
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(d.body))),
		Request:    req,
	}, nil
}

func openTestStore(t *testing.T, upstream Doer) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), upstream)
	if err != nil {
		t.Fatalf("failed to open cache store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func get(t *testing.T, store *Store, url string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := store.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

func TestSecondGetServedFromCache(t *testing.T) {
	upstream := &countingDoer{body: `{"ok":true}`}
	store := openTestStore(t, upstream)

	first := get(t, store, "https://api.example.com/search?q=heat")
	second := get(t, store, "https://api.example.com/search?q=heat")

	if first != `{"ok":true}` || second != `{"ok":true}` {
		t.Errorf("unexpected bodies: %q / %q", first, second)
	}
	if upstream.calls != 1 {
		t.Errorf("expected one upstream call, got %d", upstream.calls)
	}
}

func TestEmptyBodyResponseServedFromCache(t *testing.T) {
	upstream := &countingDoer{status: http.StatusNoContent}
	store := openTestStore(t, upstream)

	get(t, store, "https://api.example.com/ping")
	body := get(t, store, "https://api.example.com/ping")

	if body != "" {
		t.Errorf("expected empty body, got %q", body)
	}
	if upstream.calls != 1 {
		t.Errorf("expected one upstream call, got %d", upstream.calls)
	}
}

func TestDifferentURLsAreDistinctKeys(t *testing.T) {
	upstream := &countingDoer{body: `{}`}
	store := openTestStore(t, upstream)

	get(t, store, "https://api.example.com/search?q=heat")
	get(t, store, "https://api.example.com/search?q=heat&page=2")

	if upstream.calls != 2 {
		t.Errorf("expected two upstream calls for distinct URLs, got %d", upstream.calls)
	}
}

func TestErrorResponsesNotCached(t *testing.T) {
	upstream := &countingDoer{status: http.StatusBadGateway, body: "upstream broken"}
	store := openTestStore(t, upstream)

	get(t, store, "https://api.example.com/search?q=heat")
	get(t, store, "https://api.example.com/search?q=heat")

	if upstream.calls != 2 {
		t.Errorf("expected error responses to bypass the cache, got %d upstream calls", upstream.calls)
	}
}

func TestPassthroughNeverCaches(t *testing.T) {
	upstream := &countingDoer{body: `{}`}
	store := NewPassthrough(upstream)

	get(t, store, "https://api.example.com/a")
	get(t, store, "https://api.example.com/a")

	if upstream.calls != 2 {
		t.Errorf("expected passthrough to always hit upstream, got %d calls", upstream.calls)
	}
}

func TestNonGETBypassesCache(t *testing.T) {
	upstream := &countingDoer{body: `{}`}
	store := openTestStore(t, upstream)

	req, _ := http.NewRequest(http.MethodPost, "https://api.example.com/a", nil)
	if _, err := store.Do(req); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if _, err := store.Do(req); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if upstream.calls != 2 {
		t.Errorf("expected POSTs to bypass the cache, got %d upstream calls", upstream.calls)
	}
}
