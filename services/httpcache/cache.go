// Package httpcache provides a cached HTTP fetch capability for outbound
// catalog calls. GET responses are kept in a local BadgerDB key-value store
// for 24 hours, keyed by the full request URL, so repeated searches do not
// hammer the external API. The cache is injectable: a nil store degrades to
// plain pass-through fetching, which tests rely on.
package httpcache

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long cached responses stay valid.
const DefaultTTL = 24 * time.Hour

// Doer is the outbound HTTP capability handed to API clients.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Store is a badger-backed response cache wrapping an upstream Doer.
type Store struct {
	db       *badger.DB
	upstream Doer
	ttl      time.Duration
}

// Open opens (or creates) the cache database at path and wraps upstream.
func Open(path string, upstream Doer) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open http cache at %s: %w", path, err)
	}
	return &Store{db: db, upstream: upstream, ttl: DefaultTTL}, nil
}

// NewPassthrough returns a Store that never caches; useful for tests and for
// running without a cache directory.
func NewPassthrough(upstream Doer) *Store {
	return &Store{upstream: upstream, ttl: DefaultTTL}
}

// Close releases the underlying key-value store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// cachedResponse is the serialized form kept in badger: a two-byte status
// code prefix followed by the raw body. Headers are not replayed; callers
// only consume the JSON bodies.
type cachedResponse struct {
	status int
	body   []byte
}

// Do executes the request, serving cacheable GETs from the store when a fresh
// entry exists. Only 2xx responses are stored.
func (s *Store) Do(req *http.Request) (*http.Response, error) {
	if s.db == nil || req.Method != http.MethodGet {
		return s.upstream.Do(req)
	}

	key := []byte(req.URL.String())
	if cached, ok := s.get(key); ok {
		return &http.Response{
			StatusCode: cached.status,
			Status:     http.StatusText(cached.status),
			Body:       io.NopCloser(bytes.NewReader(cached.body)),
			Header:     http.Header{"X-From-Cache": []string{"1"}},
			Request:    req,
		}, nil
	}

	resp, err := s.upstream.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	s.put(key, cachedResponse{status: resp.StatusCode, body: body})

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (s *Store) get(key []byte) (cachedResponse, bool) {
	var cached cachedResponse
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			// 2 bytes of status, possibly no body at all
			if len(val) < 2 {
				return badger.ErrKeyNotFound
			}
			cached.status = int(val[0])<<8 | int(val[1])
			cached.body = append([]byte(nil), val[2:]...)
			return nil
		})
	})
	if err != nil {
		return cachedResponse{}, false
	}
	return cached, true
}

func (s *Store) put(key []byte, cached cachedResponse) {
	val := make([]byte, 0, len(cached.body)+2)
	val = append(val, byte(cached.status>>8), byte(cached.status))
	val = append(val, cached.body...)

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, val).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		// A failed cache write is not a failed request
		log.Printf("[httpcache] Warning: failed to store response for %s: %v", key, err)
	}
}
