// Package source supplies entity collections to the query engine, either from
// a remote HTTP endpoint or from the local collection store.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Josphat84/myoffice-sub003/internal/domain"
	"github.com/Josphat84/myoffice-sub003/internal/query"
)

// DefaultFetchTimeout bounds a single remote load.
const DefaultFetchTimeout = 10 * time.Second

// maxBody caps the size of a remote collection.
const maxBody = 32 << 20

// HTTPSource loads collections with a GET per entity. The endpoint must
// answer with a JSON array of objects or an object whose "data" member is one.
type HTTPSource struct {
	client *http.Client
	urls   map[string]string
}

// NewHTTPSource maps entity names to endpoint URLs. A nil client gets one
// with the given timeout.
func NewHTTPSource(urls map[string]string, client *http.Client, timeout time.Duration) *HTTPSource {
	if client == nil {
		if timeout <= 0 {
			timeout = DefaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	m := make(map[string]string, len(urls))
	for k, v := range urls {
		m[k] = v
	}
	return &HTTPSource{client: client, urls: m}
}

// Entities returns the remotely served entity names.
func (s *HTTPSource) Entities() []string {
	out := make([]string, 0, len(s.urls))
	for k := range s.urls {
		out = append(out, k)
	}
	return out
}

func (s *HTTPSource) Load(ctx context.Context, entity string) ([]query.Record, error) {
	url, ok := s.urls[entity]
	if !ok {
		return nil, domain.EntityNotFound(entity)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.LoadFailed(entity, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.LoadFailed(entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.LoadFailed(entity, fmt.Errorf("unexpected status %s", resp.Status))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, domain.LoadFailed(entity, err)
	}
	records, err := decodeCollection(body)
	if err != nil {
		return nil, domain.LoadFailed(entity, err)
	}
	return records, nil
}

// decodeCollection accepts a bare array or a {"data": [...]} envelope.
func decodeCollection(body []byte) ([]query.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		if len(env.Data) == 0 {
			return nil, fmt.Errorf("response object has no data member")
		}
		trimmed = env.Data
	}
	return query.DecodeRecords(trimmed)
}
