package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/tienda/internal/config"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`{"version":{"number":"9.0.0"}}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.Config{ES: config.ESConfig{URL: srv.URL, Index: "products"}})
	require.NoError(t, err)
	return client
}

func TestSearchDecodesHits(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/_search", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_source": {"name": "Steel Lamp", "description": "desk light", "price": "19.99", "stock": 4}},
					{"_source": {"name": "Wooden Lamp", "stock": 1}}
				]
			}
		}`))
	})

	total, products, err := client.Search(context.Background(), "lamp", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, products, 2)
	assert.Equal(t, "Steel Lamp", products[0].Name)
	assert.Equal(t, "desk light", products[0].Description)
	assert.Equal(t, 4, products[0].Stock)
	assert.Equal(t, "19.99", products[0].Price.String())
	assert.Equal(t, "Wooden Lamp", products[1].Name)
	assert.Equal(t, 1, products[1].Stock)
}

func TestSearchNoHits(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	})

	total, products, err := client.Search(context.Background(), "nothing", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
}

func TestSearchBackendError(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"shard failure"}`))
	})

	_, _, err := client.Search(context.Background(), "lamp", 0, 10)
	assert.Error(t, err)
}
