package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, url string) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: url})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.Error(t, err)
}

func TestEmbedBatch_OrdersByResponseIndexAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		resp := embeddingResponse{}
		resp.Data = []struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float64{0, 1}, Index: 1},
			{Embedding: []float64{3, 4}, Index: 0},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	vecs, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	assert.InDelta(t, 0.6, float64(vecs[0][0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vecs[0][1]), 1e-6)
	assert.InDelta(t, 0, float64(vecs[1][0]), 1e-6)
	assert.InDelta(t, 1, float64(vecs[1][1]), 1e-6)
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	svc := newTestService(t, "http://unused.invalid")
	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingResponse{}
		resp.Error = &struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		}{Message: "invalid model"}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	_, err := svc.EmbedBatch(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}

func TestDimensions_DefaultsPerModel(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	require.NoError(t, svc.Ping(context.Background()))
}
