package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/litswap/litswap/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func newTestServer(t *testing.T, vectors [][]float32, tokens int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp embeddingResponse
		resp.Object = "list"
		resp.Model = "test-model"
		for i, vec := range vectors {
			resp.Data = append(resp.Data, struct {
				Object    string    `json:"object"`
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{Object: "embedding", Embedding: vec, Index: i})
		}
		resp.Usage.PromptTokens = tokens
		resp.Usage.TotalTokens = tokens
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestEmbedder(baseURL string) *Embedder {
	return NewEmbedder(&Config{
		APIKey:   "test-key",
		BaseURL:  baseURL + "/v1",
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	expected := []float32{0.1, 0.2, 0.3, 0.4}
	srv := newTestServer(t, [][]float32{expected}, 7)
	defer srv.Close()

	e := newTestEmbedder(srv.URL)
	res, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != len(expected) {
		t.Fatalf("expected %d dims, got %d", len(expected), len(res.Embedding))
	}
	for i := range expected {
		if res.Embedding[i] != expected[i] {
			t.Fatalf("vector mismatch at %d: %v", i, res.Embedding)
		}
	}
	if res.TotalTokens != 7 {
		t.Errorf("expected 7 total tokens, got %d", res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed(t *testing.T) {
	vecs := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	srv := newTestServer(t, vecs, 12)
	defer srv.Close()

	e := newTestEmbedder(srv.URL)
	res, err := e.BatchEmbed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if res.Embeddings[1][0] != 0.3 {
		t.Errorf("unexpected second vector: %v", res.Embeddings[1])
	}
}

func TestEmbedder_BatchEmbed_CountMismatch(t *testing.T) {
	srv := newTestServer(t, [][]float32{{0.1}}, 3)
	defer srv.Close()

	e := newTestEmbedder(srv.URL)
	if _, err := e.BatchEmbed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for vector count mismatch")
	}
}

func TestEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"upstream unavailable"}`))
	}))
	defer srv.Close()

	e := newTestEmbedder(srv.URL)
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error from failing API")
	}
}
