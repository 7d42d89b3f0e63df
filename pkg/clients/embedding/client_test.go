package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/secondbrain/core/pkg/config"
)

func TestSortByIndex(t *testing.T) {
	data := []Data{
		{Index: 2, Embedding: []float64{2}},
		{Index: 0, Embedding: []float64{0}},
		{Index: 1, Embedding: []float64{1}},
	}
	sortByIndex(data)
	for i, d := range data {
		if d.Index != i {
			t.Errorf("position %d has Index %d, want %d", i, d.Index, i)
		}
	}
}

func TestSortByIndex_AlreadySorted(t *testing.T) {
	data := []Data{{Index: 0}, {Index: 1}, {Index: 2}}
	sortByIndex(data)
	for i, d := range data {
		if d.Index != i {
			t.Errorf("position %d has Index %d, want %d", i, d.Index, i)
		}
	}
}

func TestGetDefaultDimensions(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{ModelTextEmbedding3Small, 1536},
		{ModelTextEmbedding3Large, 3072},
		{ModelTextEmbeddingAda002, 1536},
		{"unknown-model", 1536},
	}
	for _, tt := range tests {
		if got := GetDefaultDimensions(tt.model); got != tt.want {
			t.Errorf("GetDefaultDimensions(%q) = %d, want %d", tt.model, got, tt.want)
		}
	}
}

// TestClient_CreateBatchEmbedding_RestoresOrder exercises the full HTTP
// round trip against a server that deliberately returns batch results out
// of order, verifying the client restores input order before returning.
func TestClient_CreateBatchEmbedding_RestoresOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{
			Data: []Data{
				{Index: 2, Embedding: []float64{2, 2}},
				{Index: 0, Embedding: []float64{0, 0}},
				{Index: 1, Embedding: []float64{1, 1}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.ServiceConfig{BaseURL: server.URL, APIKey: "test", Model: ModelTextEmbedding3Small})

	resp, err := client.CreateBatchEmbedding(context.Background(), ModelTextEmbedding3Small, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("CreateBatchEmbedding() error = %v", err)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Data))
	}
	for i, d := range resp.Data {
		if d.Index != i {
			t.Errorf("result %d has Index %d, want %d", i, d.Index, i)
		}
		if int(d.Embedding[0]) != i {
			t.Errorf("result %d embedding = %v, want first element %d", i, d.Embedding, i)
		}
	}
}
