package search_test

import (
	"testing"

	"github.com/secondbrain/core/pkg/search"
)

func TestNormalizeDense(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"identical vectors", 0.0, 1.0},
		{"orthogonal vectors", 1.0, 0.0},
		{"opposite vectors", 2.0, -1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := search.NormalizeDense(tt.distance); got != tt.want {
				t.Errorf("NormalizeDense(%v) = %v, want %v", tt.distance, got, tt.want)
			}
		})
	}
}

func TestNormalizeSparse(t *testing.T) {
	tests := []struct {
		name   string
		tsRank float64
		want   float64
	}{
		{"small rank scales up", 0.05, 0.5},
		{"zero rank", 0.0, 0.0},
		{"clamps above one", 0.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := search.NormalizeSparse(tt.tsRank); got != tt.want {
				t.Errorf("NormalizeSparse(%v) = %v, want %v", tt.tsRank, got, tt.want)
			}
		})
	}
}

func TestFuse_WeightedCombination(t *testing.T) {
	dense := map[string]float64{"a": 1.0, "b": 0.5}
	sparse := map[string]float64{"a": 0.2, "c": 1.0}

	got := search.Fuse(dense, sparse, 0.7, 0.3, 10)

	want := map[string]float64{
		"a": 0.7*1.0 + 0.3*0.2,
		"b": 0.7 * 0.5,
		"c": 0.3 * 1.0,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for _, f := range got {
		expected, ok := want[f.ChunkID]
		if !ok {
			t.Fatalf("unexpected chunk id %q in results", f.ChunkID)
		}
		if diff := f.Score - expected; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("chunk %q score = %v, want %v", f.ChunkID, f.Score, expected)
		}
	}
}

func TestFuse_DescendingOrder(t *testing.T) {
	dense := map[string]float64{"a": 0.2, "b": 0.9, "c": 0.5}
	got := search.Fuse(dense, nil, 1.0, 0.0, 10)

	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("results not descending at index %d: %v before %v", i, got[i-1], got[i])
		}
	}
	if got[0].ChunkID != "b" {
		t.Errorf("top result = %q, want %q", got[0].ChunkID, "b")
	}
}

func TestFuse_TopKTruncation(t *testing.T) {
	dense := map[string]float64{"a": 0.9, "b": 0.8, "c": 0.7, "d": 0.6}
	got := search.Fuse(dense, nil, 1.0, 0.0, 2)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].ChunkID != "a" || got[1].ChunkID != "b" {
		t.Errorf("got %+v, want top-2 a,b", got)
	}
}

func TestFuse_MissingContributionTreatedAsZero(t *testing.T) {
	dense := map[string]float64{"a": 1.0}
	sparse := map[string]float64{"b": 1.0}

	got := search.Fuse(dense, sparse, 0.7, 0.3, 10)
	scores := map[string]float64{}
	for _, f := range got {
		scores[f.ChunkID] = f.Score
	}
	if scores["a"] != 0.7 {
		t.Errorf("chunk a score = %v, want 0.7 (no sparse contribution)", scores["a"])
	}
	if scores["b"] != 0.3 {
		t.Errorf("chunk b score = %v, want 0.3 (no dense contribution)", scores["b"])
	}
}
