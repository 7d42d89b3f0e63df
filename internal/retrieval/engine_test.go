package retrieval

import "testing"

func TestResultCacheKey(t *testing.T) {
	k1 := resultCacheKey("user-1", "notes about dogs", 0.7, 0.3, 10)
	k2 := resultCacheKey("user-1", "notes about dogs", 0.7, 0.3, 10)
	if k1 != k2 {
		t.Error("resultCacheKey must be deterministic for identical inputs")
	}

	variants := []string{
		resultCacheKey("user-2", "notes about dogs", 0.7, 0.3, 10),
		resultCacheKey("user-1", "notes about cats", 0.7, 0.3, 10),
		resultCacheKey("user-1", "notes about dogs", 0.5, 0.5, 10),
		resultCacheKey("user-1", "notes about dogs", 0.7, 0.3, 5),
	}
	for _, v := range variants {
		if v == k1 {
			t.Errorf("resultCacheKey collided across differing parameters: %q", v)
		}
	}
}
