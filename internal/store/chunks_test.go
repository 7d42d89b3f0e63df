package store

import (
	"testing"
	"time"

	"github.com/secondbrain/core/internal/core"
)

func TestToTSQuery(t *testing.T) {
	tests := []struct {
		name     string
		residual string
		want     string
	}{
		{"simple words", "machine learning notes", "machine & learning & notes"},
		{"strips punctuation at edges", "what's the, plan?", "what's & the & plan"},
		{"only punctuation", "??? ...", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toTSQuery(tt.residual); got != tt.want {
				t.Errorf("toTSQuery(%q) = %q, want %q", tt.residual, got, tt.want)
			}
		})
	}
}

func TestMsPairToDuration(t *testing.T) {
	t.Run("both present", func(t *testing.T) {
		start, end := 1000, 5000
		s, e := msPairToDuration(&start, &end)
		if s == nil || *s != time.Second {
			t.Errorf("start = %v, want 1s", s)
		}
		if e == nil || *e != 5*time.Second {
			t.Errorf("end = %v, want 5s", e)
		}
	})
	t.Run("nil when either missing", func(t *testing.T) {
		start := 1000
		s, e := msPairToDuration(&start, nil)
		if s != nil || e != nil {
			t.Errorf("got (%v, %v), want (nil, nil) when end is missing", s, e)
		}
	})
}

func TestTemporalClause_NilInterval(t *testing.T) {
	clause, args := temporalClause(nil, 3)
	if clause != "" {
		t.Errorf("clause = %q, want empty for nil interval", clause)
	}
	if args != nil {
		t.Errorf("args = %v, want nil", args)
	}
}

func TestTemporalClause_WithInterval(t *testing.T) {
	interval := &core.TemporalInterval{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	clause, args := temporalClause(interval, 3)
	if clause == "" {
		t.Fatal("clause is empty, want a SQL fragment")
	}
	if len(args) != 2 {
		t.Fatalf("got %d args, want 2 (start, end)", len(args))
	}
	if args[0] != interval.Start || args[1] != interval.End {
		t.Errorf("args = %v, want [%v, %v]", args, interval.Start, interval.End)
	}
}
