package temporal_test

import (
	"testing"
	"time"

	"github.com/secondbrain/core/internal/temporal"
)

// reference is a fixed Wednesday so weekday-relative assertions are stable.
var reference = time.Date(2026, time.July, 29, 15, 30, 0, 0, time.UTC)

func TestParse_NoMatch(t *testing.T) {
	residual, interval := temporal.Parse("what did I read about databases", reference)
	if interval != nil {
		t.Errorf("interval = %+v, want nil", interval)
	}
	if residual != "what did I read about databases" {
		t.Errorf("residual = %q, want unchanged query", residual)
	}
}

func TestParse_Yesterday(t *testing.T) {
	residual, interval := temporal.Parse("notes from yesterday about go", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	if residual != "notes from about go" {
		t.Errorf("residual = %q, want phrase stripped", residual)
	}
	wantStart := reference.AddDate(0, 0, -1)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", interval.Start, wantStart)
	}
	if !interval.End.Equal(reference) {
		t.Errorf("End = %v, want reference time %v", interval.End, reference)
	}
}

func TestParse_Today(t *testing.T) {
	_, interval := temporal.Parse("meetings today", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want midnight %v", interval.Start, wantStart)
	}
}

func TestParse_LastNDays(t *testing.T) {
	_, interval := temporal.Parse("articles from the last 14 days", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := reference.AddDate(0, 0, -14)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", interval.Start, wantStart)
	}
}

func TestParse_ThisWeek(t *testing.T) {
	_, interval := temporal.Parse("progress this week", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	// reference is Wednesday 2026-07-29; the Monday of that week is 2026-07-27.
	wantStart := time.Date(2026, time.July, 27, 0, 0, 0, 0, time.UTC)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want Monday %v", interval.Start, wantStart)
	}
}

func TestParse_LastWeekday_PriorOccurrence(t *testing.T) {
	// reference is Wednesday; "last monday" should be the Monday two days prior.
	_, interval := temporal.Parse("what did I save last monday", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := time.Date(2026, time.July, 27, 0, 0, 0, 0, time.UTC)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", interval.Start, wantStart)
	}
	wantEnd := wantStart.AddDate(0, 0, 1)
	if !interval.End.Equal(wantEnd) {
		t.Errorf("End = %v, want half-open +24h %v", interval.End, wantEnd)
	}
}

func TestParse_LastWeekday_SameWeekdayJumpsBackAWeek(t *testing.T) {
	// reference is itself a Wednesday; "last wednesday" must not resolve to
	// today, it must jump back a full week.
	_, interval := temporal.Parse("notes from last wednesday", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := time.Date(2026, time.July, 22, 0, 0, 0, 0, time.UTC)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want a week prior %v", interval.Start, wantStart)
	}
}

func TestParse_InMonth_PastMonthThisYear(t *testing.T) {
	// reference month is July; "in march" is earlier this year.
	_, interval := temporal.Parse("that article in march", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", interval.Start, wantStart)
	}
}

func TestParse_InMonth_FutureMonthRollsBackAYear(t *testing.T) {
	// reference month is July; "in december" must resolve to last December,
	// not one five months in the future.
	_, interval := temporal.Parse("the thing I read in december", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", interval.Start, wantStart)
	}
	wantEnd := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !interval.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", interval.End, wantEnd)
	}
}

func TestParse_FirstMatchWins(t *testing.T) {
	// "last week" must not be shadowed by the later "last <weekday>" rule.
	_, interval := temporal.Parse("summarize last week please", reference)
	if interval == nil {
		t.Fatal("interval = nil, want a resolved interval")
	}
	wantStart := reference.AddDate(0, 0, -7)
	if !interval.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want last-week rule result %v", interval.Start, wantStart)
	}
}
