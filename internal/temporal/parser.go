// Package temporal resolves natural-language time phrases embedded in a
// retrieval query into an absolute half-open interval, stripping the
// matched phrase to form the residual query passed to embedding and
// full-text search.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/secondbrain/core/internal/core"
)

type handler func(now time.Time, match []string) (time.Time, time.Time)

type rule struct {
	pattern *regexp.Regexp
	handle  handler
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// rules is the ordered, first-match-wins pattern table, declared in the
// same order as the phrase table this parser implements.
var rules = []rule{
	{
		pattern: regexp.MustCompile(`(?i)\byesterday\b`),
		handle: func(now time.Time, _ []string) (time.Time, time.Time) {
			return now.AddDate(0, 0, -1), now
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\btoday\b`),
		handle: func(now time.Time, _ []string) (time.Time, time.Time) {
			return startOfDay(now), now
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\blast\s+week\b`),
		handle: func(now time.Time, _ []string) (time.Time, time.Time) {
			return now.AddDate(0, 0, -7), now
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\blast\s+month\b`),
		handle: func(now time.Time, _ []string) (time.Time, time.Time) {
			return now.AddDate(0, 0, -30), now
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\blast\s+(\d+)\s+days?\b`),
		handle: func(now time.Time, m []string) (time.Time, time.Time) {
			n, _ := strconv.Atoi(m[1])
			return now.AddDate(0, 0, -n), now
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\bthis\s+week\b`),
		handle: func(now time.Time, _ []string) (time.Time, time.Time) {
			return mondayOf(now), now
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\blast\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		handle: func(now time.Time, m []string) (time.Time, time.Time) {
			return lastWeekday(now, weekdays[strings.ToLower(m[1])])
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\bin\s+(january|february|march|april|may|june|july|august|september|october|november|december)\b`),
		handle: func(now time.Time, m []string) (time.Time, time.Time) {
			return monthRange(now, months[strings.ToLower(m[1])])
		},
	},
}

// Parse finds the first matching temporal phrase in query, removes it to
// form the residual, and resolves the half-open interval it names. If no
// pattern matches, the interval is absent and the query is returned
// unchanged.
func Parse(query string, now time.Time) (residual string, interval *core.TemporalInterval) {
	for _, r := range rules {
		loc := r.pattern.FindStringSubmatchIndex(query)
		if loc == nil {
			continue
		}
		match := make([]string, len(loc)/2)
		for i := range match {
			if loc[2*i] < 0 {
				continue
			}
			match[i] = query[loc[2*i]:loc[2*i+1]]
		}

		start, end := r.handle(now, match)
		residual = strings.TrimSpace(strings.TrimRight(query[:loc[0]], " \t") + " " + strings.TrimLeft(query[loc[1]:], " \t"))
		return residual, &core.TemporalInterval{Start: start, End: end}
	}
	return query, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOf returns midnight of the Monday starting t's ISO week.
func mondayOf(t time.Time) time.Time {
	day := startOfDay(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

// lastWeekday returns the half-open [00:00, +24h) interval of the most
// recent past occurrence of weekday. When today is that weekday, the
// convention jumps back a full week rather than returning today.
func lastWeekday(now time.Time, weekday time.Weekday) (time.Time, time.Time) {
	daysBack := (int(startOfDay(now).Weekday()) - int(weekday) + 7) % 7
	if daysBack == 0 {
		daysBack = 7
	}
	target := startOfDay(now).AddDate(0, 0, -daysBack)
	return target, target.AddDate(0, 0, 1)
}

// monthRange returns the half-open interval covering the named month: the
// current year unless month is ahead of the reference month, in which case
// the previous year.
func monthRange(now time.Time, month time.Month) (time.Time, time.Time) {
	year := now.Year()
	if month > now.Month() {
		year--
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	return start, end
}
