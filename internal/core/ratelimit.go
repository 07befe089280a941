package core

import "time"

// LimitRule is a sliding-window admission rule. Strict rules enforce
// "no more than one per window" against the most recent entry, which is
// how the chat limit differs from the photo burst budget: the photo
// retry hint counts from the oldest in-window entry, the chat hint from
// the newest. Both shapes are deliberate.
type LimitRule struct {
	Window time.Duration
	Burst  int
	Strict bool
}

// Verdict is the outcome of a Check call.
type Verdict struct {
	Allowed    bool
	RetryAfter time.Duration
}

// prune keeps only entries still inside the rule's window at now.
func prune(log []time.Time, r LimitRule, now time.Time) []time.Time {
	fresh := make([]time.Time, 0, len(log))
	for _, t := range log {
		if now.Sub(t) < r.Window {
			fresh = append(fresh, t)
		}
	}
	return fresh
}

// Check decides admission against an immutable action log. It never
// mutates log.
func Check(log []time.Time, r LimitRule, now time.Time) Verdict {
	fresh := prune(log, r, now)
	if len(fresh) < r.Burst {
		return Verdict{Allowed: true}
	}
	var anchor time.Time
	if r.Strict {
		anchor = fresh[len(fresh)-1]
	} else {
		anchor = fresh[0]
	}
	retry := r.Window - now.Sub(anchor)
	if retry < 0 {
		retry = 0
	}
	return Verdict{Allowed: false, RetryAfter: retry}
}

// Record returns the window-filtered log with now appended. The input
// is left untouched; callers replace their stored log with the result.
func Record(log []time.Time, r LimitRule, now time.Time) []time.Time {
	return append(prune(log, r, now), now)
}
