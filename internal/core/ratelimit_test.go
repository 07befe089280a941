package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	photoRule = LimitRule{Window: 60 * time.Second, Burst: 20}
	chatRule  = LimitRule{Window: 2 * time.Second, Burst: 1, Strict: true}
)

func TestCheck_EmptyLogAlwaysAdmits(t *testing.T) {
	now := time.Now()
	for _, rule := range []LimitRule{photoRule, chatRule} {
		v := Check(nil, rule, now)
		assert.True(t, v.Allowed)
		assert.Zero(t, v.RetryAfter)
	}
}

func TestCheck_PhotoSlidingWindow(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	// 20 actions spread over the last 59s fill the burst budget.
	var log []time.Time
	for i := 0; i < 20; i++ {
		log = Record(log, photoRule, now.Add(-59*time.Second+time.Duration(i)*time.Second))
	}

	v := Check(log, photoRule, now)
	req.False(v.Allowed)
	req.Greater(v.RetryAfter, time.Duration(0))

	// Once the oldest entry slides out, admission resumes.
	later := log[0].Add(photoRule.Window + time.Millisecond)
	v = Check(log, photoRule, later)
	req.True(v.Allowed)
}

func TestCheck_PhotoRetryCountsFromOldestEntry(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	var log []time.Time
	for i := 0; i < 20; i++ {
		log = Record(log, photoRule, now.Add(-30*time.Second))
	}

	v := Check(log, photoRule, now)
	req.False(v.Allowed)
	// window - (now - oldest) = 60s - 30s
	req.Equal(30*time.Second, v.RetryAfter)
}

func TestCheck_ChatStrictWindow(t *testing.T) {
	req := require.New(t)
	t0 := time.Now()
	log := Record(nil, chatRule, t0)

	v := Check(log, chatRule, t0.Add(1500*time.Millisecond))
	req.False(v.Allowed)
	req.Greater(v.RetryAfter, time.Duration(0))
	req.LessOrEqual(v.RetryAfter, 500*time.Millisecond)

	v = Check(log, chatRule, t0.Add(2100*time.Millisecond))
	req.True(v.Allowed)
}

func TestCheck_ChatRetryCountsFromMostRecentEntry(t *testing.T) {
	req := require.New(t)
	t0 := time.Now()

	// Two in-window sends; the hint must anchor on the newer one. The
	// photo rule would anchor on the older and report 500ms instead.
	log := []time.Time{t0.Add(-1500 * time.Millisecond), t0.Add(-500 * time.Millisecond)}

	v := Check(log, chatRule, t0)
	req.False(v.Allowed)
	req.Equal(1500*time.Millisecond, v.RetryAfter)
}

func TestRecord_ValueSemantics(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	orig := []time.Time{now.Add(-time.Second)}
	snapshot := append([]time.Time(nil), orig...)

	out := Record(orig, photoRule, now)
	req.Equal(snapshot, orig, "input log must not be mutated")
	req.Len(out, 2)
	req.Equal(now, out[1])
}

func TestRecord_DropsExpiredEntries(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	log := []time.Time{now.Add(-3 * time.Second), now.Add(-time.Second)}
	out := Record(log, chatRule, now)
	req.Len(out, 2)
	req.Equal(now.Add(-time.Second), out[0])
	req.Equal(now, out[1])
}

func TestCheckThenRecord_FirstActionNeverDenied(t *testing.T) {
	// The admission flow is check-then-record: a just-admitted action
	// can never be denied by its own recording.
	now := time.Now()
	for _, rule := range []LimitRule{photoRule, chatRule} {
		v := Check(nil, rule, now)
		require.True(t, v.Allowed)
		log := Record(nil, rule, now)
		require.Len(t, log, 1)
	}
}
