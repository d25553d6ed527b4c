package provider

import (
	"testing"
	"time"
)

func TestPercentageUsed(t *testing.T) {
	cases := []struct {
		used, cap int
		want      float64
	}{
		{0, 1000, 0},
		{500, 1000, 50},
		{1000, 1000, 100},
		{10, 0, 100}, // a non-positive cap is treated as fully exhausted
	}

	for _, c := range cases {
		if got := percentageUsed(c.used, c.cap); got != c.want {
			t.Errorf("percentageUsed(%d, %d) = %v, want %v", c.used, c.cap, got, c.want)
		}
	}
}

func TestMonthKeyUsesUTCYearMonth(t *testing.T) {
	t1 := time.Date(2025, 9, 30, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	if got, want := monthKey(t1), "2025-10"; got != want {
		t.Errorf("monthKey rolled forward to UTC = %s, want %s", got, want)
	}
}

func TestUntilMonthEndIsPositiveAndBoundedByAMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	d := untilMonthEnd(now)
	if d <= 0 {
		t.Fatalf("expected a positive duration until month end, got %v", d)
	}
	if d > 31*24*time.Hour {
		t.Fatalf("expected duration to be bounded by roughly a month, got %v", d)
	}
}

func TestQuotaSetLimitsTakesEffectImmediately(t *testing.T) {
	q := NewQuota(nil, nil, 1000, 90, nil)

	cap, threshold := q.limits()
	if cap != 1000 || threshold != 90 {
		t.Fatalf("expected initial limits (1000, 90), got (%d, %v)", cap, threshold)
	}

	q.SetLimits(2000, 95)

	cap, threshold = q.limits()
	if cap != 2000 || threshold != 95 {
		t.Fatalf("expected updated limits (2000, 95), got (%d, %v)", cap, threshold)
	}
}
