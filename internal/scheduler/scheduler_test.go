package scheduler

import (
	"errors"
	"testing"
	"time"

	"cfbranker.dev/cfb/internal/core"
)

func TestSeasonWindowInActiveWindowSameYear(t *testing.T) {
	w := SeasonWindow{StartMonth: 3, EndMonth: 6}

	if !w.InActiveWindow(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected April to fall within a March-June window")
	}
	if w.InActiveWindow(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected July to fall outside a March-June window")
	}
}

func TestSeasonWindowInActiveWindowWrapsYearEnd(t *testing.T) {
	w := SeasonWindow{StartMonth: 8, EndMonth: 1}

	if !w.InActiveWindow(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected December to fall within an Aug-Jan wrapping window")
	}
	if !w.InActiveWindow(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected January to fall within an Aug-Jan wrapping window")
	}
	if w.InActiveWindow(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected May to fall outside an Aug-Jan wrapping window")
	}
}

func TestSeasonWindowInActiveWindowDayGranularity(t *testing.T) {
	w := SeasonWindow{StartMonth: 8, StartDay: 15, EndMonth: 1, EndDay: 15}

	if w.InActiveWindow(time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Aug 10 to fall outside a window starting Aug 15")
	}
	if !w.InActiveWindow(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Aug 15 to fall within a window starting Aug 15")
	}
	if !w.InActiveWindow(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Jan 15 to fall within a window ending Jan 15")
	}
	if w.InActiveWindow(time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected Jan 16 to fall outside a window ending Jan 15")
	}
}

func TestClassifyProviderErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want core.TaskErrorKind
	}{
		{"quota exhausted", core.NewQuotaExhaustedError("2025-09", 95, 90), core.ErrKindQuotaExhausted},
		{"provider fatal", core.NewProviderFatalError("/games", errors.New("401")), core.ErrKindProviderFatal},
		{"data integrity", core.NewDataIntegrityError("mismatch", errors.New("boom")), core.ErrKindDataIntegrity},
		{"unclassified falls back to data integrity", errors.New("unexpected"), core.ErrKindDataIntegrity},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyProviderErr(c.err)
			if got.Kind != c.want {
				t.Errorf("expected kind %v, got %v", c.want, got.Kind)
			}
		})
	}
}
