package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"cfbranker.dev/cfb/internal/core"
)

// WarningThresholds are the soft-warning percentages logged once per
// month, ascending.
var WarningThresholds = []float64{80, 90, 95}

// Quota enforces the monthly API ceiling. Each Allow call reads the
// authoritative count from usage recorded in Postgres, refuses the call
// once the configured threshold is reached, then passes it through a
// redis_rate gate sized to the monthly cap, and records the call in
// Postgres when it is allowed.
type Quota struct {
	limiter *redis_rate.Limiter
	usage   core.APIUsageRepository
	log     *log.Logger

	limitsMu    sync.RWMutex
	monthlyCap  int
	thresholdPc float64

	warned map[string]map[float64]bool
}

func NewQuota(redisClient *redis.Client, usage core.APIUsageRepository, monthlyCap int, thresholdPercent float64, logger *log.Logger) *Quota {
	return &Quota{
		limiter:     redis_rate.NewLimiter(redisClient),
		usage:       usage,
		monthlyCap:  monthlyCap,
		thresholdPc: thresholdPercent,
		log:         logger,
		warned:      make(map[string]map[float64]bool),
	}
}

// SetLimits replaces the monthly cap and soft-warning threshold, taking
// effect on the next Allow/Report call. Called from the admin config
// endpoint right after it stores the new snapshot in ConfigStore; in-flight
// Allow calls finish against whatever limit was live when they read it.
func (q *Quota) SetLimits(monthlyCap int, thresholdPercent float64) {
	q.limitsMu.Lock()
	q.monthlyCap = monthlyCap
	q.thresholdPc = thresholdPercent
	q.limitsMu.Unlock()
}

func (q *Quota) limits() (int, float64) {
	q.limitsMu.RLock()
	defer q.limitsMu.RUnlock()
	return q.monthlyCap, q.thresholdPc
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func untilMonthEnd(t time.Time) time.Duration {
	t = t.UTC()
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.Sub(t)
}

// Allow consults and increments the monthly counter for the current call.
// It returns a QuotaExhaustedError once percentage_used has reached the
// configured threshold; callers must not make the network call when this
// returns an error.
func (q *Quota) Allow(ctx context.Context, endpoint string) error {
	now := time.Now()
	mk := monthKey(now)

	used, err := q.usage.CountForMonth(ctx, mk)
	if err != nil {
		return fmt.Errorf("quota: count lookup: %w", err)
	}

	monthlyCap, thresholdPc := q.limits()

	percentage := percentageUsed(used, monthlyCap)
	q.logSoftWarnings(mk, percentage)

	if percentage >= thresholdPc {
		return core.NewQuotaExhaustedError(mk, percentage, thresholdPc)
	}

	limit := redis_rate.Limit{Rate: monthlyCap, Burst: monthlyCap, Period: untilMonthEnd(now)}
	res, err := q.limiter.Allow(ctx, "provider:quota:"+mk, limit)
	if err != nil {
		return fmt.Errorf("quota: rate gate: %w", err)
	}
	if res.Allowed == 0 {
		return core.NewQuotaExhaustedError(mk, percentage, thresholdPc)
	}

	return q.usage.Record(ctx, &core.APIUsage{
		MonthKey:  mk,
		Endpoint:  endpoint,
		Timestamp: now,
	})
}

func percentageUsed(used, cap int) float64 {
	if cap <= 0 {
		return 100
	}
	return float64(used) / float64(cap) * 100
}

func (q *Quota) logSoftWarnings(monthKey string, percentage float64) {
	if q.warned[monthKey] == nil {
		q.warned[monthKey] = make(map[float64]bool)
	}
	for _, threshold := range WarningThresholds {
		if percentage >= threshold && !q.warned[monthKey][threshold] {
			q.warned[monthKey][threshold] = true
			if q.log != nil {
				q.log.Warn("provider quota threshold crossed", "month", monthKey, "threshold", threshold, "percentage", percentage)
			}
		}
	}
}

// Usage reports the current month's usage for the admin usage endpoints.
type Usage struct {
	Month            string               `json:"month"`
	TotalCalls       int                  `json:"total_calls"`
	Limit            int                  `json:"limit"`
	PercentageUsed   float64              `json:"percentage_used"`
	Remaining        int                  `json:"remaining"`
	AveragePerDay    float64              `json:"average_per_day"`
	WarningLevel     float64              `json:"warning_level"`
	TopEndpoints     []core.EndpointUsage `json:"top_endpoints"`
}

func (q *Quota) Report(ctx context.Context, mk string, dayOfMonth int) (*Usage, error) {
	used, err := q.usage.CountForMonth(ctx, mk)
	if err != nil {
		return nil, err
	}
	top, err := q.usage.TopEndpoints(ctx, mk, 10)
	if err != nil {
		return nil, err
	}

	monthlyCap, _ := q.limits()

	percentage := percentageUsed(used, monthlyCap)
	avgPerDay := 0.0
	if dayOfMonth > 0 {
		avgPerDay = float64(used) / float64(dayOfMonth)
	}

	level := 0.0
	for _, th := range WarningThresholds {
		if percentage >= th {
			level = th
		}
	}

	return &Usage{
		Month:          mk,
		TotalCalls:     used,
		Limit:          monthlyCap,
		PercentageUsed: percentage,
		Remaining:      monthlyCap - used,
		AveragePerDay:  avgPerDay,
		WarningLevel:   level,
		TopEndpoints:   top,
	}, nil
}
