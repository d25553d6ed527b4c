package api

import (
	"sync"

	"cfbranker.dev/cfb/internal/config"
)

// AdminConfig is the runtime-mutable subset of process configuration
// exposed through GET/PUT /v1/admin/config: the monthly provider call
// ceiling and its soft-warning threshold, plus the active-season window
// the scheduler's pre-flight check consults. Everything else (database
// URL, Elo constants, server port) is fixed at process startup.
type AdminConfig struct {
	MonthlyAPILimit         int     `json:"monthly_api_limit"`
	WarningThresholdPercent float64 `json:"warning_threshold_percent"`
	SeasonWindowStartMonth  int     `json:"season_window_start_month"`
	SeasonWindowStartDay    int     `json:"season_window_start_day"`
	SeasonWindowEndMonth    int     `json:"season_window_end_month"`
	SeasonWindowEndDay      int     `json:"season_window_end_day"`
}

// ConfigStore holds the current AdminConfig behind a single mutex. It is
// the explicit runtime context described for global mutable state:
// constructed once at startup from the loaded config file, replaced only
// under PUT /v1/admin/config. PUT changes the store's snapshot and the
// live quota/scheduler gates immediately. A task already running has
// checked the season window once at start and is not affected by a new
// window, but no copy of the quota limits is taken per task: its
// remaining provider calls are gated by the new limit and threshold.
type ConfigStore struct {
	mu  sync.RWMutex
	cfg AdminConfig
}

func NewConfigStore(quotaCfg config.QuotaConfig, seasonCfg config.SeasonConfig) *ConfigStore {
	return &ConfigStore{
		cfg: AdminConfig{
			MonthlyAPILimit:         quotaCfg.MonthlyCap,
			WarningThresholdPercent: quotaCfg.ThresholdPercent,
			SeasonWindowStartMonth:  seasonCfg.WindowStartMonth,
			SeasonWindowStartDay:    seasonCfg.WindowStartDay,
			SeasonWindowEndMonth:    seasonCfg.WindowEndMonth,
			SeasonWindowEndDay:      seasonCfg.WindowEndDay,
		},
	}
}

func (c *ConfigStore) Get() AdminConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

func (c *ConfigStore) Set(cfg AdminConfig) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}
