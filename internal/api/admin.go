package api

import (
	"encoding/json"
	"net/http"
	"time"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/provider"
	"cfbranker.dev/cfb/internal/scheduler"
)

// AdminRoutes exposes the update-task control surface: triggering a
// manual run, polling a task's status, the provider usage dashboard, and
// the runtime-mutable admin config.
type AdminRoutes struct {
	worker *scheduler.Worker
	tasks  core.UpdateTaskRepository
	quota  *provider.Quota
	config *ConfigStore
}

func NewAdminRoutes(worker *scheduler.Worker, tasks core.UpdateTaskRepository, quota *provider.Quota, configStore *ConfigStore) *AdminRoutes {
	return &AdminRoutes{worker: worker, tasks: tasks, quota: quota, config: configStore}
}

func (ar *AdminRoutes) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/admin/trigger-update", ar.handleTriggerUpdate)
	mux.HandleFunc("GET /v1/admin/update-status/{task_id}", ar.handleUpdateStatus)
	mux.HandleFunc("GET /v1/admin/api-usage", ar.handleAPIUsage)
	mux.HandleFunc("GET /v1/admin/usage-dashboard", ar.handleUsageDashboard)
	mux.HandleFunc("GET /v1/admin/config", ar.handleGetConfig)
	mux.HandleFunc("PUT /v1/admin/config", ar.handlePutConfig)
}

type triggerResponse struct {
	TaskID string `json:"task_id"`
}

// handleTriggerUpdate godoc
// @Summary Trigger a manual update
// @Description Enqueue a manual update task; fails with 409 if a task is already pending or running
// @Tags admin
// @Accept json
// @Produce json
// @Success 202 {object} triggerResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/trigger-update [post]
func (ar *AdminRoutes) handleTriggerUpdate(w http.ResponseWriter, r *http.Request) {
	taskID, err := ar.worker.TriggerManual(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, triggerResponse{TaskID: taskID})
}

// handleUpdateStatus godoc
// @Summary Get update task status
// @Description Poll the status, result, and error of a previously enqueued update task
// @Tags admin
// @Accept json
// @Produce json
// @Param task_id path string true "Update task ID"
// @Success 200 {object} core.UpdateTask
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/update-status/{task_id} [get]
func (ar *AdminRoutes) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := r.PathValue("task_id")

	task, err := ar.tasks.GetByID(ctx, taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// usageMonth resolves the month key and the day-count used to compute
// average-per-day from an optional ?month=YYYY-MM query param, defaulting
// to the current UTC month and day.
func usageMonth(r *http.Request) (monthKey string, dayOfMonth int, err error) {
	now := time.Now().UTC()
	m := r.URL.Query().Get("month")
	if m == "" {
		return now.Format("2006-01"), now.Day(), nil
	}

	parsed, parseErr := time.Parse("2006-01", m)
	if parseErr != nil {
		return "", 0, core.NewValidationError("month", "must be formatted YYYY-MM")
	}
	if m == now.Format("2006-01") {
		return m, now.Day(), nil
	}
	return m, daysInMonth(parsed), nil
}

func daysInMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// handleAPIUsage godoc
// @Summary Get provider usage for a month
// @Description Report total calls, remaining headroom, and top endpoints for the current month, or an explicit ?month=YYYY-MM
// @Tags admin
// @Accept json
// @Produce json
// @Param month query string false "Month to report on, formatted YYYY-MM (defaults to the current month)"
// @Success 200 {object} provider.Usage
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/api-usage [get]
func (ar *AdminRoutes) handleAPIUsage(w http.ResponseWriter, r *http.Request) {
	mk, day, err := usageMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	usage, err := ar.quota.Report(r.Context(), mk, day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// usageDashboard is api-usage's report plus a projection of where the
// month will land at its current pace.
type usageDashboard struct {
	*provider.Usage
	ProjectedTotal      int     `json:"projected_total"`
	ProjectedPercentage float64 `json:"projected_percentage"`
}

// handleUsageDashboard godoc
// @Summary Get the provider usage dashboard
// @Description api-usage's report plus a month-end projection at the current daily pace
// @Tags admin
// @Accept json
// @Produce json
// @Param month query string false "Month to report on, formatted YYYY-MM (defaults to the current month)"
// @Success 200 {object} usageDashboard
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/usage-dashboard [get]
func (ar *AdminRoutes) handleUsageDashboard(w http.ResponseWriter, r *http.Request) {
	mk, day, err := usageMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}

	usage, err := ar.quota.Report(r.Context(), mk, day)
	if err != nil {
		writeError(w, err)
		return
	}

	parsed, err := time.Parse("2006-01", mk)
	if err != nil {
		writeError(w, core.NewValidationError("month", "must be formatted YYYY-MM"))
		return
	}
	totalDays := daysInMonth(parsed)

	projectedTotal := int(usage.AveragePerDay * float64(totalDays))
	dashboard := usageDashboard{
		Usage:               usage,
		ProjectedTotal:      projectedTotal,
		ProjectedPercentage: percentageOf(projectedTotal, usage.Limit),
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func percentageOf(used, cap int) float64 {
	if cap <= 0 {
		return 100
	}
	return float64(used) / float64(cap) * 100
}

// handleGetConfig godoc
// @Summary Get admin config
// @Description Get the runtime-mutable admin config: monthly API limit, warning threshold, and the active-season window
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} AdminConfig
// @Router /admin/config [get]
func (ar *AdminRoutes) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ar.config.Get())
}

// updateConfigRequest accepts a partial update; omitted fields keep their
// current value.
type updateConfigRequest struct {
	MonthlyAPILimit         *int     `json:"monthly_api_limit"`
	WarningThresholdPercent *float64 `json:"warning_threshold_percent"`
	SeasonWindowStartMonth  *int     `json:"season_window_start_month"`
	SeasonWindowStartDay    *int     `json:"season_window_start_day"`
	SeasonWindowEndMonth    *int     `json:"season_window_end_month"`
	SeasonWindowEndDay      *int     `json:"season_window_end_day"`
}

// handlePutConfig godoc
// @Summary Update admin config
// @Description Adjust the monthly API limit, warning threshold, and/or active-season window; omitted fields are left unchanged. Takes effect immediately for new calls. A task already running keeps the season window it checked at start, but its remaining provider calls are gated by the new limit and threshold.
// @Tags admin
// @Accept json
// @Produce json
// @Param config body updateConfigRequest true "Fields to change"
// @Success 200 {object} AdminConfig
// @Failure 422 {object} ErrorResponse
// @Router /admin/config [put]
func (ar *AdminRoutes) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	next := ar.config.Get()
	if req.MonthlyAPILimit != nil {
		if *req.MonthlyAPILimit <= 0 {
			writeBadRequest(w, "monthly_api_limit must be positive")
			return
		}
		next.MonthlyAPILimit = *req.MonthlyAPILimit
	}
	if req.WarningThresholdPercent != nil {
		if *req.WarningThresholdPercent <= 0 || *req.WarningThresholdPercent > 100 {
			writeBadRequest(w, "warning_threshold_percent must be in (0, 100]")
			return
		}
		next.WarningThresholdPercent = *req.WarningThresholdPercent
	}
	if req.SeasonWindowStartMonth != nil {
		if *req.SeasonWindowStartMonth < 1 || *req.SeasonWindowStartMonth > 12 {
			writeBadRequest(w, "season_window_start_month must be 1-12")
			return
		}
		next.SeasonWindowStartMonth = *req.SeasonWindowStartMonth
	}
	if req.SeasonWindowStartDay != nil {
		if *req.SeasonWindowStartDay < 1 || *req.SeasonWindowStartDay > 31 {
			writeBadRequest(w, "season_window_start_day must be 1-31")
			return
		}
		next.SeasonWindowStartDay = *req.SeasonWindowStartDay
	}
	if req.SeasonWindowEndMonth != nil {
		if *req.SeasonWindowEndMonth < 1 || *req.SeasonWindowEndMonth > 12 {
			writeBadRequest(w, "season_window_end_month must be 1-12")
			return
		}
		next.SeasonWindowEndMonth = *req.SeasonWindowEndMonth
	}
	if req.SeasonWindowEndDay != nil {
		if *req.SeasonWindowEndDay < 1 || *req.SeasonWindowEndDay > 31 {
			writeBadRequest(w, "season_window_end_day must be 1-31")
			return
		}
		next.SeasonWindowEndDay = *req.SeasonWindowEndDay
	}

	ar.config.Set(next)
	ar.quota.SetLimits(next.MonthlyAPILimit, next.WarningThresholdPercent)
	ar.worker.SetWindow(scheduler.SeasonWindow{
		StartMonth: next.SeasonWindowStartMonth,
		StartDay:   next.SeasonWindowStartDay,
		EndMonth:   next.SeasonWindowEndMonth,
		EndDay:     next.SeasonWindowEndDay,
	})

	writeJSON(w, http.StatusOK, next)
}
