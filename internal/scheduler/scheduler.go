// Package scheduler runs the update task state machine described in §4.6:
// a single pending task at a time, picked up by one background worker that
// runs the ingestion pipeline through pre-flight checks to completion.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"cfbranker.dev/cfb/internal/core"
	"cfbranker.dev/cfb/internal/ingest"
)

// DefaultTaskTimeout bounds how long a single update task may run before
// it is force-cancelled and transitioned to failed with reason=cancelled.
const DefaultTaskTimeout = 30 * time.Minute

// SeasonWindow bounds the default active-season window used by the
// inactive-season pre-flight check, to day granularity.
type SeasonWindow struct {
	StartMonth int // 1-12
	StartDay   int // 1-31; 0 means "first day of StartMonth"
	EndMonth   int // 1-12
	EndDay     int // 1-31; 0 means "last day of EndMonth"
}

// InActiveWindow reports whether t falls within the window. The window
// wraps across the calendar year when the end bound precedes the start
// bound (e.g. Aug 1 through Jan 31).
func (w SeasonWindow) InActiveWindow(t time.Time) bool {
	startDay := w.StartDay
	if startDay == 0 {
		startDay = 1
	}
	endDay := w.EndDay
	if endDay == 0 {
		endDay = daysInMonth(t.Year(), w.EndMonth)
	}

	cur := int(t.Month())*100 + t.Day()
	start := w.StartMonth*100 + startDay
	end := w.EndMonth*100 + endDay

	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

func daysInMonth(year int, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CurrentWeekProvider reports the external provider's notion of the
// current week, or nil if there isn't one (off-season).
type CurrentWeekProvider interface {
	GetCurrentWeek(ctx context.Context, year core.SeasonYear) (*int, error)
}

// Worker runs the single-pending-task state machine.
type Worker struct {
	tasks    core.UpdateTaskRepository
	seasons  core.SeasonRepository
	pipeline *ingest.Pipeline
	provider CurrentWeekProvider
	log      *log.Logger

	taskTimeout time.Duration

	windowMu sync.RWMutex
	window   SeasonWindow

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	cron *cron.Cron
}

func NewWorker(tasks core.UpdateTaskRepository, seasons core.SeasonRepository, pipeline *ingest.Pipeline, provider CurrentWeekProvider, window SeasonWindow, logger *log.Logger) *Worker {
	return &Worker{
		tasks:       tasks,
		seasons:     seasons,
		pipeline:    pipeline,
		provider:    provider,
		window:      window,
		log:         logger,
		taskTimeout: DefaultTaskTimeout,
		cancels:     make(map[string]context.CancelFunc),
	}
}

// SetWindow replaces the active-season window used by the pre-flight
// check, taking effect on the next enqueued task; in-flight tasks keep
// whatever window was active when they started.
func (w *Worker) SetWindow(window SeasonWindow) {
	w.windowMu.Lock()
	w.window = window
	w.windowMu.Unlock()
}

func (w *Worker) activeWindow() SeasonWindow {
	w.windowMu.RLock()
	defer w.windowMu.RUnlock()
	return w.window
}

// Cancel requests cancellation of a running task's context. Returns false
// if taskID isn't currently running.
func (w *Worker) Cancel(taskID string) bool {
	w.mu.Lock()
	cancel, ok := w.cancels[taskID]
	w.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

func (w *Worker) storeCancel(taskID string, cancel context.CancelFunc) {
	w.mu.Lock()
	w.cancels[taskID] = cancel
	w.mu.Unlock()
}

func (w *Worker) clearCancel(taskID string) {
	w.mu.Lock()
	if cancel, ok := w.cancels[taskID]; ok {
		cancel()
		delete(w.cancels, taskID)
	}
	w.mu.Unlock()
}

// TriggerScheduled enqueues a pending task with the scheduled trigger, or
// fails with a ConflictError if a task is already pending or running.
func (w *Worker) TriggerScheduled(ctx context.Context) (string, error) {
	return w.enqueue(ctx, core.TriggerScheduled)
}

// TriggerManual enqueues a pending task with the manual trigger.
func (w *Worker) TriggerManual(ctx context.Context) (string, error) {
	return w.enqueue(ctx, core.TriggerManual)
}

func (w *Worker) enqueue(ctx context.Context, trigger core.UpdateTaskTrigger) (string, error) {
	running, err := w.tasks.GetRunning(ctx)
	if err != nil {
		return "", err
	}
	if running != nil {
		return "", core.NewConflictError(fmt.Sprintf("update task %s is already %s", running.TaskID, running.Status))
	}

	task := &core.UpdateTask{
		TaskID:  uuid.NewString(),
		Trigger: trigger,
		Status:  core.StatusPending,
	}
	if err := w.tasks.Create(ctx, task); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), w.taskTimeout)
	w.storeCancel(task.TaskID, cancel)

	go w.run(runCtx, task.TaskID, trigger)
	return task.TaskID, nil
}

// run executes the pending task's pre-flight checks and, on success, the
// ingestion pipeline, then transitions the task to its terminal state. ctx
// carries the per-task timeout armed in enqueue; if it's cancelled or
// expires mid-run, the task is transitioned to failed with
// reason=cancelled regardless of what execute returns.
func (w *Worker) run(ctx context.Context, taskID string, trigger core.UpdateTaskTrigger) {
	defer w.clearCancel(taskID)

	now := time.Now()
	if err := w.tasks.TransitionToRunning(ctx, taskID, now); err != nil {
		w.log.Error("scheduler: failed to transition task to running", "task_id", taskID, "err", err)
		return
	}

	result, taskErr := w.execute(ctx, trigger)
	completedAt := time.Now()

	if ctx.Err() != nil {
		taskErr = &core.TaskError{Kind: core.ErrKindCancelled, Message: ctx.Err().Error()}
		result = nil
	}

	if taskErr != nil {
		if err := w.tasks.TransitionToFailed(ctx, taskID, completedAt, *taskErr); err != nil {
			w.log.Error("scheduler: failed to transition task to failed", "task_id", taskID, "err", err)
		}
		return
	}

	if err := w.tasks.TransitionToCompleted(ctx, taskID, completedAt, *result); err != nil {
		w.log.Error("scheduler: failed to transition task to completed", "task_id", taskID, "err", err)
	}
}

// execute runs pre-flight checks in order, then the ingestion pipeline.
// An inactive-season failure on a scheduled trigger is logged as an
// informational no-op, but still recorded as a failed task with the
// inactive_season reason, per the state machine's only terminal states.
func (w *Worker) execute(ctx context.Context, trigger core.UpdateTaskTrigger) (*core.TaskResult, *core.TaskError) {
	season, err := w.seasons.GetActive(ctx)
	if err != nil || !w.activeWindow().InActiveWindow(time.Now()) {
		if trigger == core.TriggerScheduled {
			w.log.Info("scheduler: season outside active window, skipping run")
		}
		return nil, &core.TaskError{Kind: core.ErrKindInactiveSeason, Message: "season is not in its active window"}
	}

	week, err := w.provider.GetCurrentWeek(ctx, season.Year)
	if err != nil {
		return nil, classifyProviderErr(err)
	}
	if week == nil {
		return nil, &core.TaskError{Kind: core.ErrKindNoCurrentWeek, Message: "provider reports no current week"}
	}

	if err := w.seasons.SetCurrentWeek(ctx, season.Year, *week); err != nil {
		return nil, &core.TaskError{Kind: core.ErrKindDataIntegrity, Message: err.Error()}
	}

	runResult, err := w.pipeline.RunOnce(ctx)
	if err != nil {
		return nil, classifyProviderErr(err)
	}

	return &core.TaskResult{
		GamesImported:        runResult.GamesImported,
		TeamsTouched:         runResult.TeamsTouched,
		PredictionsCreated:   runResult.PredictionsCreated,
		PredictionsEvaluated: runResult.PredictionsEvaluated,
	}, nil
}

func classifyProviderErr(err error) *core.TaskError {
	switch {
	case core.IsQuotaExhausted(err):
		return &core.TaskError{Kind: core.ErrKindQuotaExhausted, Message: err.Error()}
	case core.IsProviderFatal(err):
		return &core.TaskError{Kind: core.ErrKindProviderFatal, Message: err.Error()}
	case core.IsDataIntegrity(err):
		return &core.TaskError{Kind: core.ErrKindDataIntegrity, Message: err.Error()}
	default:
		return &core.TaskError{Kind: core.ErrKindDataIntegrity, Message: err.Error()}
	}
}

// StartWeekly arms the weekly scheduled trigger at the given cron
// expression, evaluated in loc. Call Stop to halt it.
func (w *Worker) StartWeekly(spec string, loc *time.Location) error {
	w.cron = cron.New(cron.WithLocation(loc))
	_, err := w.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if _, err := w.TriggerScheduled(ctx); err != nil {
			w.log.Error("scheduler: weekly trigger failed to enqueue", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule weekly trigger: %w", err)
	}
	w.cron.Start()
	return nil
}

// Stop halts the weekly cron scheduler, if running.
func (w *Worker) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}
