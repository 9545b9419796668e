// Package engine orchestrates batch analysis of employee work days: event
// enrichment, timeline classification, metric calculation, claim comparison,
// and persistence.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/enrich"
	"github.com/soleview/worklens/internal/jobgroup"
	"github.com/soleview/worklens/internal/metrics"
	"github.com/soleview/worklens/internal/mobility"
	"github.com/soleview/worklens/internal/service"
	"github.com/soleview/worklens/internal/timeline"
)

// Config holds engine tuning knobs.
type Config struct {
	// Workers bounds the number of employees analyzed concurrently. Each
	// worker holds open queries against the event sources, so this caps the
	// load the batch puts on them.
	Workers int
	// UseGroundRules switches on the team-baseline enhanced metrics.
	UseGroundRules bool
	// SaveResults persists each employee's results through the sink.
	SaveResults bool
	Retry       common.RetryOptions
}

// DefaultConfig returns production engine settings.
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		UseGroundRules: true,
		SaveResults:    true,
		Retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Engine wires the analysis pipeline together.
type Engine struct {
	directory  service.EmployeeDirectory
	claims     service.ClaimStore
	enricher   *enrich.Enricher
	jobs       *jobgroup.Classifier
	classifier *timeline.Classifier
	calculator *metrics.Calculator
	baselines  *mobility.Store
	sink       service.ResultSink
	logger     *slog.Logger
	cfg        Config
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Directory service.EmployeeDirectory
	Claims    service.ClaimStore
	Events    service.EventStore
	Baselines *mobility.Store
	Sink      service.ResultSink
	Logger    *slog.Logger
}

// New creates an Engine with default configuration.
func New(deps Deps) *Engine {
	return NewWithConfig(deps, DefaultConfig())
}

// NewWithConfig creates an Engine with explicit configuration.
func NewWithConfig(deps Deps, cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		directory:  deps.Directory,
		claims:     deps.Claims,
		enricher:   enrich.New(deps.Events),
		jobs:       jobgroup.New(),
		classifier: timeline.New(),
		calculator: metrics.New(),
		baselines:  deps.Baselines,
		sink:       deps.Sink,
		logger:     logger,
		cfg:        cfg,
	}
}

// Request names the employee-days to analyze. Dates are inclusive.
type Request struct {
	EmployeeIDs []string
	From        time.Time
	To          time.Time
	// Progress, when non-nil, receives completion ticks. Sends never block;
	// a slow receiver just misses intermediate ticks.
	Progress chan<- Progress
}

// Progress is one completion tick of a running batch.
type Progress struct {
	Completed int
	Total     int
}

// BatchResult is the complete outcome of one batch run. Every requested
// employee-day lands in exactly one of Results, Errors, or the skip count.
type BatchResult struct {
	RunID   string
	Results []service.DayResult
	Errors  []service.UnitError
	Summary service.BatchSummary
}

// Batch analyzes every (employee, date) unit in the request. Employees fan
// out across workers; one employee's dates run sequentially in ascending
// order because night-shift handling reaches back to the previous day.
// Cancellation stops scheduling new units and returns what finished.
func (e *Engine) Batch(ctx context.Context, req Request) (*BatchResult, error) {
	started := time.Now()
	runID := uuid.New().String()
	dates := expandDates(req.From, req.To)
	total := len(req.EmployeeIDs) * len(dates)

	e.logger.Info("batch started",
		"run_id", runID,
		"employees", len(req.EmployeeIDs),
		"dates", len(dates),
		"workers", e.cfg.Workers,
		"ground_rules", e.cfg.UseGroundRules,
	)

	out := &BatchResult{RunID: runID}
	out.Summary.TotalUnits = total

	collect := make(chan employeeOutcome, len(req.EmployeeIDs))
	done := make(chan struct{})
	completed := 0
	go func() {
		defer close(done)
		for oc := range collect {
			out.Results = append(out.Results, oc.results...)
			out.Errors = append(out.Errors, oc.errors...)
			out.Summary.Processed += len(oc.results)
			out.Summary.Failed += len(oc.errors)
			out.Summary.Skipped += oc.skipped
			out.Summary.NightShifts += oc.nightShifts
			out.Summary.AnomalousDays += oc.anomalous
			completed += len(oc.results) + len(oc.errors) + oc.skipped
			notifyProgress(req.Progress, Progress{Completed: completed, Total: total})
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for _, employeeID := range req.EmployeeIDs {
		g.Go(func() error {
			oc := e.analyzeEmployee(gctx, runID, employeeID, dates)
			collect <- oc
			return nil
		})
	}

	_ = g.Wait()
	close(collect)
	<-done

	// Units never reached because of cancellation still have to be
	// accounted for.
	accounted := out.Summary.Processed + out.Summary.Failed + out.Summary.Skipped
	if accounted < total {
		out.Summary.Skipped += total - accounted
	}

	sort.Slice(out.Results, func(i, j int) bool {
		a, b := out.Results[i], out.Results[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		return a.Date.Before(b.Date)
	})
	out.Summary.Duration = time.Since(started)

	e.logger.Info("batch finished",
		"run_id", runID,
		"processed", out.Summary.Processed,
		"skipped", out.Summary.Skipped,
		"failed", out.Summary.Failed,
		"duration", out.Summary.Duration,
	)
	return out, ctx.Err()
}

func notifyProgress(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

func expandDates(from, to time.Time) []time.Time {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
