package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/monitoring"
	"github.com/banshee-data/scatter.report/internal/timeutil"
)

// SweepStatus represents the current state of a sweep run
type SweepStatus string

const (
	SweepStatusIdle     SweepStatus = "idle"
	SweepStatusRunning  SweepStatus = "running"
	SweepStatusComplete SweepStatus = "complete"
	SweepStatusError    SweepStatus = "error"
)

// SweepRequest defines the parameters for starting a sweep. Explicit value
// lists take precedence over spec strings; a spec string is either
// "min:max:step" or comma-separated values.
type SweepRequest struct {
	EpsValues    []float64 `json:"eps_values,omitempty"`
	MinPtsValues []int     `json:"min_pts_values,omitempty"`

	EpsSpec    string `json:"eps_spec,omitempty"`
	MinPtsSpec string `json:"min_pts_spec,omitempty"`

	// MinClusters is the cluster-count floor applied when picking the best
	// combination. Zero means at least one cluster.
	MinClusters int `json:"min_clusters,omitempty"`
}

// ComboResult holds the outcome for one eps/minPts combination
type ComboResult struct {
	Eps    float64 `json:"eps"`
	MinPts int     `json:"min_pts"`

	Clusters          int     `json:"clusters"`
	NoisePoints       int     `json:"noise_points"`
	LargestCluster    int     `json:"largest_cluster"`
	ClusterSizeMean   float64 `json:"cluster_size_mean"`
	ClusterSizeStddev float64 `json:"cluster_size_stddev"`
	DurationMs        float64 `json:"duration_ms"`
}

// SweepState holds the current state and results of a sweep
type SweepState struct {
	Status          SweepStatus   `json:"status"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	TotalCombos     int           `json:"total_combos"`
	CompletedCombos int           `json:"completed_combos"`
	CurrentCombo    *ComboResult  `json:"current_combo,omitempty"`
	Results         []ComboResult `json:"results"`
	Best            *ComboResult  `json:"best,omitempty"`
	Error           string        `json:"error,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	Request         *SweepRequest `json:"request,omitempty"`
}

// ClustererFactory builds a fresh Clusterer for one parameter combination.
// The runner calls it once per combination so no state is shared between
// combos.
type ClustererFactory func(params dbscan.Params) dbscan.Clusterer

func defaultClustererFactory(params dbscan.Params) dbscan.Clusterer {
	return dbscan.NewDBSCANClusterer(params.Eps, params.MinPts)
}

// Runner orchestrates eps/minPts parameter sweeps over a fixed dataset
type Runner struct {
	factory ClustererFactory
	clock   timeutil.Clock
	mu      sync.RWMutex
	state   SweepState
	cancel  context.CancelFunc
}

// NewRunner creates a new sweep runner. A nil factory selects the
// default DBSCAN clusterer.
func NewRunner(factory ClustererFactory) *Runner {
	if factory == nil {
		factory = defaultClustererFactory
	}
	return &Runner{
		factory: factory,
		clock:   timeutil.RealClock{},
		state:   SweepState{Status: SweepStatusIdle},
	}
}

// addWarning appends a warning message to the sweep state.
func (r *Runner) addWarning(msg string) {
	r.mu.Lock()
	r.state.Warnings = append(r.state.Warnings, msg)
	r.mu.Unlock()
}

// GetSweepState returns a copy of the current sweep state.
func (r *Runner) GetSweepState() SweepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Return a copy to avoid race conditions
	state := r.state
	results := make([]ComboResult, len(r.state.Results))
	copy(results, r.state.Results)
	state.Results = results
	return state
}

// Start begins a new sweep over points in a background goroutine. The caller
// must not mutate points until the sweep finishes. Start fails if a sweep is
// already running or the request expands to an empty or oversized grid.
func (r *Runner) Start(ctx context.Context, points []dbscan.Point, req SweepRequest) error {
	epsCombos, minPtsCombos, err := Combinations(req)
	if err != nil {
		return err
	}

	totalCombos := len(epsCombos) * len(minPtsCombos)
	if totalCombos == 0 {
		return fmt.Errorf("no parameter combinations to sweep")
	}
	const maxCombos = 1000
	if totalCombos > maxCombos {
		return fmt.Errorf("parameter range too large: would generate %d combinations (max %d)", totalCombos, maxCombos)
	}

	// Now acquire lock for state modification
	r.mu.Lock()
	if r.state.Status == SweepStatusRunning {
		r.mu.Unlock()
		return fmt.Errorf("sweep already in progress")
	}

	now := r.clock.Now()
	r.state = SweepState{
		Status:      SweepStatusRunning,
		StartedAt:   &now,
		TotalCombos: totalCombos,
		Results:     make([]ComboResult, 0, totalCombos),
		Request:     &req,
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	// Run sweep in background
	go r.run(sweepCtx, req, points, epsCombos, minPtsCombos)

	return nil
}

// Stop cancels a running sweep
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Combinations expands the request into the eps and minPts dimensions.
// Explicit values win over spec strings; defaults fill any dimension left
// empty.
func Combinations(req SweepRequest) ([]float64, []int, error) {
	epsCombos := req.EpsValues
	if len(epsCombos) == 0 && req.EpsSpec != "" {
		vals, err := ParseParamList(req.EpsSpec)
		if err != nil {
			return nil, nil, fmt.Errorf("eps: %w", err)
		}
		epsCombos = vals
	}

	minPtsCombos := req.MinPtsValues
	if len(minPtsCombos) == 0 && req.MinPtsSpec != "" {
		vals, err := ParseIntParamList(req.MinPtsSpec)
		if err != nil {
			return nil, nil, fmt.Errorf("min_pts: %w", err)
		}
		minPtsCombos = vals
	}

	// Defaults if still empty
	if len(epsCombos) == 0 {
		epsCombos = []float64{0.1, 0.2, 0.3, 0.5}
	}
	if len(minPtsCombos) == 0 {
		minPtsCombos = []int{3, 5, 10}
	}

	return epsCombos, minPtsCombos, nil
}

// run executes the sweep in a background goroutine
func (r *Runner) run(ctx context.Context, req SweepRequest, points []dbscan.Point, epsCombos []float64, minPtsCombos []int) {
	// Read total combos once to avoid race detector warnings
	r.mu.RLock()
	totalCombos := r.state.TotalCombos
	r.mu.RUnlock()

	comboNum := 0

	for _, eps := range epsCombos {
		for _, minPts := range minPtsCombos {
			// Check for cancellation
			select {
			case <-ctx.Done():
				r.mu.Lock()
				r.state.Status = SweepStatusError
				r.state.Error = fmt.Sprintf("sweep stopped at combination %d/%d: %v", comboNum, totalCombos, ctx.Err())
				now := r.clock.Now()
				r.state.CompletedAt = &now
				r.mu.Unlock()
				return
			default:
			}

			comboNum++
			monitoring.Logf("[sweep] Combination %d/%d: eps=%.4f, min_pts=%d", comboNum, totalCombos, eps, minPts)

			combo, err := evaluateCombo(r.clock, points, eps, minPts, r.factory)
			if err != nil {
				monitoring.Logf("[sweep] ERROR: Combination %d failed: %v", comboNum, err)
				r.addWarning(fmt.Sprintf("combo %d (eps=%g, min_pts=%d) skipped: %v", comboNum, eps, minPts, err))
				continue
			}

			// Update state
			r.mu.Lock()
			r.state.Results = append(r.state.Results, combo)
			r.state.CompletedCombos = comboNum
			r.state.CurrentCombo = &combo
			r.mu.Unlock()
		}
	}

	r.mu.Lock()
	r.state.Best = Summarize(r.state.Results, req.MinClusters)
	r.state.Status = SweepStatusComplete
	now := r.clock.Now()
	r.state.CompletedAt = &now
	r.mu.Unlock()
	monitoring.Logf("[sweep] Sweep complete: %d combinations evaluated", comboNum)
}

// evaluateCombo clusters points with one parameter combination and
// summarises the outcome.
func evaluateCombo(clock timeutil.Clock, points []dbscan.Point, eps float64, minPts int, factory ClustererFactory) (ComboResult, error) {
	clusterer := factory(dbscan.Params{Eps: eps, MinPts: minPts})

	start := clock.Now()
	result, err := clusterer.Cluster(points)
	if err != nil {
		return ComboResult{}, err
	}
	elapsed := clock.Since(start)

	combo := ComboResult{
		Eps:         eps,
		MinPts:      minPts,
		Clusters:    len(result.Clusters),
		NoisePoints: len(result.Noise),
		DurationMs:  float64(elapsed) / float64(time.Millisecond),
	}

	sizes := make([]float64, len(result.Clusters))
	for i, c := range result.Clusters {
		sizes[i] = float64(len(c.Points))
		if len(c.Points) > combo.LargestCluster {
			combo.LargestCluster = len(c.Points)
		}
	}
	combo.ClusterSizeMean, combo.ClusterSizeStddev = MeanStddev(sizes)

	return combo, nil
}

// RunGrid evaluates the full eps by minPts grid synchronously, eps as the
// outer dimension and minPts as the inner one. It is the blocking
// counterpart of Runner.Start for CLI and one-shot API use. Cancelling ctx
// stops the grid early; unlike the background runner, an invalid combination
// fails the whole grid.
func RunGrid(ctx context.Context, points []dbscan.Point, epsCombos []float64, minPtsCombos []int) ([]ComboResult, error) {
	results := make([]ComboResult, 0, len(epsCombos)*len(minPtsCombos))
	for _, eps := range epsCombos {
		for _, minPts := range minPtsCombos {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			combo, err := evaluateCombo(timeutil.RealClock{}, points, eps, minPts, defaultClustererFactory)
			if err != nil {
				return results, fmt.Errorf("eps=%g min_pts=%d: %w", eps, minPts, err)
			}
			results = append(results, combo)
		}
	}
	return results, nil
}

// Summarize picks the best combination: fewest noise points among results
// with at least minClusters clusters. Earlier results win ties so grid order
// stays authoritative. Returns nil when no result qualifies.
func Summarize(results []ComboResult, minClusters int) *ComboResult {
	if minClusters <= 0 {
		minClusters = 1
	}
	var best *ComboResult
	for i := range results {
		r := results[i]
		if r.Clusters < minClusters {
			continue
		}
		if best == nil || r.NoisePoints < best.NoisePoints {
			b := r
			best = &b
		}
	}
	return best
}
