package dbscan

// Clusterer abstracts the clustering implementation. This interface enables
// dependency injection for the sweep runner and the HTTP handlers, which
// only care about partitioning points, not about which algorithm ran.
type Clusterer interface {
	// Cluster partitions points into clusters and noise.
	Cluster(points []Point) (*Result, error)

	// GetParams returns the current clustering parameters.
	GetParams() Params

	// SetParams updates the clustering parameters for subsequent runs.
	SetParams(params Params)
}

// DBSCANClusterer implements Clusterer using the DBSCAN algorithm. DBSCAN
// finds clusters of arbitrary shape without knowing the cluster count in
// advance, which suits exploratory analysis of noisy point sets.
type DBSCANClusterer struct {
	params Params
}

// NewDBSCANClusterer creates a new DBSCAN clusterer with the specified
// parameters.
func NewDBSCANClusterer(eps float64, minPts int) *DBSCANClusterer {
	return &DBSCANClusterer{
		params: Params{
			Eps:    eps,
			MinPts: minPts,
		},
	}
}

// NewDefaultDBSCANClusterer creates a DBSCAN clusterer with default
// parameters.
func NewDefaultDBSCANClusterer() *DBSCANClusterer {
	params := DefaultParams()
	return NewDBSCANClusterer(params.Eps, params.MinPts)
}

// Cluster runs DBSCAN over points with the clusterer's current parameters.
// Output order is already deterministic (clusters in discovery order,
// members in insertion order), so no post-sort is needed.
func (c *DBSCANClusterer) Cluster(points []Point) (*Result, error) {
	return Run(points, c.params)
}

// GetParams returns the current clustering parameters.
func (c *DBSCANClusterer) GetParams() Params {
	return c.params
}

// SetParams updates the clustering parameters.
func (c *DBSCANClusterer) SetParams(params Params) {
	c.params = params
}

// Verify at compile time that *DBSCANClusterer implements Clusterer.
var _ Clusterer = (*DBSCANClusterer)(nil)
