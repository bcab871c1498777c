package layout

import "sort"

// ColumnLayout represents the detected column structure of a page.
// Computed once per page and read-only afterward.
type ColumnLayout struct {
	// IsMultiColumn is true when the page uses a two-column layout
	IsMultiColumn bool

	// Columns is the detected column count (1 or 2)
	Columns int

	// Col1X and Col2X are the left-edge centroids of the columns.
	// For a single-column page Col2X is zero.
	Col1X, Col2X float64

	// ColumnWidth is the estimated width of one column
	ColumnWidth float64

	// ColumnGap is the estimated whitespace between the columns
	ColumnGap float64
}

// ColumnOf returns the column index (0 or 1) the given x coordinate
// falls in, determined by comparison to the column midpoint. Always 0
// on a single-column page.
func (l *ColumnLayout) ColumnOf(x float64) int {
	if l == nil || !l.IsMultiColumn {
		return 0
	}
	mid := (l.Col1X + l.Col2X) / 2
	if x >= mid {
		return 1
	}
	return 0
}

// ColumnConfig holds configuration for column detection
type ColumnConfig struct {
	// ClusterTolerance is the x-distance within which line starts are
	// merged into one cluster (default: 10 units)
	ClusterTolerance float64

	// MinClusterShare is the fraction of lines a cluster must hold to
	// count as a column (default: 0.10)
	MinClusterShare float64

	// MinSeparationRatio is the minimum centroid separation, as a
	// fraction of page width, for two clusters to be distinct columns
	// (default: 0.30)
	MinSeparationRatio float64
}

// DefaultColumnConfig returns sensible default configuration
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		ClusterTolerance:   10.0,
		MinClusterShare:    0.10,
		MinSeparationRatio: 0.30,
	}
}

// ColumnDetector detects two-column layouts from line start positions
type ColumnDetector struct {
	config ColumnConfig
}

// NewColumnDetector creates a detector with default configuration
func NewColumnDetector() *ColumnDetector {
	return &ColumnDetector{
		config: DefaultColumnConfig(),
	}
}

// NewColumnDetectorWithConfig creates a detector with custom configuration
func NewColumnDetectorWithConfig(config ColumnConfig) *ColumnDetector {
	return &ColumnDetector{
		config: config,
	}
}

// xCluster is a group of line start positions within the cluster tolerance.
type xCluster struct {
	centroid float64
	count    int
}

// Detect clusters line x-positions and flags the page two-column when
// two well-populated clusters sit far enough apart.
func (d *ColumnDetector) Detect(lines []Line, pageWidth float64) *ColumnLayout {
	single := &ColumnLayout{Columns: 1}
	if len(lines) == 0 || pageWidth <= 0 {
		return single
	}

	clusters := d.clusterStarts(lines)

	// Keep clusters that hold a meaningful share of the page's lines.
	minCount := int(float64(len(lines)) * d.config.MinClusterShare)
	if minCount < 1 {
		minCount = 1
	}
	var eligible []xCluster
	for _, c := range clusters {
		if c.count >= minCount {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) < 2 {
		return single
	}

	// The two most populous eligible clusters are the column candidates.
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].count > eligible[j].count
	})
	left, right := eligible[0], eligible[1]
	if left.centroid > right.centroid {
		left, right = right, left
	}

	separation := right.centroid - left.centroid
	if separation <= pageWidth*d.config.MinSeparationRatio {
		return single
	}

	width := d.averageLineWidth(lines)
	gap := separation - width
	if gap < 0 {
		gap = 0
	}

	return &ColumnLayout{
		IsMultiColumn: true,
		Columns:       2,
		Col1X:         left.centroid,
		Col2X:         right.centroid,
		ColumnWidth:   width,
		ColumnGap:     gap,
	}
}

// clusterStarts greedily merges sorted line start positions into
// clusters within the configured tolerance.
func (d *ColumnDetector) clusterStarts(lines []Line) []xCluster {
	xs := make([]float64, 0, len(lines))
	for _, line := range lines {
		xs = append(xs, line.XPosition)
	}
	sort.Float64s(xs)

	var clusters []xCluster
	start := 0
	for i := 1; i <= len(xs); i++ {
		if i < len(xs) && xs[i]-xs[start] <= d.config.ClusterTolerance {
			continue
		}
		group := xs[start:i]
		sum := 0.0
		for _, x := range group {
			sum += x
		}
		clusters = append(clusters, xCluster{
			centroid: sum / float64(len(group)),
			count:    len(group),
		})
		start = i
	}
	return clusters
}

// averageLineWidth estimates the typical column width from the lines'
// horizontal extents.
func (d *ColumnDetector) averageLineWidth(lines []Line) float64 {
	total := 0.0
	count := 0
	for i := range lines {
		w := lines[i].Width()
		if w > 0 {
			total += w
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
