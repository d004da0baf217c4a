package domain

// ============================================================================
// Input Defaults
// ============================================================================

const (
	// DefaultSolutionFilePattern is the glob used when a directory is given as input.
	DefaultSolutionFilePattern = "**/*.txt"

	// DefaultMaxBatchSize is the largest batch accepted by the network transports.
	// The clustering is quadratic in the batch size.
	DefaultMaxBatchSize = 5000

	// DefaultCommentPrefix starts a comment line in solution files.
	DefaultCommentPrefix = "#"
)

// ============================================================================
// Server Defaults
// ============================================================================

const (
	// DefaultServerAddr is the listen address of `solfilter serve`.
	DefaultServerAddr = ":8080"

	// DefaultRequestTimeoutSeconds bounds a single labeling request.
	DefaultRequestTimeoutSeconds = 60

	// DefaultShutdownTimeoutSeconds is the graceful shutdown window.
	DefaultShutdownTimeoutSeconds = 10
)

// ============================================================================
// Watch Defaults
// ============================================================================

const (
	// DefaultWatchDebounceMillis coalesces bursts of file events into one run.
	DefaultWatchDebounceMillis = 200
)

// Helper functions for pointer values

// IntPtr creates a pointer to an int value
func IntPtr(i int) *int {
	return &i
}

// Float64Ptr creates a pointer to a float64 value
func Float64Ptr(f float64) *float64 {
	return &f
}
