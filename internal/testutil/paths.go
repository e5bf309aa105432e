package testutil

// Shared trace paths relative to the repository root.
const (
	// TraceScenarios replays the classic split, coalesce and grow scenarios
	// and leaves two blocks live.
	TraceScenarios = "testdata/traces/scenarios.trace"

	// TraceChurn mixes all three request kinds across several size classes.
	TraceChurn = "testdata/traces/churn.trace"
)
