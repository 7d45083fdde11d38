// Package shared holds helpers used across the dashboard packages that do not
// belong to any single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - rental dataset fixtures (SampleDaily, SampleHourly) and CSV writers that
//     produce files in the raw export format the loader expects
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    dailyPath, hourlyPath := testutil.WriteSampleDatasets(t, t.TempDir())
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
