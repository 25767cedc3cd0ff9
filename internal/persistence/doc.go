// Package persistence writes a run's results to disk.
//
// Every run produces two artifacts that share a timestamp:
//
//	performance_test_summary_<20060102_150405>.<ext>
//	performance_test_detailed_<20060102_150405>.<ext>
//
// The summary holds the payload and the per-endpoint statistics, the detailed
// file holds the raw outcomes. An endpoint that was not tested is written as
// an empty object or list. Writes are serialized through a lock file in the
// output directory and each file is renamed into place once complete.
package persistence
