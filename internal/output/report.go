package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/torosent/variantbench/internal/metrics"
)

const (
	maxSampleErrors = 3
	maxSampleChars  = 100
)

// Report is the machine-readable form of a run written by PrintJSONReport.
type Report struct {
	RunID      string                  `json:"run_id,omitempty"`
	Endpoints  []metrics.EndpointStats `json:"endpoints"`
	Comparison *metrics.Comparison     `json:"comparison,omitempty"`
}

// PrintRunHeader describes the configuration of a run before any endpoint is tested.
func PrintRunHeader(w io.Writer, requests, workers int, payload []byte) {
	fmt.Fprintln(w, "Variant Performance Test")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Test Configuration:")
	fmt.Fprintf(w, "  Requests per endpoint: %d\n", requests)
	fmt.Fprintf(w, "  Max concurrent workers: %d\n", workers)
	fmt.Fprintf(w, "  Test payload: %s\n", indentPayload(payload))
}

// PrintEndpointHeader announces the start of one endpoint's run.
func PrintEndpointHeader(w io.Writer, name, url string, requests, workers int) {
	fmt.Fprintf(w, "\nTesting %s endpoint...\n", name)
	fmt.Fprintf(w, "URL: %s\n", url)
	fmt.Fprintf(w, "Requests: %d, Max Workers: %d\n", requests, workers)
	fmt.Fprintln(w, strings.Repeat("-", 60))
}

// PrintReport outputs a human-readable summary of one endpoint.
func PrintReport(w io.Writer, stats metrics.EndpointStats) {
	fmt.Fprintf(w, "\n--- Results for %s ---\n", stats.EndpointName)
	fmt.Fprintf(w, "  Success Rate: %.1f%% (%d/%d)\n", stats.SuccessRate, stats.SuccessfulRequests, stats.TotalRequests)

	if stats.SuccessfulRequests > 0 {
		fmt.Fprintf(w, "  Average Response Time: %.2f ms\n", stats.AvgLatencyMs)
		fmt.Fprintf(w, "  Median Response Time:  %.2f ms\n", stats.MedianLatencyMs)
		fmt.Fprintf(w, "  Min Response Time:     %.2f ms\n", stats.MinLatencyMs)
		fmt.Fprintf(w, "  Max Response Time:     %.2f ms\n", stats.MaxLatencyMs)
		fmt.Fprintf(w, "  Standard Deviation:    %.2f ms\n", stats.StdDevMs)
		fmt.Fprintf(w, "  95th Percentile:       %.2f ms\n", stats.P95LatencyMs)
		fmt.Fprintf(w, "  99th Percentile:       %.2f ms\n", stats.P99LatencyMs)
	}

	if stats.FailedRequests == 0 {
		return
	}

	fmt.Fprintf(w, "\n  Error Analysis (%d failures):\n", stats.FailedRequests)

	if rows := metrics.FlattenErrorBreakdown(stats.ErrorBreakdown, stats.FailedRequests); len(rows) > 0 {
		fmt.Fprintln(w, "    Error Types:")
		writeBreakdown(w, rows, "      ")
	}
	if rows := metrics.FlattenStatusBreakdown(stats.StatusCodeBreakdown, stats.TotalRequests); len(rows) > 0 {
		fmt.Fprintln(w, "    Status Codes:")
		writeBreakdown(w, rows, "      ")
	}

	if len(stats.SampleErrors) > 0 {
		fmt.Fprintln(w, "    Sample Error Messages:")
		for i, sample := range stats.SampleErrors {
			if i == maxSampleErrors {
				break
			}
			fmt.Fprintf(w, "      %d. %s: %s\n", i+1, sample.ErrorKind, truncate(sample.ErrorMessage, maxSampleChars))
			if sample.ResponseBody != "" {
				fmt.Fprintf(w, "         Response: %s\n", truncate(sample.ResponseBody, maxSampleChars))
			}
		}
	}
}

// PrintComparison outputs the head-to-head comparison of two endpoints, or a
// notice when either has no successful requests.
func PrintComparison(w io.Writer, a, b metrics.EndpointStats) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(w, "PERFORMANCE COMPARISON")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	cmp, ok := metrics.Compare(a, b)
	if !ok {
		fmt.Fprintln(w, "Cannot compare - one or both endpoints had no successful requests")
		return
	}

	fmt.Fprintf(w, "Winner: %s endpoint\n", cmp.Winner)
	fmt.Fprintf(w, "Performance improvement: %.1f%% faster\n", cmp.ImprovementPct)
	fmt.Fprintf(w, "%s average: %.2f ms (±%.2f ms)\n", cmp.First.Name, cmp.First.AvgLatencyMs, cmp.First.StdDevMs)
	fmt.Fprintf(w, "%s average: %.2f ms (±%.2f ms)\n", cmp.Second.Name, cmp.Second.AvgLatencyMs, cmp.Second.StdDevMs)
	fmt.Fprintf(w, "Difference: %.2f ms\n", cmp.DifferenceMs)
	fmt.Fprintf(w, "Standard Error - %s: ±%.2f ms, %s: ±%.2f ms\n",
		cmp.First.Name, cmp.First.StdErrorMs, cmp.Second.Name, cmp.Second.StdErrorMs)
}

// PrintSaved lists the artifact paths written for the run.
func PrintSaved(w io.Writer, paths ...string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(w, "\nResults saved to:")
	for _, p := range paths {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report Report) error {
	if report.Endpoints == nil {
		report.Endpoints = []metrics.EndpointStats{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeBreakdown(w io.Writer, rows []metrics.BreakdownRow, indent string) {
	for _, row := range rows {
		fmt.Fprintf(w, "%s- %s: %d (%.1f%%)\n", indent, row.Key, row.Count, row.Percent)
	}
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func indentPayload(payload []byte) string {
	if len(payload) == 0 {
		return "null"
	}
	var buf strings.Builder
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return string(payload)
	}
	return strings.TrimRight(buf.String(), "\n")
}
